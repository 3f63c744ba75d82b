// Package inbound defines the normalized representation of one customer
// message received over WhatsApp.
package inbound

import (
	"time"

	"github.com/wolfman30/ares-whatsapp-router/internal/channels"
)

// DefaultCustomerName is used when the contact record carries no profile name.
const DefaultCustomerName = "Cliente"

// MessageType identifies which part of the event drives routing.
type MessageType string

const (
	TypeText        MessageType = "text"
	TypeButtonReply MessageType = "button_reply"
	TypeListReply   MessageType = "list_reply"
)

// Event is built once per webhook request and not mutated afterwards.
type Event struct {
	Phone            string
	CustomerName     string
	Text             string
	Type             MessageType
	ButtonReplyID    string
	ListReplyID      string
	ReplyTitle       string
	ReplyDescription string
	RoutingID        string
	MessageID        string
	Channel          channels.Channel
	ReceivedAt       time.Time
}

// IsInteractive reports whether the event is a button or list selection.
func (e *Event) IsInteractive() bool {
	return e.ButtonReplyID != "" || e.ListReplyID != ""
}

// WithChannel returns a copy of the event tagged with ch.
func (e Event) WithChannel(ch channels.Channel) *Event {
	e.Channel = ch
	return &e
}

// HasCustomName reports whether a real profile name was supplied.
func (e *Event) HasCustomName() bool {
	return e.CustomerName != "" && e.CustomerName != DefaultCustomerName
}

// Content returns the text that best describes what the customer sent,
// used for logs and lead records.
func (e *Event) Content() string {
	switch e.Type {
	case TypeButtonReply, TypeListReply:
		if e.ReplyTitle != "" {
			return e.ReplyTitle
		}
		if e.ButtonReplyID != "" {
			return e.ButtonReplyID
		}
		return e.ListReplyID
	default:
		return e.Text
	}
}
