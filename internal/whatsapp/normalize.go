// Package whatsapp holds the WhatsApp Cloud API wire types, the payload
// normalizer and the outbound Graph API client.
package whatsapp

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/ares-whatsapp-router/internal/inbound"
)

// NormalizeBody decodes a webhook body. Unparseable JSON yields a nil event
// and the decode error so the caller can acknowledge it as a no-op.
func NormalizeBody(body []byte) (*inbound.Event, error) {
	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return Normalize(&payload), nil
}

// Normalize converts the first message and first contact of a payload into
// an inbound event. It returns nil when either is missing or when the
// message is not text, a button reply or a list reply. Only the first
// message is considered; batched deliveries are not split.
func Normalize(payload *WebhookPayload) *inbound.Event {
	if payload == nil || len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return nil
	}
	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 || len(value.Contacts) == 0 {
		return nil
	}
	msg := value.Messages[0]
	contact := value.Contacts[0]

	phone := strings.TrimSpace(msg.From)
	if phone == "" {
		phone = strings.TrimSpace(contact.WaID)
	}
	if phone == "" {
		return nil
	}

	ev := &inbound.Event{
		Phone:        phone,
		CustomerName: customerName(contact),
		RoutingID:    strings.TrimSpace(value.Metadata.PhoneNumberID),
		MessageID:    msg.ID,
		ReceivedAt:   parseTimestamp(msg.Timestamp),
	}

	switch {
	case msg.Interactive != nil && msg.Interactive.ButtonReply != nil && msg.Interactive.ButtonReply.ID != "":
		ev.Type = inbound.TypeButtonReply
		ev.ButtonReplyID = msg.Interactive.ButtonReply.ID
		ev.ReplyTitle = msg.Interactive.ButtonReply.Title
	case msg.Interactive != nil && msg.Interactive.ListReply != nil && msg.Interactive.ListReply.ID != "":
		ev.Type = inbound.TypeListReply
		ev.ListReplyID = msg.Interactive.ListReply.ID
		ev.ReplyTitle = msg.Interactive.ListReply.Title
		ev.ReplyDescription = msg.Interactive.ListReply.Description
	case msg.Button != nil && msg.Button.Payload != "":
		// template quick replies behave like reply buttons
		ev.Type = inbound.TypeButtonReply
		ev.ButtonReplyID = msg.Button.Payload
		ev.ReplyTitle = msg.Button.Text
	case msg.Text != nil:
		ev.Type = inbound.TypeText
		ev.Text = msg.Text.Body
	default:
		return nil
	}
	return ev
}

func customerName(c Contact) string {
	if name := strings.TrimSpace(c.Profile.Name); name != "" {
		return name
	}
	return inbound.DefaultCustomerName
}

func parseTimestamp(raw string) time.Time {
	secs, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || secs <= 0 {
		return time.Now().UTC()
	}
	return time.Unix(secs, 0).UTC()
}
