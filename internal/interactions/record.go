// Package interactions persists the append-only log of routed WhatsApp
// messages: what came in, what was sent back and which flow handled it.
package interactions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrMissingPhone is returned when a record has no customer phone.
var ErrMissingPhone = errors.New("interactions: phone is required")

// Record is one routed inbound message.
type Record struct {
	ID           string    `json:"id"`
	Phone        string    `json:"phone"`
	InboundText  string    `json:"inbound_text"`
	OutboundText string    `json:"outbound_text"`
	IntentLabel  string    `json:"intent_label"`
	Channel      string    `json:"channel"`
	Flow         string    `json:"flow"`
	MessageID    string    `json:"message_id,omitempty"`
	Signals      []string  `json:"signals"`
	Delivered    bool      `json:"delivered"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store appends interaction records. Records are never updated.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	// List returns the newest records first; an empty phone lists all.
	List(ctx context.Context, phone string, limit int) ([]Record, error)
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// prepare validates rec and fills the id and timestamp.
func prepare(rec *Record) error {
	if rec == nil || strings.TrimSpace(rec.Phone) == "" {
		return ErrMissingPhone
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Signals == nil {
		rec.Signals = []string{}
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return DefaultListLimit
	}
	return limit
}
