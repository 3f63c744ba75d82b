package leads

import (
	"strings"
	"time"
)

// SourceWhatsApp marks leads captured by the conversational router.
const SourceWhatsApp = "whatsapp"

// Lead is a prospect that showed purchase interest in a conversation.
type Lead struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Phone               string    `json:"phone"`
	Message             string    `json:"message"`
	EquipmentOfInterest string    `json:"equipment_of_interest,omitempty"`
	Channel             string    `json:"channel"`
	Source              string    `json:"source"`
	CreatedAt           time.Time `json:"created_at"`
}

// CreateLeadRequest carries the fields captured from a single inbound message.
type CreateLeadRequest struct {
	Name                string `json:"name"`
	Phone               string `json:"phone"`
	Message             string `json:"message"`
	EquipmentOfInterest string `json:"equipment_of_interest,omitempty"`
	Channel             string `json:"channel"`
	Source              string `json:"source"`
}

// Validate validates the create lead request
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.Phone) == "" {
		return ErrMissingPhone
	}
	return nil
}

func (r *CreateLeadRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Source == "" {
		r.Source = SourceWhatsApp
	}
}

// ListFilter pages through leads, newest first.
type ListFilter struct {
	Limit  int
	Offset int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

func (f ListFilter) withDefaults() ListFilter {
	if f.Limit <= 0 || f.Limit > MaxListLimit {
		f.Limit = DefaultListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
