package events

import "time"

// Routing keys published on the events exchange.
const (
	TypeLeadCaptured     = "whatsapp.lead.captured.v1"
	TypeInteractionSaved = "whatsapp.interaction.logged.v1"
)

// Meta identifies an emitted event.
type Meta struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Time          time.Time `json:"time"`
	Producer      string    `json:"producer,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// Envelope is the JSON body of every published event.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

type LeadCapturedV1 struct {
	LeadID              string    `json:"lead_id"`
	Name                string    `json:"name"`
	Phone               string    `json:"phone"`
	Message             string    `json:"message"`
	EquipmentOfInterest string    `json:"equipment_of_interest,omitempty"`
	Channel             string    `json:"channel"`
	CapturedAt          time.Time `json:"captured_at"`
}

type InteractionLoggedV1 struct {
	Phone       string    `json:"phone"`
	Channel     string    `json:"channel"`
	IntentLabel string    `json:"intent_label"`
	Flow        string    `json:"flow,omitempty"`
	MessageID   string    `json:"message_id,omitempty"`
	Delivered   bool      `json:"delivered"`
	LoggedAt    time.Time `json:"logged_at"`
}
