package leads

import "errors"

var (
	// ErrMissingPhone is returned when a lead has no WhatsApp number.
	ErrMissingPhone = errors.New("phone is required")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")
)
