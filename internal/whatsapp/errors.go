package whatsapp

import "errors"

var (
	// ErrIncompleteConfig is returned when a channel has no endpoint id or credential.
	ErrIncompleteConfig = errors.New("whatsapp: incomplete channel configuration")
	ErrTooManyButtons   = errors.New("whatsapp: at most 3 reply buttons are allowed")
	ErrEmptyRecipient   = errors.New("whatsapp: recipient is required")
)
