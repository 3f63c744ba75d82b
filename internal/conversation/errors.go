package conversation

import "errors"

var (
	// ErrMissingCredentials is returned by constructors lacking an API key or model.
	ErrMissingCredentials = errors.New("conversation: provider credentials missing")
	// ErrNoMessages means the request carried nothing to answer.
	ErrNoMessages = errors.New("conversation: request has no messages")
	// ErrEmptyCompletion means the provider answered without any text.
	ErrEmptyCompletion = errors.New("conversation: provider returned no text")
)
