package llm

import "errors"

// Common errors returned by completion clients.
var (
	// ErrInvalidConfig is returned when the client configuration is invalid.
	ErrInvalidConfig = errors.New("invalid completion client configuration")

	// ErrEmptyPrompt is returned when a completion is requested with no prompt text.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrInvalidResponse is returned when the model returns no usable text.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model refuses the content on
	// safety grounds. Permanent: retrying the same request cannot succeed.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary transport or service
	// errors that might resolve on retry.
	ErrTransientFailure = errors.New("transient completion failure")
)
