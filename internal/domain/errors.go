package domain

import "errors"

var (
	// ErrEmptyMessage rejects empty or whitespace-only chat input.
	ErrEmptyMessage = errors.New("message cannot be empty")

	// ErrSessionNotFound signals an operation on an unknown chat session.
	ErrSessionNotFound = errors.New("chat session not found")
)

// Generation backend failure kinds. The chat service maps each kind to
// a canned reply instead of failing the request.
var (
	ErrNumericBackendUnavailable = errors.New("numeric backend unavailable")
	ErrAcceleratorUnavailable    = errors.New("accelerator unavailable")
)
