package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or feed format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmptySelection indicates a batch was requested with no entries
	// selected. The batch is not started and no state is mutated.
	ErrEmptySelection = errors.New("no entries selected")

	// ErrLLMUnavailable indicates the LLM service is not configured or
	// unreachable. Summarization is disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
