package summarize

import "errors"

var (
	// ErrCompleterRequired is returned when no completion service is provided.
	ErrCompleterRequired = errors.New("completer required")

	// ErrGeneratorReleased is returned when a released generator is used.
	ErrGeneratorReleased = errors.New("generator released")
)
