package answer

import "errors"

var (
	// ErrSearcherRequired is returned when no searcher is provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrCompleterRequired is returned when no completion service is provided.
	ErrCompleterRequired = errors.New("completer required")

	// ErrBudgetTooSmall indicates the context budget cannot hold even the best-ranked unit.
	ErrBudgetTooSmall = errors.New("context budget too small for top result")
)
