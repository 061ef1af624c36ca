package pipeline

import "errors"

var (
	// ErrComponentRequired is returned when a required component is not provided.
	ErrComponentRequired = errors.New("pipeline component required")

	// ErrInterrupted is returned alongside a report when processing was cancelled
	// part way. The units that completed are indexed and queryable.
	ErrInterrupted = errors.New("processing interrupted")

	// ErrCapabilityUnavailable is returned alongside a report when every unit
	// failed because the model services could not be used. The corpus is not
	// marked Ready.
	ErrCapabilityUnavailable = errors.New("model services unavailable")
)
