package reembed

import "errors"

var (
	// ErrEmbeddingCountMismatch is returned when the embedder returns a
	// different number of vectors than texts it was given.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrEmptySurrogate is returned for an index entry with no surrogate text to embed.
	ErrEmptySurrogate = errors.New("index entry has no surrogate text")
)
