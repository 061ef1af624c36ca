package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Image is an encoded image attached to a prompt.
type Image struct {
	// MediaType is the MIME type, e.g. "image/png".
	MediaType string
	Data      []byte
}

// Prompt is a single generation request: an optional system message and a
// user message made of text plus any attached images.
type Prompt struct {
	System string
	Text   string
	Images []Image

	// Model overrides the provider's default model when set.
	Model string
	// MaxTokens overrides the configured completion length when positive.
	MaxTokens int
	// Temperature is used as given; callers copy the configured value.
	Temperature float64
}

// HasImages reports whether the prompt carries image attachments.
func (p Prompt) HasImages() bool {
	return len(p.Images) > 0
}

// Completer produces text for a prompt. It is used both to summarize content
// units and to answer questions.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete runs one generation call. Errors are classified into the
	// package's error classes (ErrRateLimited, ErrInvalidRequest, ...).
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Completer instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Completer returns the text and vision generation service.
	// The returned Completer is safe for concurrent use.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
