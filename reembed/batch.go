package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// BatchProcessor embeds the surrogates of a batch of index entries and writes
// the new vectors back.
type BatchProcessor struct {
	repo     storage.IndexRepository
	embedder ai.Embedder
	retry    ai.RetryPolicy
}

// NewBatchProcessor creates a new batch processor.
// maxAttempts: maximum number of embedding calls per batch
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.IndexRepository, embedder ai.Embedder, maxAttempts int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:     repo,
		embedder: embedder,
		retry:    ai.RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: retryBaseDelay},
	}
}

// Process re-embeds a batch of entries and updates their vectors in one transaction.
func (bp *BatchProcessor) Process(ctx context.Context, entries []*core.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, entry := range entries {
		if entry.Surrogate == "" {
			return fmt.Errorf("%w: unit %s", ErrEmptySurrogate, entry.UnitID)
		}
		texts[i] = entry.Surrogate
	}

	var embeddings [][]float32
	err := bp.retry.Do(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.retry.MaxAttempts, err)
	}

	if len(embeddings) != len(entries) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(entries), len(embeddings))
	}

	for i := range entries {
		entries[i].Vector = ai.NormalizeVector(embeddings[i])
	}

	if err := bp.repo.UpdateVectors(ctx, entries...); err != nil {
		return fmt.Errorf("failed to update vectors: %w", err)
	}
	return nil
}
