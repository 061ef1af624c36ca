// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of entries to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of entries)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Validate checks that every setting is positive.
func (c *Config) Validate() error {
	switch {
	case c.BatchSize <= 0:
		return &core.InvalidArgumentError{Name: "batch size", Reason: "must be greater than 0"}
	case c.ReportInterval <= 0:
		return &core.InvalidArgumentError{Name: "report interval", Reason: "must be greater than 0"}
	case c.MaxRetries <= 0:
		return ai.ErrInvalidMaxAttempts
	}
	return nil
}

// Summary describes a completed run.
type Summary struct {
	Entries   int
	Dimension int
	Elapsed   time.Duration
}

// Reembedder re-embeds every entry of a multi-vector index.
type Reembedder struct {
	repo      storage.IndexRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *EntryIterator
	logger    *slog.Logger
}

// Option configures a Reembedder.
type Option func(*Reembedder)

// WithProgress sets where progress output is written (typically os.Stderr).
// Default discards it.
func WithProgress(w io.Writer) Option {
	return func(r *Reembedder) {
		if w == nil {
			w = io.Discard
		}
		r.progress = w
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reembedder) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewReembedder creates a new reembedder. A nil config uses DefaultConfig.
func NewReembedder(repo storage.IndexRepository, embedder ai.Embedder, config *Config, opts ...Option) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Reembedder{
		repo:      repo,
		config:    config,
		progress:  io.Discard,
		processor: NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewEntryIterator(repo, config.BatchSize),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "reembedder")
	return r
}

// Run re-embeds every index entry with the configured embedder.
// Batches already written stay written if a later batch fails.
func (r *Reembedder) Run(ctx context.Context) (*Summary, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	stats, err := r.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read index stats: %w", err)
	}

	total := stats.VectorEntries
	if total == 0 {
		fmt.Fprintf(r.progress, "No entries found in index (0 entries)\n")
		return &Summary{}, nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d entries (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	err = r.iterator.ForEach(ctx, func(entries []*core.IndexEntry) error {
		if err := r.processor.Process(ctx, entries); err != nil {
			return fmt.Errorf("failed to process batch after unit %s: %w", entries[0].UnitID, err)
		}
		processed += len(entries)
		tracker.Update(processed)
		r.logger.Debug("batch reembedded", "entries", len(entries), "processed", processed)
		return nil
	})
	if err != nil {
		r.logger.Error("reembedding stopped", "processed", processed, "total", total, "err", err)
		return nil, err
	}

	tracker.Finish()

	after, err := r.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read index stats: %w", err)
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d entries in %v (%.1f entries/sec)\n",
		processed, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())
	r.logger.Info("reembedding complete", "entries", processed, "dimension", after.Dimension)

	return &Summary{Entries: processed, Dimension: after.Dimension, Elapsed: elapsed}, nil
}
