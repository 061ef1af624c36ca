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


package pipeline

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/answer"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/extract"
	"github.com/poiesic/docent/index"
	"github.com/poiesic/docent/storage"
	"github.com/poiesic/docent/summarize"
)

// Summarizer generates surrogates for a batch of units with per-unit results.
// *summarize.Generator implements it.
type Summarizer interface {
	GenerateBatch(ctx context.Context, units []*core.ContentUnit) []summarize.Result
}

// Indexer is the multi-vector index. *index.Index implements it.
type Indexer interface {
	IndexBatch(ctx context.Context, pairs []index.Pair) []index.Result
	Search(ctx context.Context, query string, k int) (*core.QueryResult, error)
	Contains(ctx context.Context, id core.ID) (bool, error)
	Stats(ctx context.Context) (*core.IndexStats, error)
}

// Answerer answers questions from the index. *answer.Answerer implements it.
type Answerer interface {
	Answer(ctx context.Context, question string) (*core.AnswerResult, error)
	AnswerAll(ctx context.Context, questions []string) []answer.BatchAnswer
}

// Components are the collaborators a Coordinator drives.
type Components struct {
	Units      storage.UnitRepository
	State      storage.StateRepository
	Purger     storage.Purger
	Extractor  extract.Extractor
	Summarizer Summarizer
	Index      Indexer
	Answerer   Answerer
}

func (c Components) validate() error {
	missing := func(name string) error {
		return fmt.Errorf("%w: %s", ErrComponentRequired, name)
	}
	switch {
	case c.Units == nil:
		return missing("unit repository")
	case c.State == nil:
		return missing("state repository")
	case c.Purger == nil:
		return missing("purger")
	case c.Extractor == nil:
		return missing("extractor")
	case c.Summarizer == nil:
		return missing("summarizer")
	case c.Index == nil:
		return missing("index")
	case c.Answerer == nil:
		return missing("answerer")
	}
	return nil
}

// Stats describes a corpus and its index.
type Stats struct {
	Stage  core.Stage
	Corpus core.CorpusTag
	Source string
	Units  map[core.Kind]int
	Index  *core.IndexStats
}

// Coordinator runs documents through extraction, summarization and indexing,
// and serves questions once the corpus is Ready.
type Coordinator struct {
	mu         sync.RWMutex
	components Components
	state      core.PipelineState
	logger     *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates a coordinator and restores the persisted stage.
// A store left mid-run by a crash reopens in that stage and must be processed
// again before it answers questions.
func NewCoordinator(ctx context.Context, components Components, opts ...Option) (*Coordinator, error) {
	if err := components.validate(); err != nil {
		return nil, err
	}

	c := &Coordinator{
		components: components,
		state:      core.PipelineState{Stage: core.StageEmpty},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "coordinator")

	saved, err := components.State.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading pipeline state: %w", err)
	}
	if saved != nil {
		c.state = *saved
		c.logger.Debug("restored pipeline state", "stage", c.state.Stage, "corpus", c.state.Corpus)
	}
	return c, nil
}

// State returns the current pipeline state.
func (c *Coordinator) State() core.PipelineState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Process extracts the document at path and builds its index.
// Extraction failures are fatal and leave the stage unchanged.
func (c *Coordinator) Process(ctx context.Context, path string) (*Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.components.Extractor.Extract(ctx, path)
	if err != nil {
		var extractionErr *core.ExtractionError
		if !errors.As(err, &extractionErr) && !isContextErr(err) {
			err = &core.ExtractionError{Source: path, Cause: err}
		}
		c.logger.Error("extraction failed", "source", path, "err", err)
		return nil, err
	}
	return c.process(ctx, doc)
}

// ProcessUnits builds the index from an already extracted document.
func (c *Coordinator) ProcessUnits(ctx context.Context, doc *extract.Document) (*Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.process(ctx, doc)
}

func (c *Coordinator) process(ctx context.Context, doc *extract.Document) (*Report, error) {
	if doc == nil {
		return nil, &core.ExtractionError{Cause: extract.ErrNoContent}
	}
	started := time.Now()
	report := &Report{
		RunID:     uuid.New(),
		Source:    doc.Source,
		Corpus:    doc.Corpus,
		Extracted: make(map[core.Kind]int),
	}
	logger := c.logger.With("run", report.RunID)

	units := doc.ContentUnits()
	if len(units) == 0 {
		return nil, &core.ExtractionError{Source: doc.Source, Cause: extract.ErrNoContent}
	}
	for _, unit := range units {
		report.Extracted[unit.Kind]++
	}

	existing, err := c.components.Units.Corpus(ctx)
	if err != nil {
		return nil, err
	}
	if existing != "" && existing != doc.Corpus {
		return nil, &core.MixedCorpusError{Expected: existing, Got: doc.Corpus}
	}

	// Extracted
	if err := c.components.Units.PutUnits(ctx, units...); err != nil {
		return nil, err
	}
	c.state.Corpus = doc.Corpus
	c.state.Source = doc.Source
	if err := c.transition(ctx, core.StageExtracted); err != nil {
		return nil, err
	}
	logger.Info("extracted units", "source", doc.Source, "units", len(units))

	pending := make([]*core.ContentUnit, 0, len(units))
	for _, unit := range units {
		indexed, err := c.components.Index.Contains(ctx, unit.ID)
		if err != nil {
			return nil, err
		}
		if indexed {
			report.Skipped = append(report.Skipped, unit.ID)
			continue
		}
		pending = append(pending, unit)
	}
	if len(report.Skipped) > 0 {
		logger.Info("skipping units indexed by an earlier run", "skipped", len(report.Skipped))
	}

	// Summarized
	results := c.components.Summarizer.GenerateBatch(ctx, pending)
	pairs := make([]index.Pair, 0, len(results))
	for i, result := range results {
		if result.OK() {
			pairs = append(pairs, index.Pair{Unit: pending[i], Surrogate: result.Surrogate})
			continue
		}
		report.Failed = append(report.Failed, UnitFailure{UnitID: pending[i].ID, Kind: pending[i].Kind, Err: result.Err})
	}
	report.Summarized = len(pairs)

	// Surrogates already paid for are indexed even when the run was cancelled.
	interrupted := ctx.Err()
	commitCtx := ctx
	if interrupted != nil {
		commitCtx = context.WithoutCancel(ctx)
	}
	if err := c.transition(commitCtx, core.StageSummarized); err != nil {
		return nil, err
	}
	logger.Info("summarized units", "summarized", report.Summarized, "failed", len(report.Failed))

	// Indexed
	for i, result := range c.components.Index.IndexBatch(commitCtx, pairs) {
		if result.Err != nil {
			report.Failed = append(report.Failed, UnitFailure{UnitID: pairs[i].Unit.ID, Kind: pairs[i].Unit.Kind, Err: result.Err})
			continue
		}
		report.Indexed++
	}
	sortFailures(report, units)

	if interrupted == nil && capabilityUnavailable(len(pending), report) {
		report.Duration = time.Since(started)
		cause := report.Failed[0].Err
		logger.Error("no unit could be summarized or indexed", "failed", len(report.Failed), "err", cause)
		return report, fmt.Errorf("%w: %w", ErrCapabilityUnavailable, cause)
	}

	if err := c.transition(commitCtx, core.StageIndexed); err != nil {
		return nil, err
	}

	// Ready
	if err := c.transition(commitCtx, core.StageReady); err != nil {
		return nil, err
	}
	report.Duration = time.Since(started)

	for _, failure := range report.Failed {
		logger.Warn("unit not indexed", "unit", failure.UnitID, "kind", failure.Kind, "err", failure.Err)
	}
	logger.Info("corpus ready",
		"indexed", report.Indexed,
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
		"duration", report.Duration)

	if interrupted != nil {
		report.Interrupted = true
		return report, fmt.Errorf("%w: %w", ErrInterrupted, interrupted)
	}
	return report, nil
}

// transition moves to the next stage and persists it. A run may restart at
// Extracted from any stage; every other move must go forward by one.
func (c *Coordinator) transition(ctx context.Context, to core.Stage) error {
	if to != core.StageExtracted && to != c.state.Stage+1 {
		return fmt.Errorf("invalid stage transition %s -> %s", c.state.Stage, to)
	}
	next := c.state
	next.Stage = to
	if err := c.components.State.SaveState(ctx, &next); err != nil {
		return fmt.Errorf("saving pipeline state: %w", err)
	}
	c.state = next
	return nil
}

// Answer answers a question from the indexed corpus.
// Returns core.NotReadyError unless the pipeline is Ready.
func (c *Coordinator) Answer(ctx context.Context, question string) (*core.AnswerResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.components.Answerer.Answer(ctx, question)
}

// AnswerAll answers each question in order.
func (c *Coordinator) AnswerAll(ctx context.Context, questions []string) ([]answer.BatchAnswer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.components.Answerer.AnswerAll(ctx, questions), nil
}

// Search returns the raw units ranked for query.
func (c *Coordinator) Search(ctx context.Context, query string, k int) (*core.QueryResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.components.Index.Search(ctx, query, k)
}

// Unit returns a stored unit, indexed or not.
func (c *Coordinator) Unit(ctx context.Context, id core.ID) (*core.ContentUnit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.components.Units.GetUnit(ctx, id)
}

// Stats reports the stage, unit counts and index statistics.
func (c *Coordinator) Stats(ctx context.Context) (*Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts, err := c.components.Units.CountUnits(ctx)
	if err != nil {
		return nil, err
	}
	indexStats, err := c.components.Index.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Stage:  c.state.Stage,
		Corpus: c.state.Corpus,
		Source: c.state.Source,
		Units:  counts,
		Index:  indexStats,
	}, nil
}

// Clear erases the corpus and returns the pipeline to Empty.
func (c *Coordinator) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.components.Purger.Purge(ctx); err != nil {
		return err
	}
	c.state = core.PipelineState{Stage: core.StageEmpty}
	if err := c.components.State.SaveState(ctx, &c.state); err != nil {
		return fmt.Errorf("saving pipeline state: %w", err)
	}
	c.logger.Info("corpus cleared")
	return nil
}

func (c *Coordinator) ready() error {
	if c.state.Stage != core.StageReady {
		return &core.NotReadyError{Stage: c.state.Stage}
	}
	return nil
}

// sortFailures puts failures in extraction order.
func sortFailures(report *Report, units []*core.ContentUnit) {
	order := make(map[core.ID]int, len(units))
	for i, unit := range units {
		order[unit.ID] = i
	}
	slices.SortFunc(report.Failed, func(a, b UnitFailure) int {
		return cmp.Compare(order[a.UnitID], order[b.UnitID])
	})
}

// capabilityUnavailable reports whether a run attempted units, indexed none
// of them, and lost every one to a service that could not be reached or
// refused the credentials. Malformed content fails with ai.ErrInvalidRequest
// and does not count.
func capabilityUnavailable(attempted int, report *Report) bool {
	if attempted == 0 || report.Indexed > 0 || len(report.Failed) != attempted {
		return false
	}
	for _, failure := range report.Failed {
		if !isCapabilityErr(failure.Err) {
			return false
		}
	}
	return true
}

func isCapabilityErr(err error) bool {
	return errors.Is(err, ai.ErrUpstreamUnavailable) ||
		errors.Is(err, ai.ErrAuthentication) ||
		errors.Is(err, ai.ErrTimeout) ||
		errors.Is(err, ai.ErrRateLimited)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
