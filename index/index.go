package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// DefaultCollection names the index in stats output.
const DefaultCollection = "multimodal_summaries"

// Pair is a content unit together with the surrogate that describes it.
type Pair struct {
	Unit      *core.ContentUnit
	Surrogate *core.Surrogate
}

// Result is the outcome of indexing one pair.
type Result struct {
	UnitID core.ID
	Entry  *core.IndexEntry
	Err    error
}

// Index is the multi-vector index over a storage.IndexRepository.
type Index struct {
	repository storage.IndexRepository
	embedder   ai.Embedder
	minScore   float32
	collection string
	logger     *slog.Logger
}

// Option configures an Index.
type Option func(*Index) error

// WithMinScore drops hits scoring below minScore. Default keeps every hit.
func WithMinScore(minScore float32) Option {
	return func(ix *Index) error {
		ix.minScore = minScore
		return nil
	}
}

// WithCollection sets the collection name reported by Stats.
func WithCollection(name string) Option {
	return func(ix *Index) error {
		if strings.TrimSpace(name) == "" {
			return &core.InvalidArgumentError{Name: "collection", Reason: "must not be empty"}
		}
		ix.collection = name
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// New creates an index.
func New(repository storage.IndexRepository, embedder ai.Embedder, opts ...Option) (*Index, error) {
	if repository == nil {
		return nil, ErrIndexRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	ix := &Index{
		repository: repository,
		embedder:   embedder,
		minScore:   -math.MaxFloat32,
		collection: DefaultCollection,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}
	ix.logger = ix.logger.With("component", "index")

	return ix, nil
}

// Index embeds the surrogate and records the vector entry together with the
// raw unit. Re-indexing the same pair leaves a single entry.
func (ix *Index) Index(ctx context.Context, unit *core.ContentUnit, surrogate *core.Surrogate) error {
	if err := validatePair(unit, surrogate); err != nil {
		return err
	}

	vector, err := ix.embedder.EmbedText(ctx, surrogate.Text)
	if err != nil {
		return fmt.Errorf("%w: unit %s: %w", ErrEmbeddingFailed, unit.ID, err)
	}

	_, err = ix.commit(ctx, unit, surrogate, vector)
	return err
}

// IndexBatch indexes pairs in order, embedding their surrogates in one call.
// When the batch embedding fails each surrogate is embedded on its own, so a
// failure stays scoped to its unit. Entries are committed in input order,
// which fixes the tie-break order of later searches.
func (ix *Index) IndexBatch(ctx context.Context, pairs []Pair) []Result {
	results := make([]Result, len(pairs))
	texts := make([]string, 0, len(pairs))
	valid := make([]int, 0, len(pairs))

	for i, pair := range pairs {
		if pair.Unit != nil {
			results[i].UnitID = pair.Unit.ID
		}
		if err := validatePair(pair.Unit, pair.Surrogate); err != nil {
			results[i].Err = err
			continue
		}
		texts = append(texts, pair.Surrogate.Text)
		valid = append(valid, i)
	}
	if len(valid) == 0 {
		return results
	}

	vectors, err := ix.embedder.EmbedTexts(ctx, texts)
	if err != nil || len(vectors) != len(texts) {
		if err == nil {
			err = fmt.Errorf("expected %d embeddings, received %d", len(texts), len(vectors))
		}
		ix.logger.Warn("batch embedding failed, embedding individually", "pairs", len(texts), "err", err)
		vectors = nil
	}

	for n, i := range valid {
		pair := pairs[i]
		var vector []float32
		if vectors != nil {
			vector = vectors[n]
		} else {
			vector, err = ix.embedder.EmbedText(ctx, pair.Surrogate.Text)
			if err != nil {
				results[i].Err = fmt.Errorf("%w: unit %s: %w", ErrEmbeddingFailed, pair.Unit.ID, err)
				continue
			}
		}

		entry, err := ix.commit(ctx, pair.Unit, pair.Surrogate, vector)
		results[i].Entry = entry
		results[i].Err = err
		if err != nil {
			ix.logger.Warn("failed to index unit", "unit", pair.Unit.ID, "err", err)
		}
	}
	return results
}

func (ix *Index) commit(ctx context.Context, unit *core.ContentUnit, surrogate *core.Surrogate, vector []float32) (*core.IndexEntry, error) {
	entry := &core.IndexEntry{
		UnitID:    unit.ID,
		Kind:      unit.Kind,
		Vector:    ai.NormalizeVector(vector),
		Surrogate: surrogate.Text,
	}
	stored, err := ix.repository.Upsert(ctx, unit, entry)
	if err != nil {
		return nil, err
	}
	ix.logger.Debug("indexed unit", "unit", unit.ID, "kind", unit.Kind, "seq", stored.Seq)
	return stored, nil
}

// Search returns up to k raw units ranked by similarity of their surrogates
// to query. Hits whose raw content cannot be resolved are dropped and logged.
// Failures are returned as *core.QueryError.
func (ix *Index) Search(ctx context.Context, query string, k int) (*core.QueryResult, error) {
	return ix.SearchWithMonitor(ctx, query, k, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
func (ix *Index) SearchWithMonitor(ctx context.Context, query string, k int, monitor SearchMonitor) (*core.QueryResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if k < 1 {
		return nil, &core.QueryError{Cause: &core.InvalidArgumentError{Name: "k", Reason: fmt.Sprintf("must be at least 1, got %d", k)}}
	}
	if strings.TrimSpace(query) == "" {
		return nil, &core.QueryError{Cause: &core.InvalidArgumentError{Name: "query", Reason: "must not be empty"}}
	}
	monitor.Start(query, k)

	vector, err := ix.embedder.EmbedText(ctx, query)
	if err != nil {
		ix.logger.Error("error generating embedding for query", "err", err)
		return nil, &core.QueryError{Cause: fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)}
	}
	vector = ai.NormalizeVector(vector)
	monitor.AfterEmbedding(len(vector))

	matches, err := ix.repository.FindSimilar(ctx, vector, ix.minScore, k)
	if err != nil {
		ix.logger.Error("error querying for similar entries", "err", err)
		return nil, &core.QueryError{Cause: err}
	}
	monitor.AfterSimilaritySearch(matches)

	result := &core.QueryResult{}
	for _, match := range matches {
		unit, err := ix.repository.Resolve(ctx, match.UnitID)
		if err != nil {
			ix.logger.Warn("dropping unresolvable search hit", "unit", match.UnitID, "err", err)
			monitor.Dropped(match.UnitID, err)
			continue
		}
		result.Append(unit, match.Score)
	}
	monitor.Finish(result)

	return result, nil
}

// Contains reports whether a unit has an index entry.
func (ix *Index) Contains(ctx context.Context, id core.ID) (bool, error) {
	_, err := ix.repository.GetEntry(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// Stats reports entry and document counts for the index.
func (ix *Index) Stats(ctx context.Context) (*core.IndexStats, error) {
	stats, err := ix.repository.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Collection = ix.collection
	return stats, nil
}

func validatePair(unit *core.ContentUnit, surrogate *core.Surrogate) error {
	if err := core.ValidateContentUnit(unit); err != nil {
		return err
	}
	return core.ValidateSurrogate(surrogate, unit)
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound) || errors.Is(err, core.ErrNotFound)
}
