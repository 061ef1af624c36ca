package storage

import (
	"context"

	"github.com/poiesic/docent/core"
)

// UnitRepository is the Content Unit Store: keyed, durable storage of raw
// content units for a single corpus.
// Implementations must be thread-safe and support concurrent access.
type UnitRepository interface {
	// PutUnits stores units. Re-putting a unit with an identical payload is a no-op.
	// Returns core.DuplicateIDError if an ID is already stored with a different payload,
	// and core.MixedCorpusError if a unit's corpus tag differs from the store's.
	// The whole call is applied in one transaction.
	PutUnits(ctx context.Context, units ...*core.ContentUnit) error

	// GetUnit retrieves a single unit by ID.
	// Returns core.NotFoundError if the unit doesn't exist.
	GetUnit(ctx context.Context, id core.ID) (*core.ContentUnit, error)

	// GetUnits retrieves multiple units by their IDs.
	// Returns only the units that exist (no error for missing units).
	GetUnits(ctx context.Context, ids ...core.ID) ([]*core.ContentUnit, error)

	// ListUnits returns units in extraction order, optionally filtered by kind.
	ListUnits(ctx context.Context, kind *core.Kind) ([]*core.ContentUnit, error)

	// CountUnits returns the number of stored units per kind.
	CountUnits(ctx context.Context) (map[core.Kind]int, error)

	// Corpus returns the corpus tag of the stored units, or "" for an empty store.
	Corpus(ctx context.Context) (core.CorpusTag, error)

	// Close releases repository resources. It does not close the backend.
	Close() error
}

// IndexRepository persists the two halves of the multi-vector index: vector
// entries for search and the raw lookup store for resolution.
// Implementations must be thread-safe and support concurrent access.
type IndexRepository interface {
	// Upsert records the vector entry and the raw mapping for one unit in a
	// single transaction. Either both are written or neither is.
	// Re-indexing an existing unit keeps its original insertion sequence.
	// Returns the stored entry with Seq populated.
	Upsert(ctx context.Context, unit *core.ContentUnit, entry *core.IndexEntry) (*core.IndexEntry, error)

	// UpdateVectors replaces the vectors of existing entries, leaving raw mappings untouched.
	// Returns ErrNotFound if any entry doesn't exist.
	UpdateVectors(ctx context.Context, entries ...*core.IndexEntry) error

	// GetEntry retrieves the vector entry for a unit.
	// Returns ErrNotFound if the unit is not indexed.
	GetEntry(ctx context.Context, id core.ID) (*core.IndexEntry, error)

	// ListEntries returns up to limit entries with IDs greater than after, ordered by ID.
	ListEntries(ctx context.Context, after core.ID, limit int) ([]*core.IndexEntry, error)

	// Resolve looks up the raw content unit for an indexed ID.
	// Returns ErrNotFound if no raw mapping exists.
	Resolve(ctx context.Context, id core.ID) (*core.ContentUnit, error)

	// FindSimilar scores every entry against vector by inner product and returns
	// matches with score >= minScore, best first, ties broken by insertion order.
	// Returns at most limit matches.
	FindSimilar(ctx context.Context, vector []float32, minScore float32, limit int) ([]*core.SimilarityMatch, error)

	// Stats counts vector entries and raw documents and reports the vector dimension.
	Stats(ctx context.Context) (*core.IndexStats, error)

	// Close releases repository resources. It does not close the backend.
	Close() error
}

// StateRepository persists the pipeline coordinator's stage.
type StateRepository interface {
	// SaveState persists the state, stamping UpdatedAt.
	SaveState(ctx context.Context, state *core.PipelineState) error

	// LoadState retrieves the persisted state.
	// Returns nil, nil if no state has been saved.
	LoadState(ctx context.Context) (*core.PipelineState, error)
}

// Purger erases every record held by a backend.
type Purger interface {
	Purge(ctx context.Context) error
}
