package badger

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// maxConflictRetries bounds how often an upsert is replayed after a
// transaction conflict on the sequence counter.
const maxConflictRetries = 5

// IndexRepository implements storage.IndexRepository for BadgerDB.
// Vector entries live under vec: and raw documents under doc:, both keyed by
// unit ID, and are always written in the same transaction.
type IndexRepository struct {
	backend *Backend
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// NewIndexRepository creates a new IndexRepository.
func NewIndexRepository(backend *Backend) *IndexRepository {
	return &IndexRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns all resources.
func (r *IndexRepository) Close() error {
	return nil
}

// Upsert writes the vector entry and the raw document for one unit atomically.
func (r *IndexRepository) Upsert(ctx context.Context, unit *core.ContentUnit, entry *core.IndexEntry) (*core.IndexEntry, error) {
	if err := core.ValidateContentUnit(unit); err != nil {
		return nil, err
	}
	if entry == nil || len(entry.Vector) == 0 {
		return nil, storage.ErrEmptyVector
	}
	if entry.UnitID != unit.ID {
		return nil, &core.IndexConsistencyError{UnitID: entry.UnitID, Cause: core.ErrIDMismatch}
	}

	stored := *entry
	stored.Kind = unit.Kind
	stored.Vector = slices.Clone(entry.Vector)

	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		err = r.backend.WithTx(func(tx *badger.Txn) error {
			return r.upsert(tx, unit, &stored)
		}, true)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
		r.backend.logger.Debug("upsert conflict, retrying", "unit", unit.ID, "attempt", attempt+1)
	}
	if err != nil {
		if errors.Is(err, storage.ErrDimensionMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}
	return &stored, nil
}

func (r *IndexRepository) upsert(tx *badger.Txn, unit *core.ContentUnit, entry *core.IndexEntry) error {
	dim, err := readUint64(tx, []byte(vectorDimKey))
	if err != nil {
		return err
	}
	switch {
	case dim == 0:
		if err := tx.Set([]byte(vectorDimKey), encodeUint64(uint64(len(entry.Vector)))); err != nil {
			return err
		}
	case dim != uint64(len(entry.Vector)):
		return fmt.Errorf("%w: index has %d dimensions, got %d", storage.ErrDimensionMismatch, dim, len(entry.Vector))
	}

	vecKey := makeVectorKey(unit.ID)
	existing, err := readEntry(tx, vecKey)
	if err != nil {
		return err
	}
	if existing != nil {
		entry.Seq = existing.Seq
	} else {
		seq, err := readUint64(tx, []byte(vectorSeqKey))
		if err != nil {
			return err
		}
		seq++
		if err := tx.Set([]byte(vectorSeqKey), encodeUint64(seq)); err != nil {
			return err
		}
		entry.Seq = seq
	}
	entry.IndexedAt = time.Now().UTC()

	if err := tx.Set(vecKey, storage.MarshalIndexEntry(entry)); err != nil {
		return err
	}
	if err := tx.Set(makeDocKey(unit.ID), storage.MarshalContentUnit(unit)); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateVectors replaces the vectors of existing entries. The recorded
// dimension follows the new vectors so a whole-index re-embed can change it.
func (r *IndexRepository) UpdateVectors(ctx context.Context, entries ...*core.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, entry := range entries {
			if len(entry.Vector) == 0 {
				return storage.ErrEmptyVector
			}
			key := makeVectorKey(entry.UnitID)
			existing, err := readEntry(tx, key)
			if err != nil {
				return err
			}
			if existing == nil {
				return storage.ErrNotFound
			}
			existing.Vector = slices.Clone(entry.Vector)
			existing.IndexedAt = time.Now().UTC()
			if err := tx.Set(key, storage.MarshalIndexEntry(existing)); err != nil {
				return err
			}
		}
		dim := encodeUint64(uint64(len(entries[len(entries)-1].Vector)))
		if err := tx.Set([]byte(vectorDimKey), dim); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves the vector entry for a unit.
func (r *IndexRepository) GetEntry(ctx context.Context, id core.ID) (*core.IndexEntry, error) {
	var entry *core.IndexEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		entry, err = readEntry(tx, makeVectorKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, storage.ErrNotFound
	}
	return entry, nil
}

// ListEntries returns up to limit entries with IDs greater than after.
func (r *IndexRepository) ListEntries(ctx context.Context, after core.ID, limit int) ([]*core.IndexEntry, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var entries []*core.IndexEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeVectorKey(after)); iter.Valid() && len(entries) < limit; iter.Next() {
			item := iter.Item()
			if after != 0 && idFromKey(item.Key()) == after {
				continue
			}
			entry, err := unmarshalEntryItem(item)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Resolve looks up the raw document stored alongside an index entry.
func (r *IndexRepository) Resolve(ctx context.Context, id core.ID) (*core.ContentUnit, error) {
	var unit *core.ContentUnit
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		unit, err = readUnit(tx, makeDocKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, storage.ErrNotFound
	}
	return unit, nil
}

// FindSimilar scores every entry by inner product with vector. An entry whose
// dimension differs from the query, as left by an unfinished re-embed, fails
// the whole query with ErrDimensionMismatch.
func (r *IndexRepository) FindSimilar(ctx context.Context, vector []float32, minScore float32, limit int) ([]*core.SimilarityMatch, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}
	if len(vector) == 0 {
		return nil, storage.ErrEmptyVector
	}

	var matches []*core.SimilarityMatch
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := readUint64(tx, []byte(vectorDimKey))
		if err != nil {
			return err
		}
		if dim != 0 && dim != uint64(len(vector)) {
			return fmt.Errorf("%w: index has %d dimensions, query has %d", storage.ErrDimensionMismatch, dim, len(vector))
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, err := unmarshalEntryItem(iter.Item())
			if err != nil {
				return err
			}
			if len(entry.Vector) != len(vector) {
				return fmt.Errorf("%w: unit %s has %d dimensions, query has %d",
					storage.ErrDimensionMismatch, entry.UnitID, len(entry.Vector), len(vector))
			}

			score := dotProduct(vector, entry.Vector)
			if score >= minScore {
				matches = append(matches, &core.SimilarityMatch{
					UnitID: entry.UnitID,
					Score:  score,
					Seq:    entry.Seq,
				})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Best score first; equal scores keep insertion order
	slices.SortFunc(matches, func(a, b *core.SimilarityMatch) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Stats counts vector entries and raw documents.
func (r *IndexRepository) Stats(ctx context.Context) (*core.IndexStats, error) {
	stats := &core.IndexStats{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := readUint64(tx, []byte(vectorDimKey))
		if err != nil {
			return err
		}
		stats.Dimension = int(dim)
		stats.VectorEntries = countPrefix(tx, vectorPrefix)
		stats.StoredDocuments = countPrefix(tx, docPrefix)
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func countPrefix(tx *badger.Txn, prefix string) int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	count := 0
	for iter.Rewind(); iter.Valid(); iter.Next() {
		count++
	}
	return count
}

// readEntry returns nil, nil when the key is absent.
func readEntry(tx *badger.Txn, key []byte) (*core.IndexEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return unmarshalEntryItem(item)
}

func unmarshalEntryItem(item *badger.Item) (*core.IndexEntry, error) {
	var entry *core.IndexEntry
	err := item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalIndexEntry(val)
		return unmarshalErr
	})
	return entry, err
}

// readUint64 returns 0 when the key is absent.
func readUint64(tx *badger.Txn, key []byte) (uint64, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var v uint64
	err = item.Value(func(val []byte) error {
		v = decodeUint64(val)
		return nil
	})
	return v, err
}
