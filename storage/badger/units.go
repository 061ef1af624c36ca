package badger

import (
	"bytes"
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// UnitRepository implements storage.UnitRepository for BadgerDB.
type UnitRepository struct {
	backend *Backend
}

var _ storage.UnitRepository = (*UnitRepository)(nil)

// NewUnitRepository creates a new UnitRepository.
func NewUnitRepository(backend *Backend) *UnitRepository {
	return &UnitRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns all resources.
func (r *UnitRepository) Close() error {
	return nil
}

// PutUnits stores units in a single transaction. The first unit written to an
// empty store fixes the store's corpus tag.
func (r *UnitRepository) PutUnits(ctx context.Context, units ...*core.ContentUnit) error {
	if len(units) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, unit := range units {
		if err := core.ValidateContentUnit(unit); err != nil {
			return err
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		corpus, err := readCorpus(tx)
		if err != nil {
			return err
		}
		if corpus == "" {
			corpus = units[0].Corpus
			if err := tx.Set([]byte(unitCorpusKey), []byte(corpus)); err != nil {
				return err
			}
		}

		for _, unit := range units {
			if unit.Corpus != corpus {
				return &core.MixedCorpusError{Expected: corpus, Got: unit.Corpus}
			}

			key := makeUnitKey(unit.ID)
			existing, err := readUnit(tx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				if existing.Kind != unit.Kind || !bytes.Equal(existing.Payload, unit.Payload) {
					return &core.DuplicateIDError{ID: unit.ID}
				}
				continue
			}

			if err := tx.Set(key, storage.MarshalContentUnit(unit)); err != nil {
				return err
			}
			orderKey := makeUnitOrderKey(unit.Ordinal, unit.ID)
			if err := tx.Set(orderKey, storage.MarshalID(unit.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetUnit retrieves a single unit by ID.
func (r *UnitRepository) GetUnit(ctx context.Context, id core.ID) (*core.ContentUnit, error) {
	var unit *core.ContentUnit
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		unit, err = readUnit(tx, makeUnitKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, &core.NotFoundError{ID: id}
	}
	return unit, nil
}

// GetUnits retrieves the units that exist among ids, in the order given.
func (r *UnitRepository) GetUnits(ctx context.Context, ids ...core.ID) ([]*core.ContentUnit, error) {
	units := make([]*core.ContentUnit, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			unit, err := readUnit(tx, makeUnitKey(id))
			if err != nil {
				return err
			}
			if unit != nil {
				units = append(units, unit)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return units, nil
}

// ListUnits walks the extraction order index, optionally filtering by kind.
func (r *UnitRepository) ListUnits(ctx context.Context, kind *core.Kind) ([]*core.ContentUnit, error) {
	if kind != nil {
		if err := core.ValidateKind(*kind); err != nil {
			return nil, err
		}
	}

	var units []*core.ContentUnit
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(unitOrderPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id := idFromKey(iter.Item().Key())
			unit, err := readUnit(tx, makeUnitKey(id))
			if err != nil {
				return err
			}
			if unit == nil {
				continue
			}
			if kind != nil && unit.Kind != *kind {
				continue
			}
			units = append(units, unit)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return units, nil
}

// CountUnits returns the number of stored units per kind. Every valid kind is
// present in the result, possibly with a zero count.
func (r *UnitRepository) CountUnits(ctx context.Context) (map[core.Kind]int, error) {
	units, err := r.ListUnits(ctx, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[core.Kind]int, len(core.Kinds()))
	for _, kind := range core.Kinds() {
		counts[kind] = 0
	}
	for _, unit := range units {
		counts[unit.Kind]++
	}
	return counts, nil
}

// Corpus returns the store's corpus tag, or "" if nothing has been stored.
func (r *UnitRepository) Corpus(ctx context.Context) (core.CorpusTag, error) {
	var corpus core.CorpusTag
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		corpus, err = readCorpus(tx)
		return err
	}, false)
	return corpus, err
}

func readCorpus(tx *badger.Txn) (core.CorpusTag, error) {
	item, err := tx.Get([]byte(unitCorpusKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return core.CorpusTag(val), nil
}

// readUnit returns nil, nil when the key is absent.
func readUnit(tx *badger.Txn, key []byte) (*core.ContentUnit, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var unit *core.ContentUnit
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		unit, unmarshalErr = storage.UnmarshalContentUnit(val)
		return unmarshalErr
	})
	return unit, err
}
