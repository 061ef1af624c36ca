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


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// StateRepository implements storage.StateRepository for BadgerDB.
type StateRepository struct {
	backend *Backend
}

var _ storage.StateRepository = (*StateRepository)(nil)

// NewStateRepository creates a new StateRepository.
func NewStateRepository(backend *Backend) *StateRepository {
	return &StateRepository{
		backend: backend,
	}
}

// SaveState persists the pipeline state.
func (r *StateRepository) SaveState(ctx context.Context, state *core.PipelineState) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		state.UpdatedAt = time.Now().UTC()
		value := storage.MarshalPipelineState(state)
		if err := tx.Set([]byte(pipelineStateKey), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadState retrieves the pipeline state.
// Returns nil, nil if no state has been saved.
func (r *StateRepository) LoadState(ctx context.Context) (*core.PipelineState, error) {
	var state *core.PipelineState
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(pipelineStateKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			state, unmarshalErr = storage.UnmarshalPipelineState(val)
			return unmarshalErr
		})
	}, false)

	return state, err
}
