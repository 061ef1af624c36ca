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

	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

const (
	// DefaultBatchSize is the default number of entries to fetch in each batch
	DefaultBatchSize = 100
)

// EntryIterator pages through every index entry in ID order.
type EntryIterator struct {
	repo      storage.IndexRepository
	batchSize int
}

// NewEntryIterator creates a new entry iterator.
// batchSize: number of entries to fetch in each batch; non-positive uses DefaultBatchSize
func NewEntryIterator(repo storage.IndexRepository, batchSize int) *EntryIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &EntryIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn for each batch of entries.
// Iteration stops on the first error from fn or when every entry has been visited.
// Context cancellation is checked between batches.
func (it *EntryIterator) ForEach(ctx context.Context, fn func([]*core.IndexEntry) error) error {
	var after core.ID
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entries, err := it.repo.ListEntries(ctx, after, it.batchSize)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		// fn may replace vectors in place; take the cursor first.
		after = entries[len(entries)-1].UnitID
		if err := fn(entries); err != nil {
			return err
		}

		if len(entries) < it.batchSize {
			return nil
		}
	}
}
