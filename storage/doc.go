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


// Package storage declares the repositories docent persists through.
//
// UnitRepository holds raw content units by ID. IndexRepository holds the
// searchable vector entries together with the lookup records that resolve a
// hit back to its unit. StateRepository keeps the pipeline stage and the tag
// of the corpus the store belongs to. A Purger wipes all three.
//
// IndexRepository.Upsert commits the vector entry and its lookup record in
// a single transaction, so a search can never return an ID that fails to
// resolve.
//
// Implementations are safe for concurrent use and honor context
// cancellation. The badger subpackage is the only implementation:
//
//	repos, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    return err
//	}
//	defer repos.Close()
package storage
