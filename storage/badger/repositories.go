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

// Repositories bundles the repositories sharing one backend.
type Repositories struct {
	Units   *UnitRepository
	Index   *IndexRepository
	State   *StateRepository
	Backend *Backend
}

// NewRepositories creates the unit, index and state repositories over backend.
func NewRepositories(backend *Backend) *Repositories {
	return &Repositories{
		Units:   NewUnitRepository(backend),
		Index:   NewIndexRepository(backend),
		State:   NewStateRepository(backend),
		Backend: backend,
	}
}

// NewMemoryRepositories creates repositories over an in-memory backend for testing.
// Caller must Close the result when done.
func NewMemoryRepositories() (*Repositories, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}
	return NewRepositories(backend), nil
}

// Close closes the repositories and the backend.
func (r *Repositories) Close() error {
	r.Units.Close()
	r.Index.Close()
	return r.Backend.Close()
}
