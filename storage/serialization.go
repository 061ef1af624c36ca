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


package storage

import (
	"fmt"

	"github.com/poiesic/docent/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalContentUnit serializes a ContentUnit to bytes.
func MarshalContentUnit(unit *core.ContentUnit) []byte {
	buf := make([]byte, core.ContentUnitMUS.Size(*unit))
	core.ContentUnitMUS.Marshal(*unit, buf)
	return buf
}

// UnmarshalContentUnit deserializes a ContentUnit from bytes.
// Timestamps are stored as Unix microseconds and come back in UTC.
func UnmarshalContentUnit(data []byte) (*core.ContentUnit, error) {
	unit, _, err := core.ContentUnitMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if err := core.ValidateKind(unit.Kind); err != nil {
		return nil, fmt.Errorf("%w: unit %s: %w", ErrSerializationFailed, unit.ID, err)
	}
	unit.ExtractedAt = unit.ExtractedAt.UTC()
	return &unit, nil
}

// MarshalIndexEntry serializes an IndexEntry to bytes.
func MarshalIndexEntry(entry *core.IndexEntry) []byte {
	buf := make([]byte, core.IndexEntryMUS.Size(*entry))
	core.IndexEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalIndexEntry deserializes an IndexEntry from bytes.
func UnmarshalIndexEntry(data []byte) (*core.IndexEntry, error) {
	entry, _, err := core.IndexEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if err := core.ValidateKind(entry.Kind); err != nil {
		return nil, fmt.Errorf("%w: entry %s: %w", ErrSerializationFailed, entry.UnitID, err)
	}
	entry.IndexedAt = entry.IndexedAt.UTC()
	return &entry, nil
}

// MarshalPipelineState serializes a PipelineState to bytes.
func MarshalPipelineState(state *core.PipelineState) []byte {
	buf := make([]byte, core.PipelineStateMUS.Size(*state))
	core.PipelineStateMUS.Marshal(*state, buf)
	return buf
}

// UnmarshalPipelineState deserializes a PipelineState from bytes.
func UnmarshalPipelineState(data []byte) (*core.PipelineState, error) {
	state, _, err := core.PipelineStateMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	state.UpdatedAt = state.UpdatedAt.UTC()
	return &state, nil
}
