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


package core

import (
	"fmt"
	"time"
)

// NewContentUnit builds a unit whose ID is derived from kind and payload.
func NewContentUnit(corpus CorpusTag, kind Kind, payload []byte, location SourceLocation) *ContentUnit {
	return &ContentUnit{
		ID:          UnitIDFor(kind, payload),
		Corpus:      corpus,
		Kind:        kind,
		Payload:     payload,
		Location:    location,
		ExtractedAt: time.Now().UTC(),
	}
}

// ValidateContentUnit validates a ContentUnit according to domain rules.
//
// Validation rules:
//   - ID must be non-zero
//   - Kind must be text, table or image
//   - Payload must not be empty
//   - Corpus must be set
func ValidateContentUnit(unit *ContentUnit) error {
	if unit == nil {
		return fmt.Errorf("%w: unit is nil", ErrInvalidContentUnit)
	}

	if unit.ID == 0 {
		return fmt.Errorf("%w: id is zero", ErrInvalidContentUnit)
	}

	if err := ValidateKind(unit.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidContentUnit, err)
	}

	if len(unit.Payload) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidContentUnit, ErrEmptyPayload)
	}

	if unit.Corpus == "" {
		return fmt.Errorf("%w: %w", ErrInvalidContentUnit, ErrEmptyCorpus)
	}

	return nil
}

// ValidateSurrogate checks a surrogate against the unit it describes.
// A surrogate must never exist for a unit other than the one it is paired with.
func ValidateSurrogate(surrogate *Surrogate, unit *ContentUnit) error {
	if surrogate == nil {
		return fmt.Errorf("%w: surrogate is nil", ErrInvalidSurrogate)
	}

	if surrogate.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSurrogate, ErrEmptySurrogateText)
	}

	if unit == nil || surrogate.UnitID != unit.ID {
		return fmt.Errorf("%w: %w", ErrInvalidSurrogate, ErrUnitMismatch)
	}

	return nil
}

// ValidateKind validates that a Kind is one of the closed set.
func ValidateKind(kind Kind) error {
	switch kind {
	case KindText, KindTable, KindImage:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidKind, kind)
	}
}
