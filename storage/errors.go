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

import "errors"

var (
	// ErrNotFound indicates that no unit, index entry or raw document exists for an ID.
	ErrNotFound = errors.New("record not found")

	// ErrTransactionFailed indicates a write that was rolled back; neither
	// half of an index write is visible afterwards.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrStorageClosed indicates use of a closed backend.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery indicates a non-positive limit or a malformed query vector.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed indicates a stored record that does not decode.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrDimensionMismatch indicates a vector whose length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyVector indicates an index entry without a vector.
	ErrEmptyVector = errors.New("vector cannot be empty")
)
