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
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrInvalidContentUnit indicates a ContentUnit failed validation.
	ErrInvalidContentUnit = errors.New("invalid content unit")

	// ErrInvalidSurrogate indicates a Surrogate failed validation.
	ErrInvalidSurrogate = errors.New("invalid surrogate")

	// ErrEmptyPayload indicates the unit payload is empty.
	ErrEmptyPayload = errors.New("payload cannot be empty")

	// ErrInvalidKind indicates a Kind outside {text, table, image}.
	ErrInvalidKind = errors.New("invalid content kind")

	// ErrEmptyCorpus indicates a unit carries no corpus tag.
	ErrEmptyCorpus = errors.New("corpus tag cannot be empty")

	// ErrIDMismatch indicates a unit ID that does not match its content.
	ErrIDMismatch = errors.New("unit id does not match content")

	// ErrEmptySurrogateText indicates a surrogate with no text.
	ErrEmptySurrogateText = errors.New("surrogate text cannot be empty")

	// ErrUnitMismatch indicates a surrogate that references a different unit.
	ErrUnitMismatch = errors.New("surrogate references a different unit")
)

// Error classes. The typed errors below match these through errors.Is.
var (
	ErrNotFound         = errors.New("content unit not found")
	ErrDuplicateID      = errors.New("duplicate content unit id")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotReady         = errors.New("pipeline not ready")
	ErrMixedCorpus      = errors.New("mixed corpus")
	ErrExtraction       = errors.New("extraction failed")
	ErrSummarization    = errors.New("summarization failed")
	ErrIndexConsistency = errors.New("index consistency violated")
	ErrQuery            = errors.New("query failed")
	ErrGeneration       = errors.New("generation failed")
)

// NotFoundError reports a unit ID absent from the store.
type NotFoundError struct {
	ID ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("content unit %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateIDError reports an attempt to store a different payload under an existing ID.
type DuplicateIDError struct {
	ID ID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("content unit %s already stored with a different payload", e.ID)
}

func (e *DuplicateIDError) Is(target error) bool { return target == ErrDuplicateID }

// InvalidArgumentError reports a caller-supplied value outside its domain.
type InvalidArgumentError struct {
	Name   string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Name, e.Reason)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// NotReadyError reports a query issued before the pipeline reached StageReady.
type NotReadyError struct {
	Stage Stage
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("pipeline not ready: current stage is %s", e.Stage)
}

func (e *NotReadyError) Is(target error) bool { return target == ErrNotReady }

// MixedCorpusError reports content from a second document entering a store.
type MixedCorpusError struct {
	Expected CorpusTag
	Got      CorpusTag
}

func (e *MixedCorpusError) Error() string {
	return fmt.Sprintf("store holds corpus %s, refusing content from corpus %s (clear the store first)", e.Expected, e.Got)
}

func (e *MixedCorpusError) Is(target error) bool { return target == ErrMixedCorpus }

// ExtractionError is fatal to a processing run.
type ExtractionError struct {
	Source string
	Cause  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction of %s failed: %v", e.Source, e.Cause)
}

func (e *ExtractionError) Unwrap() error        { return e.Cause }
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// SummarizationError is scoped to one unit; the batch continues without it.
type SummarizationError struct {
	UnitID ID
	Cause  error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization of unit %s failed: %v", e.UnitID, e.Cause)
}

func (e *SummarizationError) Unwrap() error        { return e.Cause }
func (e *SummarizationError) Is(target error) bool { return target == ErrSummarization }

// IndexConsistencyError describes a write that would have left a vector
// without resolvable raw content. Such writes are rolled back.
type IndexConsistencyError struct {
	UnitID ID
	Cause  error
}

func (e *IndexConsistencyError) Error() string {
	return fmt.Sprintf("index write for unit %s rolled back: %v", e.UnitID, e.Cause)
}

func (e *IndexConsistencyError) Unwrap() error        { return e.Cause }
func (e *IndexConsistencyError) Is(target error) bool { return target == ErrIndexConsistency }

// QueryError is surfaced to the caller of a search or answer.
type QueryError struct {
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Cause)
}

func (e *QueryError) Unwrap() error        { return e.Cause }
func (e *QueryError) Is(target error) bool { return target == ErrQuery }

// GenerationError wraps a failed answer generation call.
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("answer generation failed: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error        { return e.Cause }
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }
