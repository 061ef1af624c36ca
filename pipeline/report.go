package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/docent/core"
)

// UnitFailure records a unit that could not be summarized or indexed.
type UnitFailure struct {
	UnitID core.ID
	Kind   core.Kind
	Err    error
}

// Report summarizes one processing run.
type Report struct {
	RunID  uuid.UUID
	Source string
	Corpus core.CorpusTag

	// Extracted counts the document's units per kind.
	Extracted map[core.Kind]int
	// Skipped lists units already indexed by an earlier run.
	Skipped []core.ID
	// Summarized is the number of surrogates generated in this run.
	Summarized int
	// Indexed is the number of units indexed in this run.
	Indexed int
	Failed  []UnitFailure

	Interrupted bool
	Duration    time.Duration
}

// FailedIDs returns the IDs of failed units in extraction order.
func (r *Report) FailedIDs() []core.ID {
	ids := make([]core.ID, len(r.Failed))
	for i, failure := range r.Failed {
		ids[i] = failure.UnitID
	}
	return ids
}

// TotalExtracted returns the number of units extracted across all kinds.
func (r *Report) TotalExtracted() int {
	total := 0
	for _, n := range r.Extracted {
		total += n
	}
	return total
}
