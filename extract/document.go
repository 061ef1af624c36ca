package extract

import (
	"time"

	"github.com/poiesic/docent/core"
)

// RawUnit is one extracted element before it becomes a content unit.
type RawUnit struct {
	Kind      core.Kind
	Payload   []byte
	MediaType string
	Location  core.SourceLocation
}

// Document is the ordered output of an extractor for a single source.
type Document struct {
	Source string
	Corpus core.CorpusTag
	Units  []RawUnit
}

// ContentUnits converts the raw units into content units tagged with the
// document's corpus. Ordinals follow extraction order. Units whose kind and
// payload repeat an earlier unit share its ID and are dropped, keeping the first.
func (d *Document) ContentUnits() []*core.ContentUnit {
	now := time.Now().UTC()
	seen := make(map[core.ID]bool, len(d.Units))
	units := make([]*core.ContentUnit, 0, len(d.Units))

	for _, raw := range d.Units {
		if len(raw.Payload) == 0 {
			continue
		}
		id := core.UnitIDFor(raw.Kind, raw.Payload)
		if seen[id] {
			continue
		}
		seen[id] = true

		units = append(units, &core.ContentUnit{
			ID:          id,
			Corpus:      d.Corpus,
			Kind:        raw.Kind,
			Payload:     raw.Payload,
			MediaType:   raw.MediaType,
			Location:    raw.Location,
			Ordinal:     uint64(len(units)),
			ExtractedAt: now,
		})
	}
	return units
}

// Counts returns the number of raw units per kind.
func (d *Document) Counts() map[core.Kind]int {
	counts := make(map[core.Kind]int, len(core.Kinds()))
	for _, kind := range core.Kinds() {
		counts[kind] = 0
	}
	for _, raw := range d.Units {
		counts[raw.Kind]++
	}
	return counts
}
