package core

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a stable identifier for a content unit.
// It is derived from the unit's kind and payload so that re-extracting the
// same document yields the same IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	return IDFromBytes([]byte(text))
}

// IDFromBytes generates a deterministic ID from raw bytes using BLAKE2b hashing.
func IDFromBytes(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// UnitIDFor derives the ID of a content unit from its kind and payload.
// The kind is part of the hash so a table and a text block with identical
// text never collide.
func UnitIDFor(kind Kind, payload []byte) ID {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, byte(kind))
	buf = append(buf, payload...)
	return IDFromBytes(buf)
}

// String renders the ID as fixed-width hex.
func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// ParseID parses the hex form produced by ID.String.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 64)
	if err != nil {
		return 0, &InvalidArgumentError{Name: "id", Reason: err.Error()}
	}
	return ID(v), nil
}

// CorpusTag identifies the single source document a store was built from.
type CorpusTag string

// CorpusTagFromContent derives a corpus tag from the raw bytes of a source document.
func CorpusTagFromContent(data []byte) CorpusTag {
	h, _ := blake2b.New(8, nil)
	h.Write(data)
	return CorpusTag(hex.EncodeToString(h.Sum(nil)))
}

// Kind is the closed set of content unit variants.
type Kind int

const (
	// KindText is a block of prose.
	KindText Kind = iota + 1
	// KindTable is table markup.
	KindTable
	// KindImage is an encoded image.
	KindImage
)

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindText, KindTable, KindImage}
}

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTable:
		return "table"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return KindText, nil
	case "table":
		return KindTable, nil
	case "image":
		return KindImage, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// SourceLocation records where a unit came from in the source document.
type SourceLocation struct {
	Page    int    // 1-based page number, 0 when unknown
	Offset  int    // position of the element in extraction order
	Element string // extractor-assigned element identifier or file name
}

func (l SourceLocation) String() string {
	if l.Page > 0 {
		return fmt.Sprintf("page %d, element %d", l.Page, l.Offset)
	}
	return fmt.Sprintf("element %d", l.Offset)
}

// ContentUnit is one atomic piece of extracted document content.
// Units are immutable once stored.
type ContentUnit struct {
	ID          ID
	Corpus      CorpusTag
	Kind        Kind
	Payload     []byte // text, table markup, or encoded image bytes
	MediaType   string // MIME type of image payloads, e.g. "image/jpeg"
	Location    SourceLocation
	Ordinal     uint64 // extraction order within the corpus
	ExtractedAt time.Time
}

// Text returns the payload as a string. Meaningful for text and table units.
func (u *ContentUnit) Text() string {
	return string(u.Payload)
}

// Surrogate is the short natural-language description of a unit that gets
// embedded and searched in its place.
type Surrogate struct {
	UnitID    ID
	Text      string
	Model     string
	CreatedAt time.Time
}

// IndexEntry is the searchable side of the multi-vector index.
type IndexEntry struct {
	UnitID    ID
	Kind      Kind
	Vector    []float32
	Surrogate string // kept for diagnostics and re-embedding
	Seq       uint64 // insertion order, used to break score ties
	IndexedAt time.Time
}

// SimilarityMatch is a raw vector hit before resolution to content.
type SimilarityMatch struct {
	UnitID ID
	Score  float32
	Seq    uint64
}

// QueryResult is the ranked outcome of a search. UnitIDs, Scores and Units
// are parallel slices ordered by descending score.
type QueryResult struct {
	UnitIDs []ID
	Scores  []float32
	Units   []*ContentUnit
}

// Len returns the number of hits.
func (r *QueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.UnitIDs)
}

// Append adds a resolved hit to the result.
func (r *QueryResult) Append(unit *ContentUnit, score float32) {
	r.UnitIDs = append(r.UnitIDs, unit.ID)
	r.Scores = append(r.Scores, score)
	r.Units = append(r.Units, unit)
}

// NoRelevantContentText is the answer text returned when retrieval finds nothing.
const NoRelevantContentText = "No relevant content was found in the processed document for this question."

// AnswerResult is the outcome of a question.
type AnswerResult struct {
	Question string
	Text     string
	// CitedUnitIDs lists the units actually placed in context, in rank order.
	CitedUnitIDs []ID
	// DroppedUnitIDs lists retrieved units left out to respect the context budget.
	DroppedUnitIDs []ID
	// NoRelevantContent is set when retrieval returned nothing and no
	// generation call was made.
	NoRelevantContent bool
	Model             string
}

// IndexStats describes the contents of the multi-vector index.
type IndexStats struct {
	Collection      string
	VectorEntries   int
	StoredDocuments int
	Dimension       int
}

// Stage is a pipeline coordinator state.
type Stage int

const (
	StageEmpty Stage = iota
	StageExtracted
	StageSummarized
	StageIndexed
	StageReady
)

func (s Stage) String() string {
	switch s {
	case StageEmpty:
		return "empty"
	case StageExtracted:
		return "extracted"
	case StageSummarized:
		return "summarized"
	case StageIndexed:
		return "indexed"
	case StageReady:
		return "ready"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// PipelineState is the persisted coordinator state for a corpus.
type PipelineState struct {
	Stage     Stage
	Corpus    CorpusTag
	Source    string
	UpdatedAt time.Time
}
