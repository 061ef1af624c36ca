package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/docent/core"
)

// Key prefixes for different data types
const (
	unitPrefix       = "unit"
	unitOrderPrefix  = "unitord:"
	unitCorpusKey    = "unitmeta:corpus"
	vectorPrefix     = "vec:"
	docPrefix        = "doc:"
	vectorDimKey     = "vecmeta:dim"
	vectorSeqKey     = "vecmeta:seq"
	pipelineStateKey = "pipeline:state"
)

// makeUnitKey generates a key for a content unit by ID.
func makeUnitKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", unitPrefix, id))
}

// makeUnitOrderKey generates a composite key for the extraction order index.
// Format: prefix:ordinal:id
func makeUnitOrderKey(ordinal uint64, id core.ID) []byte {
	buf := make([]byte, len(unitOrderPrefix)+16)
	offset := copy(buf, unitOrderPrefix)
	// BigEndian so lexicographic order matches numeric order
	binary.BigEndian.PutUint64(buf[offset:], ordinal)
	binary.BigEndian.PutUint64(buf[offset+8:], uint64(id))
	return buf
}

// makeVectorKey generates the key of an index entry.
// Format: prefix:id
func makeVectorKey(id core.ID) []byte {
	return makeIDKey(vectorPrefix, id)
}

// makeDocKey generates the key of the raw mapping for an indexed unit.
// Format: prefix:id
func makeDocKey(id core.ID) []byte {
	return makeIDKey(docPrefix, id)
}

func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// idFromKey extracts the ID suffix of a prefix:id key.
func idFromKey(key []byte) core.ID {
	if len(key) < 8 {
		return 0
	}
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeUint64(buf []byte) uint64 {
	if len(buf) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(buf)
}
