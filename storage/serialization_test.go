package storage

import (
	"math"
	"testing"
	"time"

	"github.com/poiesic/docent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestContentUnit_BinaryPayloadSurvives(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	// JPEG magic plus bytes that are not valid UTF-8
	payload := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0xc3, 0x28, 0xa0, 0xa1}

	unit := &core.ContentUnit{
		ID:          core.UnitIDFor(core.KindImage, payload),
		Corpus:      "0123456789abcdef",
		Kind:        core.KindImage,
		Payload:     payload,
		MediaType:   "image/jpeg",
		Location:    core.SourceLocation{Page: 3, Offset: 7, Element: "figure-3-1.jpg"},
		Ordinal:     7,
		ExtractedAt: now,
	}

	decoded, err := UnmarshalContentUnit(MarshalContentUnit(unit))
	require.NoError(t, err)
	assert.Equal(t, unit, decoded)
}

func TestContentUnit_ZeroTime(t *testing.T) {
	unit := &core.ContentUnit{ID: 1, Corpus: "c", Kind: core.KindText, Payload: []byte("x")}

	decoded, err := UnmarshalContentUnit(MarshalContentUnit(unit))
	require.NoError(t, err)
	assert.True(t, decoded.ExtractedAt.IsZero())
}

func TestIndexEntry_VectorSurvives(t *testing.T) {
	entry := &core.IndexEntry{
		UnitID:    core.IDFromContent("Revenue grew 20%"),
		Kind:      core.KindText,
		Vector:    []float32{0, -0.5, 0.25, 1, float32(math.SmallestNonzeroFloat32), -math.MaxFloat32},
		Surrogate: "Revenue grew 20%",
		Seq:       12,
		IndexedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalIndexEntry(MarshalIndexEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestIndexEntry_Truncated(t *testing.T) {
	entry := &core.IndexEntry{
		UnitID:    1,
		Kind:      core.KindTable,
		Vector:    []float32{0.1, 0.2, 0.3},
		Surrogate: "table",
	}
	data := MarshalIndexEntry(entry)

	_, err := UnmarshalIndexEntry(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestContentUnit_UnknownKindRejected(t *testing.T) {
	unit := &core.ContentUnit{ID: 1, Corpus: "c", Kind: core.Kind(42), Payload: []byte("x")}

	_, err := UnmarshalContentUnit(MarshalContentUnit(unit))
	assert.ErrorIs(t, err, ErrSerializationFailed)
	assert.ErrorIs(t, err, core.ErrInvalidKind)
}

func TestIndexEntry_UnknownKindRejected(t *testing.T) {
	entry := &core.IndexEntry{UnitID: 1, Kind: core.Kind(0), Vector: []float32{1}, Surrogate: "s"}

	_, err := UnmarshalIndexEntry(MarshalIndexEntry(entry))
	assert.ErrorIs(t, err, ErrSerializationFailed)
	assert.ErrorIs(t, err, core.ErrInvalidKind)
}

func TestTimesComeBackInUTC(t *testing.T) {
	local := time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.FixedZone("EST", -5*3600))
	state := &core.PipelineState{Stage: core.StageIndexed, Corpus: "c", UpdatedAt: local}

	decoded, err := UnmarshalPipelineState(MarshalPipelineState(state))
	require.NoError(t, err)
	assert.True(t, local.Equal(decoded.UpdatedAt))
	assert.Equal(t, time.UTC, decoded.UpdatedAt.Location())
}

func TestPipelineState_RoundTrip(t *testing.T) {
	state := &core.PipelineState{
		Stage:     core.StageReady,
		Corpus:    "feedfacecafebeef",
		Source:    "/data/report.pdf",
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalPipelineState(MarshalPipelineState(state))
	require.NoError(t, err)
	assert.Equal(t, state, decoded)
}
