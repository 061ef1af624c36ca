package index

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docent/ai/mock"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
	"github.com/poiesic/docent/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIndex(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) (*Index, *badger.Repositories) {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	ix, err := New(repos.Index, embedder, opts...)
	require.NoError(t, err)
	return ix, repos
}

func textUnit(ordinal uint64, text string) *core.ContentUnit {
	return &core.ContentUnit{
		ID:      core.UnitIDFor(core.KindText, []byte(text)),
		Corpus:  "corpus",
		Kind:    core.KindText,
		Payload: []byte(text),
		Ordinal: ordinal,
	}
}

// identity makes the surrogate equal to the unit's own text.
func identity(unit *core.ContentUnit) *core.Surrogate {
	return &core.Surrogate{UnitID: unit.ID, Text: unit.Text()}
}

func indexAll(t *testing.T, ix *Index, units ...*core.ContentUnit) {
	t.Helper()
	for _, unit := range units {
		require.NoError(t, ix.Index(context.Background(), unit, identity(unit)))
	}
}

func TestSearch_RevenueScenario(t *testing.T) {
	ix, _ := setupIndex(t, mock.NewMockEmbedder())
	revenue := textUnit(0, "Revenue grew 20%")
	costs := textUnit(1, "Costs fell 5%")
	headcount := textUnit(2, "Headcount is 50")
	indexAll(t, ix, revenue, costs, headcount)

	result, err := ix.Search(context.Background(), "What happened to revenue?", 1)
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())
	assert.Equal(t, revenue.ID, result.UnitIDs[0])
	assert.Equal(t, revenue.Payload, result.Units[0].Payload)
	assert.Greater(t, result.Scores[0], float32(0))
}

func TestSearch_OwnSurrogateRanksFirst(t *testing.T) {
	ix, _ := setupIndex(t, mock.NewMockEmbedder())
	units := []*core.ContentUnit{
		textUnit(0, "Revenue grew 20% year over year"),
		textUnit(1, "Operating costs fell 5% after the restructuring"),
		textUnit(2, "Headcount is 50 engineers across three offices"),
		textUnit(3, "The board approved a dividend of two dollars"),
	}
	indexAll(t, ix, units...)

	for _, unit := range units {
		result, err := ix.Search(context.Background(), unit.Text(), 2)
		require.NoError(t, err)
		require.NotZero(t, result.Len())
		assert.Equal(t, unit.ID, result.UnitIDs[0], "query %q", unit.Text())
		assert.InDelta(t, 1.0, result.Scores[0], 1e-5)
	}
}

func TestSearch_ScoresDescendAndTiesKeepInsertionOrder(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	})
	ix, _ := setupIndex(t, embedder)
	units := []*core.ContentUnit{textUnit(0, "first"), textUnit(1, "second"), textUnit(2, "third")}
	indexAll(t, ix, units...)

	result, err := ix.Search(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{units[0].ID, units[1].ID, units[2].ID}, result.UnitIDs)
}

func TestSearch_InvalidArguments(t *testing.T) {
	ix, _ := setupIndex(t, mock.NewMockEmbedder())

	tests := []struct {
		name  string
		query string
		k     int
	}{
		{"zero k", "revenue", 0},
		{"negative k", "revenue", -3},
		{"blank query", "  ", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ix.Search(context.Background(), tt.query, tt.k)
			assert.ErrorIs(t, err, core.ErrQuery)
			assert.ErrorIs(t, err, core.ErrInvalidArgument)
		})
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	ix, _ := setupIndex(t, mock.NewMockEmbedder())

	result, err := ix.Search(context.Background(), "revenue", 4)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Len())
}

func TestSearch_EmbeddingFailure(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	ix, _ := setupIndex(t, embedder)
	indexAll(t, ix, textUnit(0, "Revenue grew 20%"))

	embedder.WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("upstream down")
	})
	_, err := ix.Search(context.Background(), "revenue", 1)
	assert.ErrorIs(t, err, core.ErrQuery)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

// brokenResolver fails resolution for one unit.
type brokenResolver struct {
	storage.IndexRepository
	broken core.ID
}

func (b *brokenResolver) Resolve(ctx context.Context, id core.ID) (*core.ContentUnit, error) {
	if id == b.broken {
		return nil, storage.ErrNotFound
	}
	return b.IndexRepository.Resolve(ctx, id)
}

type recordingMonitor struct {
	noopMonitor
	dropped []core.ID
	matches int
	final   *core.QueryResult
}

func (m *recordingMonitor) AfterSimilaritySearch(matches []*core.SimilarityMatch) {
	m.matches = len(matches)
}
func (m *recordingMonitor) Dropped(id core.ID, _ error)     { m.dropped = append(m.dropped, id) }
func (m *recordingMonitor) Finish(result *core.QueryResult) { m.final = result }

func TestSearch_DropsUnresolvableHits(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	revenue := textUnit(0, "Revenue grew 20%")
	revenueAgain := textUnit(1, "Revenue grew again")
	ix, err := New(&brokenResolver{IndexRepository: repos.Index, broken: revenue.ID}, mock.NewMockEmbedder())
	require.NoError(t, err)
	indexAll(t, ix, revenue, revenueAgain)

	monitor := &recordingMonitor{}
	result, err := ix.SearchWithMonitor(context.Background(), "revenue", 2, monitor)
	require.NoError(t, err)
	assert.Equal(t, []core.ID{revenueAgain.ID}, result.UnitIDs)
	assert.Equal(t, 2, monitor.matches)
	assert.Equal(t, []core.ID{revenue.ID}, monitor.dropped)
	assert.Same(t, result, monitor.final)
}

func TestSearch_MixedDimensionsIsQueryError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	ix, repos := setupIndex(t, embedder)
	revenue := textUnit(0, "Revenue grew 20%")
	costs := textUnit(1, "Costs fell 5%")
	indexAll(t, ix, revenue, costs)

	// A re-embed into a new model stopped after the first entry
	embedder.Dimension = 3
	ctx := context.Background()
	require.NoError(t, repos.Index.UpdateVectors(ctx, &core.IndexEntry{UnitID: revenue.ID, Vector: []float32{1, 0, 0}}))

	result, err := ix.Search(ctx, "revenue", 2)
	assert.ErrorIs(t, err, core.ErrQuery)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
	assert.Nil(t, result)
}

func TestIndex_Idempotent(t *testing.T) {
	ix, _ := setupIndex(t, mock.NewMockEmbedder())
	unit := textUnit(0, "Revenue grew 20%")
	indexAll(t, ix, unit, unit)

	stats, err := ix.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultCollection, stats.Collection)
	assert.Equal(t, 1, stats.VectorEntries)
	assert.Equal(t, 1, stats.StoredDocuments)
	assert.Equal(t, mock.DefaultDimension, stats.Dimension)
}

func TestIndex_RejectsMismatchedSurrogate(t *testing.T) {
	ix, _ := setupIndex(t, mock.NewMockEmbedder())
	unit := textUnit(0, "Revenue grew 20%")
	other := textUnit(1, "Costs fell 5%")

	err := ix.Index(context.Background(), unit, identity(other))
	assert.ErrorIs(t, err, core.ErrUnitMismatch)

	found, err := ix.Contains(context.Background(), unit.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIndex_EmbeddingFailureWritesNothing(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("timeout")
	})
	ix, repos := setupIndex(t, embedder)
	unit := textUnit(0, "Revenue grew 20%")

	err := ix.Index(context.Background(), unit, identity(unit))
	assert.ErrorIs(t, err, ErrEmbeddingFailed)

	_, err = repos.Index.Resolve(context.Background(), unit.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIndex_StoresNormalizedVectors(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		return []float32{3, 4}, nil
	})
	ix, repos := setupIndex(t, embedder)
	unit := textUnit(0, "Revenue grew 20%")
	indexAll(t, ix, unit)

	entry, err := repos.Index.GetEntry(context.Background(), unit.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, entry.Vector[0], 1e-6)
	assert.InDelta(t, 0.8, entry.Vector[1], 1e-6)
	assert.Equal(t, "Revenue grew 20%", entry.Surrogate)
	assert.Equal(t, core.KindText, entry.Kind)
}

func TestIndexBatch(t *testing.T) {
	ix, repos := setupIndex(t, mock.NewMockEmbedder())
	a := textUnit(0, "Revenue grew 20%")
	b := textUnit(1, "Costs fell 5%")
	c := textUnit(2, "Headcount is 50")

	results := ix.IndexBatch(context.Background(), []Pair{
		{Unit: a, Surrogate: identity(a)},
		{Unit: b, Surrogate: identity(c)},
		{Unit: c, Surrogate: identity(c)},
	})
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	assert.Equal(t, a.ID, results[0].UnitID)
	assert.ErrorIs(t, results[1].Err, core.ErrUnitMismatch)
	assert.Equal(t, b.ID, results[1].UnitID)
	require.NoError(t, results[2].Err)
	assert.Less(t, results[0].Entry.Seq, results[2].Entry.Seq)

	for _, id := range []core.ID{a.ID, c.ID} {
		found, err := ix.Contains(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, found)
	}

	// Every indexed id must resolve to raw content.
	entries, err := repos.Index.ListEntries(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, entry := range entries {
		_, err := repos.Index.Resolve(context.Background(), entry.UnitID)
		assert.NoError(t, err)
	}
}

func TestIndexBatch_FallsBackToSingleEmbeddings(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("batch too large")
	})
	embedder.WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		if text == "Costs fell 5%" {
			return nil, errors.New("rejected")
		}
		return mock.BagOfWords(text, 16), nil
	})
	ix, _ := setupIndex(t, embedder)
	a := textUnit(0, "Revenue grew 20%")
	b := textUnit(1, "Costs fell 5%")

	results := ix.IndexBatch(context.Background(), []Pair{
		{Unit: a, Surrogate: identity(a)},
		{Unit: b, Surrogate: identity(b)},
	})
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrEmbeddingFailed)

	stats, err := ix.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.VectorEntries)
	assert.Equal(t, 16, stats.Dimension)
}

func TestNew(t *testing.T) {
	_, err := New(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrIndexRepositoryRequired)

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = New(repos.Index, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = New(repos.Index, mock.NewMockEmbedder(), WithCollection(" "))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	ix, err := New(repos.Index, mock.NewMockEmbedder(), WithCollection("docs"), WithMinScore(0.5))
	require.NoError(t, err)
	stats, err := ix.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "docs", stats.Collection)
}
