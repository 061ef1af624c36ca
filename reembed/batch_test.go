package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listAll(t *testing.T, repo storage.IndexRepository) []*core.IndexEntry {
	t.Helper()
	entries, err := repo.ListEntries(context.Background(), 0, 1000)
	require.NoError(t, err)
	return entries
}

func TestBatchProcessor_Process(t *testing.T) {
	repo, cleanup := setupTestIndex(t)
	defer cleanup()
	seedIndex(t, repo, 2)

	ctx := context.Background()
	entries := listAll(t, repo)

	var texts []string
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, in []string) ([][]float32, error) {
			texts = in
			return [][]float32{{3, 4, 0}, {0, 0, 2}}, nil
		},
	}
	processor := NewBatchProcessor(repo, embedder, 3, 10*time.Millisecond)
	require.NoError(t, processor.Process(ctx, entries))

	assert.ElementsMatch(t, []string{"surrogate 0", "surrogate 1"}, texts)

	first, err := repo.GetEntry(ctx, entries[0].UnitID)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.6, 0.8, 0}, first.Vector, 0.001)
	assert.Equal(t, entries[0].Surrogate, first.Surrogate, "surrogate is untouched")

	second, err := repo.GetEntry(ctx, entries[1].UnitID)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0, 0, 1}, second.Vector, 0.001)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Dimension)
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	embedder := &mockEmbedder{}
	processor := NewBatchProcessor(nil, embedder, 3, 10*time.Millisecond)

	require.NoError(t, processor.Process(context.Background(), nil))
	assert.Zero(t, embedder.calls)
}

func TestBatchProcessor_EmbeddingError(t *testing.T) {
	repo, cleanup := setupTestIndex(t)
	defer cleanup()
	seedIndex(t, repo, 1)

	expectedErr := errors.New("embedding error")
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, expectedErr
		},
	}
	processor := NewBatchProcessor(repo, embedder, 3, time.Millisecond)

	err := processor.Process(context.Background(), listAll(t, repo))
	require.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 3, embedder.calls)

	entries := listAll(t, repo)
	assert.Equal(t, []float32{1, 0}, entries[0].Vector, "vector unchanged after failure")
}

func TestBatchProcessor_Retry(t *testing.T) {
	repo, cleanup := setupTestIndex(t)
	defer cleanup()
	seedIndex(t, repo, 1)

	embedder := &mockEmbedder{}
	embedder.embedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if embedder.calls < 2 {
			return nil, errors.New("temporary error")
		}
		return [][]float32{{0, 1}}, nil
	}
	processor := NewBatchProcessor(repo, embedder, 3, time.Millisecond)

	require.NoError(t, processor.Process(context.Background(), listAll(t, repo)))
	assert.Equal(t, 2, embedder.calls)
	assert.Equal(t, []float32{0, 1}, listAll(t, repo)[0].Vector)
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	repo, cleanup := setupTestIndex(t)
	defer cleanup()
	seedIndex(t, repo, 2)

	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 0}}, nil
		},
	}
	processor := NewBatchProcessor(repo, embedder, 1, time.Millisecond)

	err := processor.Process(context.Background(), listAll(t, repo))
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
}

func TestBatchProcessor_EmptySurrogate(t *testing.T) {
	embedder := &mockEmbedder{}
	processor := NewBatchProcessor(nil, embedder, 1, time.Millisecond)

	err := processor.Process(context.Background(), []*core.IndexEntry{{UnitID: 7}})
	assert.ErrorIs(t, err, ErrEmptySurrogate)
	assert.Zero(t, embedder.calls)
}

func TestBatchProcessor_ContextCancellation(t *testing.T) {
	repo, cleanup := setupTestIndex(t)
	defer cleanup()
	seedIndex(t, repo, 1)

	ctx, cancel := context.WithCancel(context.Background())
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			cancel()
			return nil, errors.New("error")
		},
	}
	processor := NewBatchProcessor(repo, embedder, 3, 10*time.Millisecond)

	err := processor.Process(ctx, listAll(t, repo))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
