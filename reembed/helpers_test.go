package reembed

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage/badger"
	"github.com/stretchr/testify/require"
)

// mockEmbedder for testing
type mockEmbedder struct {
	embedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)
	calls          int
}

func (m *mockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *mockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.embedTextsFunc != nil {
		return m.embedTextsFunc(ctx, texts)
	}
	// Default: unnormalized vectors of magnitude 3
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{1.0, 2.0, 2.0}
	}
	return result, nil
}

func setupTestIndex(t *testing.T) (*badger.IndexRepository, func()) {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	return repos.Index, func() { repos.Close() }
}

// seedIndex indexes n text units with the vector (1, 0) and returns their IDs.
func seedIndex(t *testing.T, repo *badger.IndexRepository, n int) []core.ID {
	t.Helper()
	ctx := context.Background()
	ids := make([]core.ID, n)
	for i := range n {
		text := fmt.Sprintf("surrogate %d", i)
		unit := core.NewContentUnit("corpus", core.KindText, []byte(text), core.SourceLocation{Offset: i})
		unit.Ordinal = uint64(i)
		_, err := repo.Upsert(ctx, unit, &core.IndexEntry{
			UnitID:    unit.ID,
			Vector:    []float32{1, 0},
			Surrogate: text,
		})
		require.NoError(t, err)
		ids[i] = unit.ID
	}
	return ids
}
