package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/ai/mock"
	"github.com/poiesic/docent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func TestReembedder_Run(t *testing.T) {
	repo, cleanup := setupTestIndex(t)
	defer cleanup()
	seedIndex(t, repo, 10)

	ctx := context.Background()
	var buf bytes.Buffer
	embedder := &mockEmbedder{}

	summary, err := NewReembedder(repo, embedder, testConfig(), WithProgress(&buf)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Entries)
	assert.Equal(t, 3, summary.Dimension)
	assert.Equal(t, 4, embedder.calls)

	for _, entry := range listAll(t, repo) {
		require.Len(t, entry.Vector, 3)
		var magnitude float32
		for _, v := range entry.Vector {
			magnitude += v * v
		}
		assert.InDelta(t, 1.0, magnitude, 0.01, "vector should be normalized")
	}

	output := buf.String()
	assert.Contains(t, output, "Starting reembedding of 10 entries")
	assert.Contains(t, output, "10/10")
	assert.Contains(t, output, "Reembedding complete")
}

func TestReembedder_SearchUsesNewVectors(t *testing.T) {
	repo, cleanup := setupTestIndex(t)
	defer cleanup()
	ids := seedIndex(t, repo, 3)

	ctx := context.Background()
	embedder := mock.NewMockEmbedder()
	_, err := NewReembedder(repo, embedder, testConfig()).Run(ctx)
	require.NoError(t, err)

	query, err := embedder.EmbedText(ctx, "surrogate 2")
	require.NoError(t, err)
	matches, err := repo.FindSimilar(ctx, ai.NormalizeVector(query), -1, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, ids[2], matches[0].UnitID)
	assert.InDelta(t, 1.0, matches[0].Score, 0.001)
}

func TestReembedder_EmptyIndex(t *testing.T) {
	repo, cleanup := setupTestIndex(t)
	defer cleanup()

	var buf bytes.Buffer
	embedder := &mockEmbedder{}
	summary, err := NewReembedder(repo, embedder, nil, WithProgress(&buf)).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Entries)
	assert.Zero(t, embedder.calls)
	assert.Contains(t, buf.String(), "0 entries")
}

func TestReembedder_BatchFailureStopsRun(t *testing.T) {
	repo, cleanup := setupTestIndex(t)
	defer cleanup()
	seedIndex(t, repo, 10)

	embedder := &mockEmbedder{}
	embedder.embedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if embedder.calls > 1 {
			return nil, errors.New("embedding service down")
		}
		return [][]float32{{0, 1}, {0, 1}, {0, 1}}, nil
	}
	cfg := testConfig()
	cfg.MaxRetries = 1

	summary, err := NewReembedder(repo, embedder, cfg).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "embedding service down")

	updated := 0
	for _, entry := range listAll(t, repo) {
		if entry.Vector[0] == 0 {
			updated++
		}
	}
	assert.Equal(t, 3, updated, "the first batch stays written")
}

func TestReembedder_ContextCancellation(t *testing.T) {
	repo, cleanup := setupTestIndex(t)
	defer cleanup()
	seedIndex(t, repo, 10)

	ctx, cancel := context.WithCancel(context.Background())
	embedder := &mockEmbedder{}
	embedder.embedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		cancel()
		result := make([][]float32, len(texts))
		for i := range texts {
			result[i] = []float32{0, 1}
		}
		return result, nil
	}

	_, err := NewReembedder(repo, embedder, testConfig()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, embedder.calls)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero report interval", func(c *Config) { c.ReportInterval = 0 }},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	var argErr *core.InvalidArgumentError
	cfg := DefaultConfig()
	cfg.BatchSize = -1
	assert.ErrorAs(t, cfg.Validate(), &argErr)

	cfg = DefaultConfig()
	cfg.MaxRetries = 0
	assert.ErrorIs(t, cfg.Validate(), ai.ErrInvalidMaxAttempts)
}

func TestReembedder_InvalidConfig(t *testing.T) {
	repo, cleanup := setupTestIndex(t)
	defer cleanup()

	cfg := testConfig()
	cfg.BatchSize = 0
	_, err := NewReembedder(repo, &mockEmbedder{}, cfg).Run(context.Background())
	assert.Error(t, err)
}
