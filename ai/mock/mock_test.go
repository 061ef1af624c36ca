package mock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/docent/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func TestMockEmbedder_BagOfWordsRanksSharedWords(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	query, err := embedder.EmbedText(ctx, "What happened to revenue?")
	require.NoError(t, err)
	revenue, err := embedder.EmbedText(ctx, "Revenue grew 20%")
	require.NoError(t, err)

	assert.Len(t, query, DefaultDimension)
	assert.Greater(t, dot(query, revenue), float32(0.2))

	again, err := embedder.EmbedText(ctx, "Revenue grew 20%")
	require.NoError(t, err)
	assert.Equal(t, revenue, again)
	assert.InDelta(t, 1.0, dot(revenue, revenue), 1e-5)
}

func TestMockEmbedder_EmbedTextsUsesEmbedTextFunc(t *testing.T) {
	boom := errors.New("boom")
	embedder := NewMockEmbedder().WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
		if text == "bad" {
			return nil, boom
		}
		return []float32{1}, nil
	})

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {1}}, vectors)

	_, err = embedder.EmbedTexts(context.Background(), []string{"a", "bad"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, embedder.CallCount())

	embedder.Reset()
	assert.Zero(t, embedder.CallCount())
}

func TestMockCompleter(t *testing.T) {
	completer := NewMockCompleter()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = completer.Complete(ctx, ai.Prompt{Text: "echo"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, completer.CallCount())

	text, err := completer.Complete(ctx, ai.Prompt{Text: "last"})
	require.NoError(t, err)
	assert.Equal(t, "last", text)

	last, ok := completer.LastPrompt()
	require.True(t, ok)
	assert.Equal(t, "last", last.Text)

	completer.WithCompleteFunc(func(ctx context.Context, p ai.Prompt) (string, error) {
		return "", ai.ErrRateLimited
	})
	_, err = completer.Complete(ctx, ai.Prompt{})
	assert.ErrorIs(t, err, ai.ErrRateLimited)

	completer.Reset()
	assert.Zero(t, completer.CallCount())
	_, ok = completer.LastPrompt()
	assert.False(t, ok)
}

func TestMockProvider(t *testing.T) {
	provider := NewMockProvider()

	mp, ok := provider.(*MockProvider)
	require.True(t, ok)
	assert.Same(t, mp.GetMockEmbedder(), provider.Embedder())
	assert.Same(t, mp.GetMockCompleter(), provider.Completer())

	assert.False(t, mp.Closed())
	require.NoError(t, provider.Close())
	assert.True(t, mp.Closed())
}

func TestMockProviderWithServices(t *testing.T) {
	embedder := NewMockEmbedder()
	embedder.Dimension = 8

	provider := NewMockProviderWithServices(embedder, nil)
	assert.Same(t, embedder, provider.Embedder())
	assert.NotNil(t, provider.Completer())
}
