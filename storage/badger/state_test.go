package badger

import (
	"context"
	"testing"

	"github.com/poiesic/docent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRepository(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	state, err := repos.State.LoadState(ctx)
	require.NoError(t, err)
	assert.Nil(t, state)

	saved := &core.PipelineState{Stage: core.StageSummarized, Corpus: "abc", Source: "report.pdf"}
	require.NoError(t, repos.State.SaveState(ctx, saved))
	assert.False(t, saved.UpdatedAt.IsZero())

	loaded, err := repos.State.LoadState(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, core.StageSummarized, loaded.Stage)
	assert.Equal(t, core.CorpusTag("abc"), loaded.Corpus)
	assert.Equal(t, "report.pdf", loaded.Source)

	saved.Stage = core.StageReady
	require.NoError(t, repos.State.SaveState(ctx, saved))
	loaded, err = repos.State.LoadState(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.StageReady, loaded.Stage)
}
