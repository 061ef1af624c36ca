package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no inherited settings.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, name := range []string{
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "EMBEDDING_MODEL", "GPT_35_MODEL", "GPT_4O_MODEL",
		"INPUT_PATH", "PDF_FILENAME", "DOCENT_FIGURES_DIR", "DOCENT_STORE",
		"MAX_TOKENS", "MAX_CHARACTERS", "NEW_AFTER_N_CHARS", "COMBINE_TEXT_UNDER_N_CHARS",
	} {
		t.Setenv(name, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.SummaryModel)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.VisionModel)
	assert.Equal(t, 1024, cfg.OpenAI.MaxTokens)
	assert.Equal(t, 60, cfg.OpenAI.TimeoutSecs)
	assert.Equal(t, 4000, cfg.Document.MaxCharacters)
	assert.Equal(t, 3800, cfg.Document.NewAfterNChars)
	assert.Equal(t, 2000, cfg.Document.CombineTextUnderNChars)
	assert.Equal(t, "figures", cfg.Document.FiguresDir)
	assert.Equal(t, "*", cfg.Document.FigurePattern)
	assert.Equal(t, 4, cfg.Summarizer.Concurrency)
	assert.Equal(t, 4, cfg.Retrieval.K)
	assert.Equal(t, 12000, cfg.Retrieval.ContextBudget)
	assert.Equal(t, 1000, cfg.Retrieval.ImageCost)
	assert.Equal(t, "./docent_db", cfg.Storage.Path)
	assert.Equal(t, "startupai-financial-report-v2.pdf", cfg.DocumentPath())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
openai:
  base_url: http://localhost:11434
  summary_model: llama3
  max_tokens: 512
  temperature: 0.2
document:
  input_path: /data
  pdf_filename: annual.pdf
  figure_pattern: "**/*.png"
summarizer:
  concurrency: 8
  requests_per_second: 2.5
retrieval:
  k: 6
storage:
  path: /var/lib/docent
`), 0644))

	t.Setenv("GPT_35_MODEL", "gpt-4o-mini")
	t.Setenv("MAX_CHARACTERS", "3000")
	t.Setenv("DOCENT_STORE", "/tmp/store")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", cfg.OpenAI.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.SummaryModel, "environment wins over file")
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.AnswerModel)
	assert.Equal(t, 512, cfg.OpenAI.MaxTokens)
	assert.Equal(t, 3000, cfg.Document.MaxCharacters)
	assert.Equal(t, "/data/figures", cfg.Document.FiguresDir)
	assert.Equal(t, "**/*.png", cfg.Document.FigurePattern)
	assert.Equal(t, "/data/annual.pdf", cfg.DocumentPath())
	assert.Equal(t, 8, cfg.Summarizer.Concurrency)
	assert.Equal(t, 2.5, cfg.Summarizer.RequestsPerSecond)
	assert.Equal(t, 6, cfg.Retrieval.K)
	assert.Equal(t, "/tmp/store", cfg.Storage.Path)

	aiConfig := cfg.AIConfig()
	require.NoError(t, aiConfig.Validate())
	assert.Equal(t, "http://localhost:11434/v1", aiConfig.Host)
	assert.Equal(t, 0.2, aiConfig.Temperature)
	assert.Equal(t, 60*time.Second, aiConfig.RequestTimeout)
}

func TestLoad_DefaultLocationAndDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docent.yaml"), []byte("retrieval:\n  k: 2\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=sk-test\n"), 0644))
	os.Unsetenv("OPENAI_API_KEY")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Retrieval.K)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("openai: [unclosed"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("MAX_TOKENS", "lots")
	_, err = Load("")
	assert.ErrorContains(t, err, "MAX_TOKENS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"temperature", func(c *Config) { c.OpenAI.Temperature = 3 }},
		{"concurrency", func(c *Config) { c.Summarizer.Concurrency = -1 }},
		{"rate", func(c *Config) { c.Summarizer.RequestsPerSecond = -1 }},
		{"k", func(c *Config) { c.Retrieval.K = -1 }},
		{"budget", func(c *Config) { c.Retrieval.ContextBudget = -5 }},
		{"chunking", func(c *Config) { c.Document.MaxCharacters = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestConversions(t *testing.T) {
	cfg := Default()

	chunk := cfg.ChunkOptions()
	assert.Equal(t, 4000, chunk.MaxCharacters)
	assert.Equal(t, 2000, chunk.CombineTextUnderNChars)

	policy := cfg.SummaryRetryPolicy()
	assert.Equal(t, 4, policy.MaxAttempts)
	assert.Equal(t, time.Second, policy.BaseDelay)
	assert.NotNil(t, policy.Retryable)
}
