// Package config loads docent settings from a YAML file, a .env file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/extract"
	"gopkg.in/yaml.v3"
)

// OpenAIConfig configures the OpenAI-compatible model endpoint.
type OpenAIConfig struct {
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	EmbeddingModel string  `yaml:"embedding_model"`
	SummaryModel   string  `yaml:"summary_model"`
	VisionModel    string  `yaml:"vision_model"`
	AnswerModel    string  `yaml:"answer_model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSecs    int     `yaml:"timeout_secs"`
}

// DocumentConfig locates the default input document and its extraction output.
type DocumentConfig struct {
	InputPath     string `yaml:"input_path"`
	PDFFilename   string `yaml:"pdf_filename"`
	FiguresDir    string `yaml:"figures_dir"`
	FigurePattern string `yaml:"figure_pattern"` // doublestar glob relative to FiguresDir

	MaxCharacters          int `yaml:"max_characters"`
	NewAfterNChars         int `yaml:"new_after_n_chars"`
	CombineTextUnderNChars int `yaml:"combine_text_under_n_chars"`
}

// SummarizerConfig bounds the load placed on the summarization endpoint.
type SummarizerConfig struct {
	Concurrency       int     `yaml:"concurrency"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	MaxRetries        int     `yaml:"max_retries"`
	RetryBaseDelayMs  int     `yaml:"retry_base_delay_ms"`
}

// RetrievalConfig configures question answering.
type RetrievalConfig struct {
	K             int `yaml:"k"`
	ContextBudget int `yaml:"context_budget"`
	ImageCost     int `yaml:"image_cost"`
}

// StorageConfig locates the corpus store.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Config is the root configuration.
type Config struct {
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Document   DocumentConfig   `yaml:"document"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Storage    StorageConfig    `yaml:"storage"`
}

// DefaultLocations are searched in order when no config path is given.
func DefaultLocations() []string {
	return []string{
		"docent.yaml",
		"docent.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "docent", "config.yaml"),
	}
}

// Load reads the config at path, or the first of DefaultLocations that
// exists when path is empty. Variables from a .env file in the working
// directory are loaded into the environment without overriding it, then the
// environment is merged over the file and defaults fill what is left.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	if path == "" {
		for _, loc := range DefaultLocations() {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
	}

	if err := mergeWithEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file or environment is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	aiDefaults := ai.DefaultConfig()
	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = aiDefaults.Host
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = aiDefaults.EmbeddingModel
	}
	if cfg.OpenAI.SummaryModel == "" {
		cfg.OpenAI.SummaryModel = aiDefaults.SummaryModel
	}
	if cfg.OpenAI.VisionModel == "" {
		cfg.OpenAI.VisionModel = aiDefaults.VisionModel
	}
	if cfg.OpenAI.AnswerModel == "" {
		cfg.OpenAI.AnswerModel = aiDefaults.AnswerModel
	}
	if cfg.OpenAI.MaxTokens == 0 {
		cfg.OpenAI.MaxTokens = aiDefaults.MaxTokens
	}
	if cfg.OpenAI.TimeoutSecs == 0 {
		cfg.OpenAI.TimeoutSecs = int(aiDefaults.RequestTimeout / time.Second)
	}

	chunk := extract.DefaultChunkOptions()
	if cfg.Document.InputPath == "" {
		cfg.Document.InputPath = "."
	}
	if cfg.Document.PDFFilename == "" {
		cfg.Document.PDFFilename = "startupai-financial-report-v2.pdf"
	}
	if cfg.Document.FiguresDir == "" {
		cfg.Document.FiguresDir = filepath.Join(cfg.Document.InputPath, "figures")
	}
	if cfg.Document.FigurePattern == "" {
		cfg.Document.FigurePattern = extract.DefaultFigurePattern
	}
	if cfg.Document.MaxCharacters == 0 {
		cfg.Document.MaxCharacters = chunk.MaxCharacters
	}
	if cfg.Document.NewAfterNChars == 0 {
		cfg.Document.NewAfterNChars = chunk.NewAfterNChars
	}
	if cfg.Document.CombineTextUnderNChars == 0 {
		cfg.Document.CombineTextUnderNChars = chunk.CombineTextUnderNChars
	}

	if cfg.Summarizer.Concurrency == 0 {
		cfg.Summarizer.Concurrency = 4
	}
	if cfg.Summarizer.MaxRetries == 0 {
		cfg.Summarizer.MaxRetries = 3
	}
	if cfg.Summarizer.RetryBaseDelayMs == 0 {
		cfg.Summarizer.RetryBaseDelayMs = 1000
	}

	if cfg.Retrieval.K == 0 {
		cfg.Retrieval.K = 4
	}
	if cfg.Retrieval.ContextBudget == 0 {
		cfg.Retrieval.ContextBudget = 12000
	}
	if cfg.Retrieval.ImageCost == 0 {
		cfg.Retrieval.ImageCost = 1000
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "./docent_db"
	}
}

func mergeWithEnv(cfg *Config) error {
	stringVars := map[string]*string{
		"OPENAI_API_KEY":     &cfg.OpenAI.APIKey,
		"OPENAI_BASE_URL":    &cfg.OpenAI.BaseURL,
		"EMBEDDING_MODEL":    &cfg.OpenAI.EmbeddingModel,
		"GPT_4O_MODEL":       &cfg.OpenAI.VisionModel,
		"INPUT_PATH":         &cfg.Document.InputPath,
		"PDF_FILENAME":       &cfg.Document.PDFFilename,
		"DOCENT_FIGURES_DIR": &cfg.Document.FiguresDir,
		"DOCENT_STORE":       &cfg.Storage.Path,
	}
	for name, field := range stringVars {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}
	// The text model both summarizes and answers.
	if v := os.Getenv("GPT_35_MODEL"); v != "" {
		cfg.OpenAI.SummaryModel = v
		cfg.OpenAI.AnswerModel = v
	}

	intVars := map[string]*int{
		"MAX_TOKENS":                 &cfg.OpenAI.MaxTokens,
		"MAX_CHARACTERS":             &cfg.Document.MaxCharacters,
		"NEW_AFTER_N_CHARS":          &cfg.Document.NewAfterNChars,
		"COMBINE_TEXT_UNDER_N_CHARS": &cfg.Document.CombineTextUnderNChars,
	}
	for name, field := range intVars {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		*field = n
	}
	return nil
}

// Validate checks ranges that defaults cannot repair.
func (c *Config) Validate() error {
	switch {
	case c.OpenAI.MaxTokens < 0:
		return fmt.Errorf("openai.max_tokens must not be negative, got %d", c.OpenAI.MaxTokens)
	case c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2:
		return fmt.Errorf("openai.temperature must be between 0 and 2, got %g", c.OpenAI.Temperature)
	case c.OpenAI.TimeoutSecs < 0:
		return fmt.Errorf("openai.timeout_secs must not be negative, got %d", c.OpenAI.TimeoutSecs)
	case c.Document.MaxCharacters < 0 || c.Document.NewAfterNChars < 0 || c.Document.CombineTextUnderNChars < 0:
		return errors.New("document chunk thresholds must not be negative")
	case c.Summarizer.Concurrency < 0:
		return fmt.Errorf("summarizer.concurrency must not be negative, got %d", c.Summarizer.Concurrency)
	case c.Summarizer.RequestsPerSecond < 0:
		return fmt.Errorf("summarizer.requests_per_second must not be negative, got %g", c.Summarizer.RequestsPerSecond)
	case c.Summarizer.MaxRetries < 0 || c.Summarizer.RetryBaseDelayMs < 0:
		return errors.New("summarizer retry settings must not be negative")
	case c.Retrieval.K < 0:
		return fmt.Errorf("retrieval.k must not be negative, got %d", c.Retrieval.K)
	case c.Retrieval.ContextBudget < 0 || c.Retrieval.ImageCost < 0:
		return errors.New("retrieval budget settings must not be negative")
	}
	return nil
}

// AIConfig converts the model settings into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.OpenAI.BaseURL),
		ai.WithAPIKey(c.OpenAI.APIKey),
		ai.WithEmbeddingModel(c.OpenAI.EmbeddingModel),
		ai.WithSummaryModel(c.OpenAI.SummaryModel),
		ai.WithVisionModel(c.OpenAI.VisionModel),
		ai.WithAnswerModel(c.OpenAI.AnswerModel),
		ai.WithMaxTokens(c.OpenAI.MaxTokens),
		ai.WithTemperature(c.OpenAI.Temperature),
		ai.WithRequestTimeout(time.Duration(c.OpenAI.TimeoutSecs)*time.Second),
	)
}

// ChunkOptions returns the text chunking thresholds.
func (c *Config) ChunkOptions() extract.ChunkOptions {
	return extract.ChunkOptions{
		MaxCharacters:          c.Document.MaxCharacters,
		NewAfterNChars:         c.Document.NewAfterNChars,
		CombineTextUnderNChars: c.Document.CombineTextUnderNChars,
	}
}

// SummaryRetryPolicy retries rate-limited summarization calls.
// MaxRetries counts attempts after the first.
func (c *Config) SummaryRetryPolicy() ai.RetryPolicy {
	return ai.RateLimitRetry(c.Summarizer.MaxRetries+1, time.Duration(c.Summarizer.RetryBaseDelayMs)*time.Millisecond)
}

// DocumentPath is the default document processed when none is named.
func (c *Config) DocumentPath() string {
	return filepath.Join(c.Document.InputPath, c.Document.PDFFilename)
}
