// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package docent

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/ai/openai"
	"github.com/poiesic/docent/answer"
	"github.com/poiesic/docent/config"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/extract"
	"github.com/poiesic/docent/index"
	"github.com/poiesic/docent/pipeline"
	"github.com/poiesic/docent/reembed"
	"github.com/poiesic/docent/storage/badger"
	"github.com/poiesic/docent/summarize"
)

// Corpus wires the store, the model provider and the pipeline stages for one
// corpus directory.
type Corpus struct {
	config      *config.Config
	repos       *badger.Repositories
	provider    ai.AIProvider
	generator   *summarize.Generator
	index       *index.Index
	answerer    *answer.Answerer
	coordinator *pipeline.Coordinator
	logger      *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	config    *config.Config
	provider  ai.AIProvider
	inMemory  bool
	onSummary func(summarize.Result)
	logger    *slog.Logger
}

// WithConfig sets the configuration. Default is config.Default().
func WithConfig(cfg *config.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.config = cfg
	}
}

// WithProvider replaces the OpenAI provider built from the configuration.
// The corpus takes ownership and closes it.
func WithProvider(provider ai.AIProvider) CorpusOption {
	return func(o *corpusOptions) {
		o.provider = provider
	}
}

// InMemory keeps the store in memory instead of at the configured path.
func InMemory() CorpusOption {
	return func(o *corpusOptions) {
		o.inMemory = true
	}
}

// WithSummaryProgress is called once per unit as summarization finishes.
func WithSummaryProgress(fn func(summarize.Result)) CorpusOption {
	return func(o *corpusOptions) {
		o.onSummary = fn
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) CorpusOption {
	return func(o *corpusOptions) {
		o.logger = logger
	}
}

// Open opens the store and builds every pipeline component from the
// configuration. Everything opened so far is released if a later step fails.
func Open(ctx context.Context, opts ...CorpusOption) (*Corpus, error) {
	options := &corpusOptions{
		config: config.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.config == nil {
		options.config = config.Default()
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	cfg := options.config
	if err := cfg.Validate(); err != nil {
		closeProvider(options.provider)
		return nil, err
	}

	backend, err := badger.OpenBackend(cfg.Storage.Path, options.inMemory)
	if err != nil {
		closeProvider(options.provider)
		return nil, err
	}
	repos := badger.NewRepositories(backend)

	aiConfig := cfg.AIConfig()
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
	}

	c := &Corpus{
		config:   cfg,
		repos:    repos,
		provider: provider,
		logger:   options.logger.With("component", "corpus"),
	}
	if err := c.build(ctx, aiConfig, options); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func closeProvider(provider ai.AIProvider) {
	if provider != nil {
		provider.Close()
	}
}

func (c *Corpus) build(ctx context.Context, aiConfig *ai.Config, options *corpusOptions) error {
	cfg := c.config
	logger := options.logger

	extractor, err := extract.NewElementsExtractor(
		extract.WithFiguresDir(cfg.Document.FiguresDir),
		extract.WithFigurePattern(cfg.Document.FigurePattern),
		extract.WithChunkOptions(cfg.ChunkOptions()),
		extract.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	genOpts := []summarize.Option{
		summarize.WithConcurrency(cfg.Summarizer.Concurrency),
		summarize.WithRequestsPerSecond(cfg.Summarizer.RequestsPerSecond),
		summarize.WithRetryPolicy(cfg.SummaryRetryPolicy()),
		summarize.WithLogger(logger),
	}
	if options.onSummary != nil {
		genOpts = append(genOpts, summarize.WithOnResult(options.onSummary))
	}
	c.generator, err = summarize.NewGenerator(c.provider.Completer(), aiConfig, genOpts...)
	if err != nil {
		return err
	}

	c.index, err = index.New(c.repos.Index, c.provider.Embedder(), index.WithLogger(logger))
	if err != nil {
		return err
	}

	c.answerer, err = answer.New(c.index, c.provider.Completer(), aiConfig,
		answer.WithK(cfg.Retrieval.K),
		answer.WithContextBudget(cfg.Retrieval.ContextBudget),
		answer.WithImageCost(cfg.Retrieval.ImageCost),
		answer.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	c.coordinator, err = pipeline.NewCoordinator(ctx, pipeline.Components{
		Units:      c.repos.Units,
		State:      c.repos.State,
		Purger:     c.repos.Backend,
		Extractor:  extractor,
		Summarizer: c.generator,
		Index:      c.index,
		Answerer:   c.answerer,
	}, pipeline.WithLogger(logger))
	return err
}

// Close releases the summarizer pool, the provider and the store.
func (c *Corpus) Close() error {
	if c.generator != nil {
		c.generator.Release()
	}

	var errs []error
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := c.repos.Close(); err != nil {
		c.logger.Error("error closing store", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Config returns the configuration the corpus was opened with.
func (c *Corpus) Config() *config.Config {
	return c.config
}

// Coordinator returns the pipeline coordinator.
func (c *Corpus) Coordinator() *pipeline.Coordinator {
	return c.coordinator
}

// Index returns the multi-vector index.
func (c *Corpus) Index() *index.Index {
	return c.index
}

// Repositories returns the underlying store.
func (c *Corpus) Repositories() *badger.Repositories {
	return c.repos
}

// Process runs the document at path through the pipeline.
func (c *Corpus) Process(ctx context.Context, path string) (*pipeline.Report, error) {
	return c.coordinator.Process(ctx, path)
}

// Answer answers a question from the processed document.
func (c *Corpus) Answer(ctx context.Context, question string) (*core.AnswerResult, error) {
	return c.coordinator.Answer(ctx, question)
}

// NewReembedder creates a reembedder that refreshes every index vector with
// the corpus embedder.
func (c *Corpus) NewReembedder(cfg *reembed.Config, opts ...reembed.Option) *reembed.Reembedder {
	return reembed.NewReembedder(c.repos.Index, c.provider.Embedder(), cfg, opts...)
}
