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


package openai

import (
	"log/slog"

	"github.com/poiesic/docent/ai"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider implements ai.AIProvider on one OpenAI-compatible endpoint.
// The embedder and completer share a single client.
type Provider struct {
	client    *openai.LLM
	embedder  *Embedder
	completer *Completer
	logger    *slog.Logger
}

// NewProvider validates config and connects the embedder and completer to
// config.Host.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := newClient(config)
	if err != nil {
		return nil, err
	}
	embedder, err := newEmbedderWithClient(client, config)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		client:    client,
		embedder:  embedder,
		completer: NewCompleterWithModel(client, config),
		logger:    slog.Default().With("component", "openai-provider"),
	}
	p.logger.Debug("provider ready",
		"host", config.Host,
		"embedding_model", config.EmbeddingModel,
		"summary_model", config.SummaryModel,
		"vision_model", config.VisionModel,
		"answer_model", config.AnswerModel)
	return p, nil
}

// newClient creates the langchaingo client. SummaryModel is only the default;
// every prompt names its own model.
func newClient(config *ai.Config) (*openai.LLM, error) {
	return openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(token(config)),
		openai.WithModel(config.SummaryModel),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Completer returns the text and vision generation service.
func (p *Provider) Completer() ai.Completer {
	return p.completer
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
