package openai

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/docent/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// imageDetail asks vision models for their high-resolution pass.
const imageDetail = "high"

// Completer implements ai.Completer on any langchaingo model. Images are sent
// as base64 data URLs, which OpenAI vision models accept inline.
type Completer struct {
	client       llms.Model
	defaultModel string
	maxTokens    int
	timeout      time.Duration
	logger       *slog.Logger
}

// newCompleter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newCompleter(config *ai.Config) (*Completer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := newClient(config)
	if err != nil {
		return nil, err
	}

	return NewCompleterWithModel(client, config), nil
}

// NewCompleter creates a new completer using the provided configuration.
//
// Returns ai.Completer interface to enforce abstraction.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// NewCompleterWithModel wraps an existing langchaingo model. The config supplies
// the default model name, completion length and timeout.
func NewCompleterWithModel(client llms.Model, config *ai.Config) *Completer {
	return &Completer{
		client:       client,
		defaultModel: config.SummaryModel,
		maxTokens:    config.MaxTokens,
		timeout:      config.RequestTimeout,
		logger:       slog.Default().With("component", "openai-completer"),
	}
}

// Complete runs one generation call within the configured timeout.
func (c *Completer) Complete(ctx context.Context, prompt ai.Prompt) (string, error) {
	model := prompt.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := prompt.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("generating completion",
		"model", model,
		"length", len(prompt.Text),
		"images", len(prompt.Images))

	response, err := c.client.GenerateContent(ctx, buildMessages(prompt),
		llms.WithModel(model),
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(prompt.Temperature),
	)
	if err != nil {
		err = ai.Classify(openai.MapError(err))
		c.logger.Warn("completion failed", "model", model, "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		return "", ai.ErrEmptyResponse
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}

func buildMessages(prompt ai.Prompt) []llms.MessageContent {
	var messages []llms.MessageContent
	if prompt.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, prompt.System))
	}

	parts := make([]llms.ContentPart, 0, len(prompt.Images)+1)
	if prompt.Text != "" {
		parts = append(parts, llms.TextPart(prompt.Text))
	}
	for _, image := range prompt.Images {
		parts = append(parts, llms.ImageURLWithDetailPart(dataURL(image), imageDetail))
	}
	return append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: parts,
	})
}

// dataURL encodes an image as data:<mime>;base64,<payload>.
func dataURL(image ai.Image) string {
	mediaType := image.MediaType
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(image.Data)
}
