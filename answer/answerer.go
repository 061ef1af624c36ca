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


package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/core"
)

const (
	// DefaultK is the number of units retrieved per question.
	DefaultK = 4
	// DefaultContextBudget is the maximum context size in characters.
	DefaultContextBudget = 12000
	// DefaultImageCost is the budget charged for each attached image.
	DefaultImageCost = 1000
)

// Searcher retrieves ranked raw units for a query. *index.Index implements it.
type Searcher interface {
	Search(ctx context.Context, query string, k int) (*core.QueryResult, error)
}

// BatchAnswer is the outcome of one question in AnswerAll.
type BatchAnswer struct {
	Index    int
	Question string
	Result   *core.AnswerResult
	Err      error
}

// Answerer answers questions from retrieved document content.
type Answerer struct {
	searcher  Searcher
	completer ai.Completer
	config    *ai.Config
	k         int
	budget    int
	imageCost int
	timeout   time.Duration
	retry     ai.RetryPolicy
	logger    *slog.Logger
}

// Option configures an Answerer.
type Option func(*Answerer) error

// WithK sets how many units are retrieved per question.
func WithK(k int) Option {
	return func(a *Answerer) error {
		if k < 1 {
			return &core.InvalidArgumentError{Name: "k", Reason: fmt.Sprintf("must be at least 1, got %d", k)}
		}
		a.k = k
		return nil
	}
}

// WithContextBudget sets the maximum context size in characters.
func WithContextBudget(chars int) Option {
	return func(a *Answerer) error {
		if chars < 1 {
			return &core.InvalidArgumentError{Name: "context budget", Reason: fmt.Sprintf("must be positive, got %d", chars)}
		}
		a.budget = chars
		return nil
	}
}

// WithImageCost sets the budget charged for each image placed in context.
func WithImageCost(chars int) Option {
	return func(a *Answerer) error {
		if chars < 0 {
			return &core.InvalidArgumentError{Name: "image cost", Reason: fmt.Sprintf("must not be negative, got %d", chars)}
		}
		a.imageCost = chars
		return nil
	}
}

// WithTimeout sets the deadline of the generation call.
// Default is the configured request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Answerer) error {
		if timeout <= 0 {
			return &core.InvalidArgumentError{Name: "timeout", Reason: "must be positive"}
		}
		a.timeout = timeout
		return nil
	}
}

// WithRetryPolicy sets how a failed generation call is retried.
// Default is ai.NoRetry.
func WithRetryPolicy(policy ai.RetryPolicy) Option {
	return func(a *Answerer) error {
		if policy.MaxAttempts < 1 {
			return ai.ErrInvalidMaxAttempts
		}
		a.retry = policy
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Answerer) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// New creates an answerer. A nil config uses ai.DefaultConfig.
func New(searcher Searcher, completer ai.Completer, config *ai.Config, opts ...Option) (*Answerer, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	if config == nil {
		config = ai.DefaultConfig()
	}

	a := &Answerer{
		searcher:  searcher,
		completer: completer,
		config:    config,
		k:         DefaultK,
		budget:    DefaultContextBudget,
		imageCost: DefaultImageCost,
		timeout:   config.RequestTimeout,
		retry:     ai.NoRetry,
		logger:    slog.Default(),
	}
	if a.timeout <= 0 {
		a.timeout = ai.DefaultConfig().RequestTimeout
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	a.logger = a.logger.With("component", "answerer")

	return a, nil
}

// Answer retrieves context for question and generates an answer from it.
// When retrieval finds nothing the result has NoRelevantContent set and no
// generation call is made. Retrieval failures are *core.QueryError;
// generation failures are *core.GenerationError.
func (a *Answerer) Answer(ctx context.Context, question string) (*core.AnswerResult, error) {
	return a.AnswerWithMonitor(ctx, question, nil)
}

// AnswerWithMonitor is Answer with callbacks at each stage.
func (a *Answerer) AnswerWithMonitor(ctx context.Context, question string, monitor Monitor) (*core.AnswerResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &core.QueryError{Cause: &core.InvalidArgumentError{Name: "question", Reason: "must not be empty"}}
	}
	monitor.Start(question)

	result, err := a.searcher.Search(ctx, question, a.k)
	if err != nil {
		if !errors.Is(err, core.ErrQuery) {
			err = &core.QueryError{Cause: err}
		}
		return nil, err
	}
	monitor.AfterRetrieval(result)

	if result.Len() == 0 {
		return a.noRelevantContent(question, monitor), nil
	}

	assembledContext := assemble(result, a.budget, a.imageCost)
	monitor.AfterAssembly(assembledContext.cited, assembledContext.dropped)
	if len(assembledContext.skipped) > 0 {
		a.logger.Warn("skipped retrieved units of unknown kind", "units", assembledContext.skipped)
		if len(assembledContext.cited) == 0 && len(assembledContext.dropped) == 0 {
			return a.noRelevantContent(question, monitor), nil
		}
	}
	if len(assembledContext.cited) == 0 {
		return nil, &core.QueryError{Cause: fmt.Errorf("%w: budget %d", ErrBudgetTooSmall, a.budget)}
	}
	if len(assembledContext.dropped) > 0 {
		a.logger.Debug("dropped units over context budget", "dropped", len(assembledContext.dropped), "budget", a.budget)
	}

	prompt := ai.Prompt{
		System:      systemPrompt,
		Text:        fmt.Sprintf(humanPromptTemplate, assembledContext.text, question),
		Images:      assembledContext.images,
		Model:       a.config.AnswerModel,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
	}
	if prompt.HasImages() {
		prompt.Model = a.config.VisionModel
	}

	var text string
	err = a.retry.Do(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()

		var callErr error
		text, callErr = a.completer.Complete(callCtx, prompt)
		if callErr != nil {
			return ai.Classify(callErr)
		}
		if strings.TrimSpace(text) == "" {
			return ai.ErrEmptyResponse
		}
		return nil
	})
	if err != nil {
		a.logger.Error("answer generation failed", "model", prompt.Model, "err", err)
		return nil, &core.GenerationError{Cause: err}
	}

	answer := &core.AnswerResult{
		Question:       question,
		Text:           strings.TrimSpace(text),
		CitedUnitIDs:   assembledContext.cited,
		DroppedUnitIDs: assembledContext.dropped,
		Model:          prompt.Model,
	}
	monitor.Finish(answer)
	return answer, nil
}

func (a *Answerer) noRelevantContent(question string, monitor Monitor) *core.AnswerResult {
	answer := &core.AnswerResult{
		Question:          question,
		Text:              core.NoRelevantContentText,
		NoRelevantContent: true,
	}
	monitor.Finish(answer)
	return answer
}

// AnswerAll answers questions in order. A failed question is reported in its
// BatchAnswer and does not stop the rest.
func (a *Answerer) AnswerAll(ctx context.Context, questions []string) []BatchAnswer {
	answers := make([]BatchAnswer, len(questions))
	for i, question := range questions {
		answers[i] = BatchAnswer{Index: i, Question: question}
		if err := ctx.Err(); err != nil {
			answers[i].Err = err
			continue
		}
		answers[i].Result, answers[i].Err = a.Answer(ctx, question)
	}
	return answers
}
