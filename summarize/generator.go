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


package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/core"
	"golang.org/x/time/rate"
)

// DefaultConcurrency is the number of summarization calls in flight at once.
const DefaultConcurrency = 4

// Result is the outcome of summarizing one unit. Exactly one of Surrogate
// and Err is set; Err is always a *core.SummarizationError.
type Result struct {
	UnitID    core.ID
	Surrogate *core.Surrogate
	Err       error
}

// OK reports whether the unit was summarized.
func (r Result) OK() bool {
	return r.Err == nil && r.Surrogate != nil
}

// Generator produces surrogates for content units through a completion service.
type Generator struct {
	completer ai.Completer
	config    *ai.Config
	pool      *ants.Pool
	limiter   *rate.Limiter
	timeout   time.Duration
	retry     ai.RetryPolicy
	onResult  func(Result)
	resultMu  sync.Mutex
	logger    *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithConcurrency sets the maximum number of concurrent summarization calls.
// Default is DefaultConcurrency.
func WithConcurrency(size int) Option {
	return func(g *Generator) error {
		if size < 1 {
			size = 1
		}
		if g.pool != nil {
			g.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		g.pool = pool
		return nil
	}
}

// WithRequestsPerSecond throttles summarization calls. Zero or less disables throttling.
func WithRequestsPerSecond(rps float64) Option {
	return func(g *Generator) error {
		if rps <= 0 {
			g.limiter = rate.NewLimiter(rate.Inf, 0)
			return nil
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// WithTimeout sets the deadline applied to each summarization call.
// Default is the configured request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Generator) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		g.timeout = timeout
		return nil
	}
}

// WithRetryPolicy sets how failed calls are retried.
// Default retries rate-limited calls three times starting at one second.
func WithRetryPolicy(policy ai.RetryPolicy) Option {
	return func(g *Generator) error {
		if policy.MaxAttempts < 1 {
			return ai.ErrInvalidMaxAttempts
		}
		g.retry = policy
		return nil
	}
}

// WithOnResult registers a callback invoked once per unit as batch results
// arrive. Calls are serialized.
func WithOnResult(fn func(Result)) Option {
	return func(g *Generator) error {
		g.onResult = fn
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewGenerator creates a surrogate generator. A nil config uses ai.DefaultConfig.
func NewGenerator(completer ai.Completer, config *ai.Config, opts ...Option) (*Generator, error) {
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	if config == nil {
		config = ai.DefaultConfig()
	}

	pool, err := ants.NewPool(DefaultConcurrency)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		completer: completer,
		config:    config,
		pool:      pool,
		limiter:   rate.NewLimiter(rate.Inf, 0),
		timeout:   config.RequestTimeout,
		retry:     ai.RateLimitRetry(3, time.Second),
		logger:    slog.Default(),
	}
	if g.timeout <= 0 {
		g.timeout = ai.DefaultConfig().RequestTimeout
	}

	for _, opt := range opts {
		if optErr := opt(g); optErr != nil {
			g.Release()
			return nil, optErr
		}
	}
	g.logger = g.logger.With("component", "summarizer")

	return g, nil
}

// Generate summarizes a single unit. Failures are returned as *core.SummarizationError.
func (g *Generator) Generate(ctx context.Context, unit *core.ContentUnit) (*core.Surrogate, error) {
	if unit == nil {
		return nil, &core.SummarizationError{Cause: &core.InvalidArgumentError{Name: "unit", Reason: "nil"}}
	}
	fail := func(err error) (*core.Surrogate, error) {
		return nil, &core.SummarizationError{UnitID: unit.ID, Cause: err}
	}

	if err := core.ValidateContentUnit(unit); err != nil {
		return fail(err)
	}
	prompt, err := promptFor(unit, g.config)
	if err != nil {
		return fail(err)
	}

	var text string
	err = g.retry.Do(ctx, func() error {
		var callErr error
		text, callErr = g.complete(ctx, prompt)
		return callErr
	})
	if err != nil {
		return fail(err)
	}

	surrogate := &core.Surrogate{
		UnitID:    unit.ID,
		Text:      text,
		Model:     prompt.Model,
		CreatedAt: time.Now().UTC(),
	}
	if err := core.ValidateSurrogate(surrogate, unit); err != nil {
		return fail(err)
	}
	return surrogate, nil
}

// complete runs one throttled call under the per-call timeout.
func (g *Generator) complete(ctx context.Context, prompt ai.Prompt) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.completer.Complete(callCtx, prompt)
	if err != nil {
		return "", ai.Classify(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ai.ErrEmptyResponse
	}
	return text, nil
}

// GenerateBatch summarizes units concurrently and returns one Result per
// input unit, in input order. Repeated IDs are summarized once and share the
// result. A cancelled context stops new calls; units not yet summarized fail
// with the context error.
func (g *Generator) GenerateBatch(ctx context.Context, units []*core.ContentUnit) []Result {
	results := make([]Result, len(units))
	first := make(map[core.ID]int, len(units))
	var wg sync.WaitGroup

	for i, unit := range units {
		if unit == nil {
			results[i] = g.deliver(Result{Err: &core.SummarizationError{Cause: &core.InvalidArgumentError{Name: "unit", Reason: "nil"}}})
			continue
		}
		if _, seen := first[unit.ID]; seen {
			continue
		}
		first[unit.ID] = i

		if err := ctx.Err(); err != nil {
			results[i] = g.deliver(Result{UnitID: unit.ID, Err: &core.SummarizationError{UnitID: unit.ID, Cause: err}})
			continue
		}

		wg.Add(1)
		submitErr := g.pool.Submit(func() {
			defer wg.Done()
			surrogate, err := g.Generate(ctx, unit)
			if err != nil {
				g.logger.Warn("summarization failed", "unit", unit.ID, "kind", unit.Kind, "err", err)
			}
			results[i] = g.deliver(Result{UnitID: unit.ID, Surrogate: surrogate, Err: err})
		})
		if submitErr != nil {
			wg.Done()
			if errors.Is(submitErr, ants.ErrPoolClosed) {
				submitErr = ErrGeneratorReleased
			}
			results[i] = g.deliver(Result{UnitID: unit.ID, Err: &core.SummarizationError{UnitID: unit.ID, Cause: submitErr}})
		}
	}
	wg.Wait()

	for i, unit := range units {
		if unit == nil {
			continue
		}
		if j := first[unit.ID]; j != i {
			results[i] = results[j]
		}
	}
	return results
}

func (g *Generator) deliver(result Result) Result {
	if g.onResult != nil {
		g.resultMu.Lock()
		g.onResult(result)
		g.resultMu.Unlock()
	}
	return result
}

// Release releases the worker pool.
// The generator should not be used after calling Release.
func (g *Generator) Release() {
	if g.pool != nil {
		g.pool.Release()
	}
}
