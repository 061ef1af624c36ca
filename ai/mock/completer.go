package mock

import (
	"context"
	"sync"

	"github.com/poiesic/docent/ai"
)

// MockCompleter is a test double for ai.Completer.
// By default it echoes the prompt text back, which makes surrogates equal to
// the prompt they were generated from.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	CompleteFunc func(ctx context.Context, prompt ai.Prompt) (string, error)

	mu      sync.Mutex
	prompts []ai.Prompt
}

var _ ai.Completer = (*MockCompleter)(nil)

// NewMockCompleter creates a mock completer with default echo behavior.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// WithCompleteFunc sets CompleteFunc and returns the completer.
func (m *MockCompleter) WithCompleteFunc(fn func(ctx context.Context, prompt ai.Prompt) (string, error)) *MockCompleter {
	m.CompleteFunc = fn
	return m
}

// Complete records the prompt and returns the injected or echoed result.
func (m *MockCompleter) Complete(ctx context.Context, prompt ai.Prompt) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return prompt.Text, nil
}

// CallCount returns the number of Complete calls.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of every prompt received, in call order.
func (m *MockCompleter) Prompts() []ai.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.Prompt(nil), m.prompts...)
}

// LastPrompt returns the most recent prompt and whether there was one.
func (m *MockCompleter) LastPrompt() (ai.Prompt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ai.Prompt{}, false
	}
	return m.prompts[len(m.prompts)-1], true
}

// Reset clears recorded prompts and injected behavior.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = nil
	m.CompleteFunc = nil
}
