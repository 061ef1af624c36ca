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


package mock

import (
	"sync/atomic"

	"github.com/poiesic/docent/ai"
)

// MockProvider is a test double for ai.AIProvider over a MockEmbedder and a
// MockCompleter. It records whether it has been closed.
type MockProvider struct {
	embedder  *MockEmbedder
	completer *MockCompleter
	closed    atomic.Bool
}

// NewMockProvider creates a provider with a bag-of-words embedder and an
// echoing completer.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockCompleter() to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return NewMockProviderWithServices(NewMockEmbedder(), NewMockCompleter())
}

// NewMockProviderWithServices creates a provider over the given doubles.
// Nil services are replaced with defaults.
func NewMockProviderWithServices(embedder *MockEmbedder, completer *MockCompleter) ai.AIProvider {
	if embedder == nil {
		embedder = NewMockEmbedder()
	}
	if completer == nil {
		completer = NewMockCompleter()
	}
	return &MockProvider{
		embedder:  embedder,
		completer: completer,
	}
}

func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *MockProvider) Completer() ai.Completer {
	return p.completer
}

// Close marks the provider closed. The services keep working.
func (p *MockProvider) Close() error {
	p.closed.Store(true)
	return nil
}

// Closed reports whether Close has been called.
func (p *MockProvider) Closed() bool {
	return p.closed.Load()
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockCompleter returns the underlying mock completer for test assertions.
func (p *MockProvider) GetMockCompleter() *MockCompleter {
	return p.completer
}
