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


// Package ai defines the model capabilities docent depends on.
//
// Three interfaces cover everything the pipeline asks of a model service:
//
//   - Embedder turns surrogate text and questions into vectors.
//   - Completer generates text from a Prompt. A prompt may carry images,
//     in which case it goes to the vision model.
//   - AIProvider bundles one of each and owns their shared resources.
//
// Production implementations live in ai/openai; ai/mock has deterministic
// doubles for tests. Public constructors in ai/openai return the interface
// types, while the mock constructors return concrete types so tests can
// inject behavior and count calls.
//
// # Failures
//
// Classify maps a capability error onto one of ErrRateLimited,
// ErrInvalidRequest, ErrUpstreamUnavailable, ErrTimeout or ErrAuthentication.
// RetryPolicy.Do backs off exponentially between attempts. RateLimitRetry
// builds a policy that gives up immediately on anything but ErrRateLimited.
//
//	policy := ai.RateLimitRetry(4, 500*time.Millisecond)
//	err := policy.Do(ctx, func() error {
//	    text, err = completer.Complete(ctx, ai.Prompt{Text: "Summarize: ..."})
//	    return err
//	})
package ai
