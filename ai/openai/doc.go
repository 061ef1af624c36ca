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


// Package openai implements ai.AIProvider against an OpenAI-compatible HTTP
// API through langchaingo.
//
// The host in ai.Config may point at OpenAI itself or at a local server such
// as Ollama or vLLM. One client is shared by the embedder and the completer;
// prompts with images are sent to the vision model as base64 data URLs.
//
//	provider, err := openai.NewProvider(ai.NewConfig(ai.WithAPIKey(key)))
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
//
// Every error returned has been through ai.Classify.
package openai
