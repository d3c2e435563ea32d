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


// Package ai provides abstractions for the AI services used in Quarry.
//
// This package defines interfaces for text embedding and answer generation.
// The retrieval pipeline depends on these abstractions only, so alternate
// providers can be substituted without touching the pipeline.
//
// The package is designed around three key interfaces:
//
//   - Embedder: generates fixed-dimension vector embeddings from text
//   - Generator: produces a response from a structured prompt
//   - Provider: aggregates both for convenient initialization
//
// Two implementation sub-packages are included:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles
//
// Public constructors in ai/openai return interface types to enforce
// abstraction; constructors in ai/mock return concrete types to enable test
// assertions and behavior injection.
package ai
