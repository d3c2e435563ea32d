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


package core

import "errors"

// Failure taxonomy shared across the pipeline.
var (
	// ErrInvalidConfiguration indicates bad chunking or index parameters.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidMetric indicates an unknown distance metric name.
	ErrInvalidMetric = errors.New("invalid distance metric")

	// ErrDocumentUnreadable indicates a document parsing failure. Non-retryable.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrEmbeddingUnavailable indicates an upstream embedding failure.
	// Retryable when the underlying cause is transient.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrGenerationUnavailable indicates an upstream generation failure.
	// Retryable when the underlying cause is transient.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrDimensionMismatch indicates a vector whose length does not match
	// the index dimension. Never silently coerced.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyIndex indicates a query against an index with no entries.
	// A reportable condition, not a crash.
	ErrEmptyIndex = errors.New("index contains no entries")

	// ErrIncompatibleIndex indicates a persisted snapshot whose dimension or
	// metric does not match the index it is being loaded into.
	ErrIncompatibleIndex = errors.New("incompatible index snapshot")
)
