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

import "fmt"

// ValidateChunking validates fragmenter window parameters.
//
// Validation rules:
//   - chunkSize must be positive
//   - chunkOverlap must not be negative
//   - chunkOverlap must be strictly smaller than chunkSize
func ValidateChunking(chunkSize, chunkOverlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfiguration, chunkSize)
	}
	if chunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrInvalidConfiguration, chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			ErrInvalidConfiguration, chunkOverlap, chunkSize)
	}
	return nil
}

// ValidateMetric validates that a Metric has a known value.
func ValidateMetric(metric Metric) error {
	switch metric {
	case MetricL2, MetricCosine, MetricDot:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidMetric, metric)
	}
}

// ValidateFragment validates a Fragment according to domain rules.
//
// NOT validated (populated later in the pipeline):
//   - Vector (empty until the fragment is embedded)
//   - ID (0 is valid, the index assigns one on insert)
func ValidateFragment(fragment *Fragment) error {
	if fragment == nil {
		return fmt.Errorf("%w: fragment is nil", ErrInvalidConfiguration)
	}
	if fragment.Text == "" {
		return fmt.Errorf("%w: fragment text cannot be empty", ErrInvalidConfiguration)
	}
	if fragment.Offset < 0 {
		return fmt.Errorf("%w: fragment offset cannot be negative", ErrInvalidConfiguration)
	}
	return nil
}
