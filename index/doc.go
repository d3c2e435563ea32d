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


// Package index provides an append-only in-memory vector index with
// brute-force k-nearest-neighbor queries under L2, cosine, or dot-product
// distance.
//
// The brute-force scan is a deliberate correctness-first choice: O(N·D) per
// query and O(1) amortized per insert, which is acceptable for
// document-sized corpora. An approximate-nearest-neighbor structure can
// replace it behind the same Insert/Query contract if corpus scale grows
// beyond brute-force economics.
package index
