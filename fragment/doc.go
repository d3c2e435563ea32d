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


// Package fragment splits raw document segments into bounded-size
// overlapping fragments suitable for embedding and retrieval.
//
// Each segment is walked independently with a sliding rune window;
// fragments carry the segment's source metadata plus their offset for
// traceability. Whitespace is normalized before windowing so boundaries
// are deterministic regardless of source formatting.
package fragment
