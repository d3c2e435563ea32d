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


package retrieve

import (
	"context"
	"log/slog"

	"github.com/poiesic/quarry/ai"
	"github.com/poiesic/quarry/core"
	"github.com/poiesic/quarry/index"
)

// DefaultTopK is the number of fragments returned when the caller does not
// ask for a specific count.
const DefaultTopK = 5

// Retriever answers natural-language queries against the vector index by
// embedding the query and returning the nearest fragments.
type Retriever struct {
	embedder ai.Embedder
	index    *index.Index
	topK     int
	logger   *slog.Logger
}

// Filter narrows retrieved fragments by exact metadata match. A fragment
// passes when every key's value equals the fragment's metadata value.
// Filtering happens after ranking, so a tight filter can return fewer than
// k fragments.
type Filter map[string]string

func (f Filter) matches(fragment *core.Fragment) bool {
	for key, want := range f {
		if fragment.Metadata[key] != want {
			return false
		}
	}
	return true
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithTopK sets the default number of fragments returned by Retrieve.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(r *Retriever) error {
		if k < 1 {
			return ErrInvalidTopK
		}
		r.topK = k
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a retriever over the given embedder and index.
func NewRetriever(embedder ai.Embedder, idx *index.Index, opts ...Option) (*Retriever, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	r := &Retriever{
		embedder: embedder,
		index:    idx,
		topK:     DefaultTopK,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve returns the topK fragments nearest to the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]core.ScoredFragment, error) {
	return r.RetrieveK(ctx, query, r.topK, nil)
}

// TopK returns the configured default result count.
func (r *Retriever) TopK() int { return r.topK }

// RetrieveK returns up to k fragments nearest to the query, ascending by
// distance, optionally narrowed by a metadata filter. Embedding and index
// errors surface unchanged; an empty index yields core.ErrEmptyIndex.
func (r *Retriever) RetrieveK(ctx context.Context, query string, k int, filter Filter) ([]core.ScoredFragment, error) {
	return r.retrieve(ctx, query, k, filter, nil)
}

// RetrieveWithMonitor is RetrieveK with stage callbacks for instrumentation.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, k int, filter Filter, monitor Monitor) ([]core.ScoredFragment, error) {
	return r.retrieve(ctx, query, k, filter, monitor)
}

func (r *Retriever) retrieve(ctx context.Context, query string, k int, filter Filter, monitor Monitor) ([]core.ScoredFragment, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query, k)

	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error embedding query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(embedding)

	scored, err := r.index.Query(embedding, k)
	if err != nil {
		r.logger.Error("error querying index", "err", err)
		return nil, err
	}
	monitor.AfterIndexQuery(scored)

	if len(filter) > 0 {
		filtered := make([]core.ScoredFragment, 0, len(scored))
		for _, hit := range scored {
			if filter.matches(hit.Fragment) {
				filtered = append(filtered, hit)
			}
		}
		scored = filtered
		monitor.AfterFiltering(scored)
	}

	r.logger.Debug("retrieved fragments", "query", query, "k", k, "hits", len(scored))
	monitor.Finish(scored)
	return scored, nil
}
