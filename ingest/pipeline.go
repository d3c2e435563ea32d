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


package ingest

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/quarry/ai"
	"github.com/poiesic/quarry/core"
	"github.com/poiesic/quarry/fragment"
	"github.com/poiesic/quarry/index"
)

// DefaultBatchSize is the number of fragments embedded per upstream call.
const DefaultBatchSize = 16

// Pipeline turns raw segments into indexed fragments: split, embed in
// batches, insert. Batches are embedded concurrently on a worker pool but
// committed to the index strictly in submission order, stopping at the
// first batch whose embedding or insert fails. Fragments after the failure
// point are never committed.
type Pipeline struct {
	fragmenter *fragment.Fragmenter
	embedder   ai.Embedder
	index      *index.Index
	pool       *ants.Pool
	batchSize  int
	logger     *slog.Logger
}

// Report summarizes one ingestion call.
type Report struct {
	// Requested is the total number of fragments produced by splitting.
	Requested int

	// Completed is the number of fragments committed to the index. On
	// success Completed equals Requested; on failure it counts the whole
	// batches committed before the failing one.
	Completed int
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize sets the number of fragments per embedding call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent batch embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given fragmenter,
// embedder, and index.
func NewPipeline(fragmenter *fragment.Fragmenter, embedder ai.Embedder, idx *index.Index, opts ...Option) (*Pipeline, error) {
	if fragmenter == nil {
		return nil, ErrFragmenterRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		fragmenter: fragmenter,
		embedder:   embedder,
		index:      idx,
		pool:       pool,
		batchSize:  DefaultBatchSize,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// batchResult holds the embedding outcome of one batch of fragments.
type batchResult struct {
	fragments []core.Fragment
	err       error
}

// Ingest splits the segments, embeds the fragments in batches, and inserts
// them into the index. The returned Report is meaningful on error too:
// Completed counts the fragments of every batch committed before the first
// failure.
func (p *Pipeline) Ingest(ctx context.Context, segments []core.RawSegment) (Report, error) {
	fragments := p.fragmenter.Split(segments)
	report := Report{Requested: len(fragments)}
	if len(fragments) == 0 {
		return report, nil
	}

	batches := p.makeBatches(fragments)
	results := make([]batchResult, len(batches))

	// Embed concurrently; each worker writes only its own slot.
	var wg sync.WaitGroup
	for i := range batches {
		i := i
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			results[i] = p.embedBatch(ctx, batches[i])
		})
		if submitErr != nil {
			wg.Done()
			results[i] = batchResult{err: submitErr}
		}
	}
	wg.Wait()

	// Commit in submission order, stopping at the first failed batch so
	// the index never holds fragments past a failure point.
	for i, result := range results {
		if result.err != nil {
			p.logger.Error("batch embedding failed", "batch", i, "err", result.err)
			return report, result.err
		}
		if _, err := p.index.Insert(result.fragments...); err != nil {
			p.logger.Error("batch insert failed", "batch", i, "err", err)
			return report, err
		}
		report.Completed += len(result.fragments)
	}

	p.logger.Debug("ingested segments", "segments", len(segments), "fragments", report.Completed, "batches", len(batches))
	return report, nil
}

func (p *Pipeline) makeBatches(fragments []core.Fragment) [][]core.Fragment {
	var batches [][]core.Fragment
	for start := 0; start < len(fragments); start += p.batchSize {
		end := start + p.batchSize
		if end > len(fragments) {
			end = len(fragments)
		}
		batches = append(batches, fragments[start:end])
	}
	return batches
}

func (p *Pipeline) embedBatch(ctx context.Context, batch []core.Fragment) batchResult {
	texts := make([]string, len(batch))
	for i, frag := range batch {
		texts[i] = frag.Text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return batchResult{err: err}
	}

	embedded := make([]core.Fragment, len(batch))
	for i := range batch {
		embedded[i] = batch[i]
		embedded[i].Vector = vectors[i]
	}
	return batchResult{fragments: embedded}
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
