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


package quarry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/quarry/ai"
	"github.com/poiesic/quarry/ai/openai"
	"github.com/poiesic/quarry/answer"
	"github.com/poiesic/quarry/core"
	"github.com/poiesic/quarry/fragment"
	"github.com/poiesic/quarry/index"
	"github.com/poiesic/quarry/ingest"
	"github.com/poiesic/quarry/loader"
	"github.com/poiesic/quarry/retrieve"
	"github.com/poiesic/quarry/storage"
	"github.com/poiesic/quarry/storage/badger"
)

// ErrNoSnapshotStore indicates Save was called on a store opened without a
// persistence path.
var ErrNoSnapshotStore = errors.New("no snapshot store configured")

// Store is the top-level facade: it wires the loader, fragmenter, index,
// ingestion pipeline, retriever, and answerer behind one handle, with
// optional snapshot persistence.
type Store struct {
	provider  ai.Provider
	loader    *loader.Loader
	index     *index.Index
	pipeline  *ingest.Pipeline
	retriever *retrieve.Retriever
	answerer  *answer.Answerer
	snapshots storage.SnapshotStore
	topK      int
	logger    *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	aiConfig        *ai.Config
	dimension       int
	metric          core.Metric
	chunkSize       int
	chunkOverlap    int
	batchSize       int
	topK            int
	maxContextChars int
	storePath       string
}

// WithAIConfig sets the AI service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) StoreOption {
	return func(o *storeOptions) {
		o.aiConfig = config
	}
}

// WithDimension sets the index vector dimension. It must match the output
// dimension of the configured embedding model. Default is 768.
func WithDimension(dimension int) StoreOption {
	return func(o *storeOptions) {
		o.dimension = dimension
	}
}

// WithMetric sets the index distance metric.
// Default is core.MetricCosine.
func WithMetric(metric core.Metric) StoreOption {
	return func(o *storeOptions) {
		o.metric = metric
	}
}

// WithChunking sets the fragmenter window size and overlap in runes.
// Default is 512 and 64.
func WithChunking(chunkSize, chunkOverlap int) StoreOption {
	return func(o *storeOptions) {
		o.chunkSize = chunkSize
		o.chunkOverlap = chunkOverlap
	}
}

// WithBatchSize sets the ingestion embedding batch size.
// Default is ingest.DefaultBatchSize.
func WithBatchSize(size int) StoreOption {
	return func(o *storeOptions) {
		o.batchSize = size
	}
}

// WithTopK sets the default retrieval result count.
// Default is retrieve.DefaultTopK.
func WithTopK(k int) StoreOption {
	return func(o *storeOptions) {
		o.topK = k
	}
}

// WithMaxContextChars sets the answering context budget in runes.
// Default is answer.DefaultMaxContextChars.
func WithMaxContextChars(chars int) StoreOption {
	return func(o *storeOptions) {
		o.maxContextChars = chars
	}
}

// WithStorePath enables badger snapshot persistence at the given directory.
// Open loads an existing snapshot from it when one is present.
func WithStorePath(path string) StoreOption {
	return func(o *storeOptions) {
		o.storePath = path
	}
}

func defaultStoreOptions() *storeOptions {
	return &storeOptions{
		aiConfig:        ai.DefaultConfig(),
		dimension:       768,
		metric:          core.MetricCosine,
		chunkSize:       512,
		chunkOverlap:    64,
		batchSize:       ingest.DefaultBatchSize,
		topK:            retrieve.DefaultTopK,
		maxContextChars: answer.DefaultMaxContextChars,
	}
}

// Open creates a Store backed by OpenAI-compatible AI services.
func Open(opts ...StoreOption) (*Store, error) {
	options := defaultStoreOptions()
	for _, opt := range opts {
		opt(options)
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		return nil, err
	}

	store, err := newStore(provider, options)
	if err != nil {
		provider.Close()
		return nil, err
	}
	return store, nil
}

// OpenWithProvider creates a Store over an existing AI provider. The store
// takes ownership of the provider and closes it on Close.
func OpenWithProvider(provider ai.Provider, opts ...StoreOption) (*Store, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}

	options := defaultStoreOptions()
	for _, opt := range opts {
		opt(options)
	}

	return newStore(provider, options)
}

func newStore(provider ai.Provider, options *storeOptions) (*Store, error) {
	fragmenter, err := fragment.NewFragmenter(options.chunkSize, options.chunkOverlap)
	if err != nil {
		return nil, err
	}

	docLoader, err := loader.New()
	if err != nil {
		return nil, err
	}

	var snapshots storage.SnapshotStore
	if options.storePath != "" {
		backend, err := badger.OpenBackend(options.storePath, false)
		if err != nil {
			return nil, err
		}
		snapshots, err = badger.NewSnapshotStore(backend)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	idx, err := openIndex(snapshots, options)
	if err != nil {
		closeSnapshots(snapshots)
		return nil, err
	}

	pipeline, err := ingest.NewPipeline(fragmenter, provider.Embedder(), idx,
		ingest.WithBatchSize(options.batchSize))
	if err != nil {
		closeSnapshots(snapshots)
		return nil, err
	}

	retriever, err := retrieve.NewRetriever(provider.Embedder(), idx,
		retrieve.WithTopK(options.topK))
	if err != nil {
		pipeline.Release()
		closeSnapshots(snapshots)
		return nil, err
	}

	answerer, err := answer.NewAnswerer(retriever, provider.Generator(),
		answer.WithMaxContextChars(options.maxContextChars))
	if err != nil {
		pipeline.Release()
		closeSnapshots(snapshots)
		return nil, err
	}

	return &Store{
		provider:  provider,
		loader:    docLoader,
		index:     idx,
		pipeline:  pipeline,
		retriever: retriever,
		answerer:  answerer,
		snapshots: snapshots,
		topK:      options.topK,
		logger:    slog.Default(),
	}, nil
}

// openIndex restores the persisted snapshot when one exists, otherwise
// creates a fresh index. A snapshot saved under a different dimension or
// metric fails with core.ErrIncompatibleIndex rather than being silently
// discarded.
func openIndex(snapshots storage.SnapshotStore, options *storeOptions) (*index.Index, error) {
	if snapshots != nil {
		snapshot, err := snapshots.LoadSnapshot(context.Background())
		switch {
		case err == nil:
			if err := snapshot.CompatibleWith(options.dimension, options.metric); err != nil {
				return nil, err
			}
			return index.FromSnapshot(snapshot)
		case errors.Is(err, storage.ErrNotFound):
			// Fresh store, fall through.
		default:
			return nil, err
		}
	}
	return index.New(options.dimension, options.metric)
}

func closeSnapshots(snapshots storage.SnapshotStore) {
	if snapshots != nil {
		snapshots.Close()
	}
}

// IngestFile loads the document at path and ingests its segments.
func (s *Store) IngestFile(ctx context.Context, path string) (ingest.Report, error) {
	segments, err := s.loader.Load(path)
	if err != nil {
		return ingest.Report{}, err
	}
	return s.pipeline.Ingest(ctx, segments)
}

// IngestSegments ingests raw segments directly, bypassing the loader.
func (s *Store) IngestSegments(ctx context.Context, segments []core.RawSegment) (ingest.Report, error) {
	return s.pipeline.Ingest(ctx, segments)
}

// Query returns up to k fragments nearest to the query. A non-positive k
// uses the configured default.
func (s *Store) Query(ctx context.Context, query string, k int, filter retrieve.Filter) ([]core.ScoredFragment, error) {
	if k <= 0 {
		k = s.topK
	}
	return s.retriever.RetrieveK(ctx, query, k, filter)
}

// Answer generates a grounded answer to the question.
func (s *Store) Answer(ctx context.Context, question string) (*answer.Result, error) {
	return s.answerer.Answer(ctx, question)
}

// Save persists the current index snapshot. Fails with ErrNoSnapshotStore
// when the store was opened without a persistence path.
func (s *Store) Save(ctx context.Context) error {
	if s.snapshots == nil {
		return ErrNoSnapshotStore
	}
	return s.snapshots.SaveSnapshot(ctx, s.index.Snapshot())
}

// Size returns the number of fragments in the index.
func (s *Store) Size() int {
	return s.index.Size()
}

// Index exposes the underlying vector index.
func (s *Store) Index() *index.Index {
	return s.index
}

// Close releases the worker pool, the AI provider, and the snapshot store.
// The store should not be used after calling Close.
func (s *Store) Close() error {
	s.pipeline.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if s.snapshots != nil {
		if err := s.snapshots.Close(); err != nil {
			s.logger.Error("error closing snapshot store", "err", err)
			return err
		}
	}
	return nil
}
