package ingest

import "errors"

var (
	// ErrFragmenterRequired indicates a nil fragmenter was passed to NewPipeline.
	ErrFragmenterRequired = errors.New("fragmenter is required")

	// ErrEmbedderRequired indicates a nil embedder was passed to NewPipeline.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrIndexRequired indicates a nil index was passed to NewPipeline.
	ErrIndexRequired = errors.New("index is required")

	// ErrInvalidBatchSize indicates a batch size below 1.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
)
