package retrieve

import "errors"

var (
	// ErrEmbedderRequired indicates a nil embedder was passed to NewRetriever.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrIndexRequired indicates a nil index was passed to NewRetriever.
	ErrIndexRequired = errors.New("index is required")

	// ErrInvalidTopK indicates a default result count below 1.
	ErrInvalidTopK = errors.New("top-k must be at least 1")
)
