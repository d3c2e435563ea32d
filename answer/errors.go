package answer

import "errors"

var (
	// ErrRetrieverRequired indicates a nil retriever was passed to NewAnswerer.
	ErrRetrieverRequired = errors.New("retriever is required")

	// ErrGeneratorRequired indicates a nil generator was passed to NewAnswerer.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrInvalidContextBudget indicates a context budget below 1.
	ErrInvalidContextBudget = errors.New("context budget must be at least 1")
)
