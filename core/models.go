package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or index sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Metric selects the distance function used by a vector index.
type Metric int

const (
	// MetricL2 ranks by squared Euclidean distance.
	MetricL2 Metric = iota + 1
	// MetricCosine ranks by 1 - cosine similarity.
	MetricCosine
	// MetricDot ranks by negated dot product.
	MetricDot
)

// String returns the canonical name of the metric.
func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "l2"
	case MetricCosine:
		return "cosine"
	case MetricDot:
		return "dot"
	default:
		return "unknown"
	}
}

// ParseMetric parses a metric name as produced by String.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l2":
		return MetricL2, nil
	case "cosine":
		return MetricCosine, nil
	case "dot":
		return MetricDot, nil
	default:
		return 0, ErrInvalidMetric
	}
}

// RawSegment is one unit emitted by document parsing, such as a CSV row
// or a PDF page. Segments are consumed immediately by fragmentation.
type RawSegment struct {
	Text     string
	Metadata map[string]string
}

// Fragment is a bounded-size chunk of source text, the unit of retrieval.
// The Vector field is empty until the fragment has been embedded.
type Fragment struct {
	Id       ID
	Text     string
	Metadata map[string]string
	Offset   int       // Rune offset within the originating segment
	Vector   []float32 // Embedding vector (populated during ingestion)
}

// ScoredFragment pairs a fragment with its distance to a query vector.
// Lower distance means more similar.
type ScoredFragment struct {
	Fragment *Fragment
	Distance float32
}
