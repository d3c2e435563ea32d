package index

import (
	"math"

	"github.com/poiesic/quarry/core"
)

// distanceFunc returns the distance function for a metric. Every function
// maps "closer" to a smaller value so ranking is uniform across metrics:
// L2 is squared Euclidean distance (monotonic with true Euclidean distance,
// avoiding a square root per comparison), cosine is 1 - cosine similarity,
// and dot is the negated dot product.
func distanceFunc(metric core.Metric) func(a, b []float32) float32 {
	switch metric {
	case core.MetricCosine:
		return cosineDistance
	case core.MetricDot:
		return negatedDot
	default:
		return squaredL2
	}
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func cosineDistance(a, b []float32) float32 {
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	// A zero vector has no direction; treat similarity as zero.
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(float32(math.Sqrt(float64(normA)))*float32(math.Sqrt(float64(normB))))
}

func negatedDot(a, b []float32) float32 {
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return -dot
}
