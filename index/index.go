package index

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/poiesic/quarry/core"
)

// Index is an append-only in-memory vector index. It stores embedded
// fragments and answers k-nearest-neighbor queries by brute-force scan.
//
// All vectors in one Index share the dimension fixed at construction time.
// Inserts are atomic with respect to visibility: a concurrent reader never
// observes a partially-inserted batch. Queries against a stable index run
// in parallel freely.
type Index struct {
	mu        sync.RWMutex
	dimension int
	metric    core.Metric
	entries   []core.Fragment
	ids       map[core.ID]struct{}
	nextID    uint64
	logger    *slog.Logger
}

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		idx.logger = logger
		return nil
	}
}

// New creates an empty index with the given vector dimension and distance
// metric. Returns core.ErrInvalidConfiguration for a non-positive dimension
// and core.ErrInvalidMetric for an unknown metric.
func New(dimension int, metric core.Metric, opts ...Option) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", core.ErrInvalidConfiguration, dimension)
	}
	if err := core.ValidateMetric(metric); err != nil {
		return nil, err
	}

	idx := &Index{
		dimension: dimension,
		metric:    metric,
		ids:       make(map[core.ID]struct{}),
		nextID:    1,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(idx); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// Insert appends embedded fragments to the index and returns their IDs in
// input order. Fragments with a zero ID are assigned one, unique for the
// lifetime of the index.
//
// The call is atomic: every fragment is validated before any is appended,
// so a failed insert commits nothing. Fails with core.ErrDimensionMismatch
// if any vector's length differs from the index dimension, and with
// ErrDuplicateID if an ID is already present or repeated within the batch.
func (idx *Index) Insert(fragments ...core.Fragment) ([]core.ID, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	seen := make(map[core.ID]struct{}, len(fragments))
	for i, fragment := range fragments {
		if len(fragment.Vector) != idx.dimension {
			return nil, fmt.Errorf("%w: fragment %d has dimension %d, index has %d",
				core.ErrDimensionMismatch, i, len(fragment.Vector), idx.dimension)
		}
		if fragment.Id == 0 {
			continue
		}
		if _, ok := idx.ids[fragment.Id]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, fragment.Id)
		}
		if _, ok := seen[fragment.Id]; ok {
			return nil, fmt.Errorf("%w: %d repeated in batch", ErrDuplicateID, fragment.Id)
		}
		seen[fragment.Id] = struct{}{}
	}

	ids := make([]core.ID, len(fragments))
	for i, fragment := range fragments {
		if fragment.Id == 0 {
			fragment.Id = idx.assignID()
		}
		idx.ids[fragment.Id] = struct{}{}
		idx.entries = append(idx.entries, fragment)
		ids[i] = fragment.Id
	}

	idx.logger.Debug("inserted fragments", "count", len(fragments), "size", len(idx.entries))
	return ids, nil
}

// assignID returns the next free sequence ID. Caller must hold the write lock.
func (idx *Index) assignID() core.ID {
	for {
		id := core.ID(idx.nextID)
		idx.nextID++
		if _, ok := idx.ids[id]; !ok && id != 0 {
			return id
		}
	}
}

// Query returns the k entries nearest to the given vector under the index
// metric, ascending by distance, ties broken by insertion order
// (earlier-inserted wins). The result is truncated to the index size when k
// exceeds it.
//
// Fails with core.ErrDimensionMismatch if the vector's length differs from
// the index dimension, and with core.ErrEmptyIndex if the index holds no
// entries; an empty index is always an error here, never an empty result.
func (idx *Index) Query(vector []float32, k int) ([]core.ScoredFragment, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", core.ErrInvalidConfiguration, k)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(vector) != idx.dimension {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index has %d",
			core.ErrDimensionMismatch, len(vector), idx.dimension)
	}
	if len(idx.entries) == 0 {
		return nil, core.ErrEmptyIndex
	}

	distance := distanceFunc(idx.metric)
	scored := make([]core.ScoredFragment, len(idx.entries))
	for i := range idx.entries {
		scored[i] = core.ScoredFragment{
			Fragment: &idx.entries[i],
			Distance: distance(vector, idx.entries[i].Vector),
		}
	}

	// Stable sort preserves insertion order on equal distances.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Size returns the number of entries in the index.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Dimension returns the vector dimension fixed at construction time.
func (idx *Index) Dimension() int { return idx.dimension }

// Metric returns the distance metric fixed at construction time.
func (idx *Index) Metric() core.Metric { return idx.metric }
