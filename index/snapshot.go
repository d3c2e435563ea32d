package index

import (
	"fmt"

	"github.com/poiesic/quarry/core"
)

// Snapshot is a point-in-time copy of an index's configuration and entries,
// suitable for persistence. Entries appear in insertion order.
type Snapshot struct {
	Dimension int
	Metric    core.Metric
	Fragments []core.Fragment
}

// Snapshot returns a copy of the index state. The fragment payloads are
// shared, not deep-copied; they are never mutated after insertion.
func (idx *Index) Snapshot() *Snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	fragments := make([]core.Fragment, len(idx.entries))
	copy(fragments, idx.entries)

	return &Snapshot{
		Dimension: idx.dimension,
		Metric:    idx.metric,
		Fragments: fragments,
	}
}

// CompatibleWith checks that the snapshot can be loaded into an index with
// the given configuration. Returns core.ErrIncompatibleIndex on dimension or
// metric mismatch.
func (s *Snapshot) CompatibleWith(dimension int, metric core.Metric) error {
	if s.Dimension != dimension {
		return fmt.Errorf("%w: snapshot dimension %d, index dimension %d",
			core.ErrIncompatibleIndex, s.Dimension, dimension)
	}
	if s.Metric != metric {
		return fmt.Errorf("%w: snapshot metric %s, index metric %s",
			core.ErrIncompatibleIndex, s.Metric, metric)
	}
	return nil
}

// FromSnapshot rebuilds an index from a snapshot, preserving entry IDs and
// insertion order.
func FromSnapshot(snapshot *Snapshot, opts ...Option) (*Index, error) {
	idx, err := New(snapshot.Dimension, snapshot.Metric, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := idx.Insert(snapshot.Fragments...); err != nil {
		return nil, fmt.Errorf("rebuilding index from snapshot: %w", err)
	}
	return idx, nil
}
