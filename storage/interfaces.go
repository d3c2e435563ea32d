package storage

import (
	"context"

	"github.com/poiesic/quarry/index"
)

// SnapshotStore persists vector index snapshots. Implementations must be
// safe for concurrent use.
type SnapshotStore interface {
	// SaveSnapshot persists the snapshot, replacing any previous one.
	// The write is atomic: a concurrent load observes either the previous
	// snapshot or the new one, never a mix.
	SaveSnapshot(ctx context.Context, snapshot *index.Snapshot) error

	// LoadSnapshot retrieves the persisted snapshot.
	// Returns ErrNotFound if no snapshot has been saved.
	LoadSnapshot(ctx context.Context) (*index.Snapshot, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
