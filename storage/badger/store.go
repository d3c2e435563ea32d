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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/quarry/core"
	"github.com/poiesic/quarry/index"
	"github.com/poiesic/quarry/storage"
)

// SnapshotStore persists index snapshots in BadgerDB.
type SnapshotStore struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a snapshot store over the given backend.
func NewSnapshotStore(backend *Backend) (*SnapshotStore, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &SnapshotStore{
		backend: backend,
		logger:  slog.Default().With("component", "badger-snapshot-store"),
	}, nil
}

// SaveSnapshot persists the snapshot, replacing any previous one. The meta
// record and all entries are written in one transaction, so a concurrent
// load never observes a mix of old and new state.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snapshot *index.Snapshot) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	meta := storage.SnapshotMeta{
		Dimension: snapshot.Dimension,
		Metric:    snapshot.Metric,
		Count:     len(snapshot.Fragments),
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		previousCount, err := s.readEntryCount(tx)
		if err != nil {
			return err
		}

		if err := tx.Set([]byte(snapshotMetaKey), storage.MarshalSnapshotMeta(meta)); err != nil {
			return err
		}
		for position := range snapshot.Fragments {
			if err := tx.Set(makeEntryKey(position), storage.MarshalFragment(&snapshot.Fragments[position])); err != nil {
				return err
			}
		}

		// Drop the tail of a previous larger snapshot so no orphan
		// entries accumulate past the new count.
		for position := meta.Count; position < previousCount; position++ {
			if err := tx.Delete(makeEntryKey(position)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	s.logger.Debug("saved snapshot", "entries", meta.Count, "dimension", meta.Dimension, "metric", meta.Metric)
	return nil
}

// readEntryCount returns the entry count of the persisted snapshot, or zero
// when none has been saved.
func (s *SnapshotStore) readEntryCount(tx *badger.Txn) (int, error) {
	item, err := tx.Get([]byte(snapshotMetaKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var count int
	err = item.Value(func(val []byte) error {
		meta, err := storage.UnmarshalSnapshotMeta(val)
		if err != nil {
			return err
		}
		count = meta.Count
		return nil
	})
	return count, err
}

// LoadSnapshot retrieves the persisted snapshot. Returns storage.ErrNotFound
// if none has been saved, and storage.ErrTruncatedData if fewer entries are
// present than the meta record declares.
func (s *SnapshotStore) LoadSnapshot(ctx context.Context) (*index.Snapshot, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var snapshot *index.Snapshot
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := tx.Get([]byte(snapshotMetaKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		var meta storage.SnapshotMeta
		err = item.Value(func(val []byte) error {
			var err error
			meta, err = storage.UnmarshalSnapshotMeta(val)
			return err
		})
		if err != nil {
			return err
		}

		fragments := make([]core.Fragment, 0, meta.Count)
		for position := 0; position < meta.Count; position++ {
			item, err := tx.Get(makeEntryKey(position))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: entry %d of %d missing", storage.ErrTruncatedData, position, meta.Count)
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				fragment, err := storage.UnmarshalFragment(val)
				if err != nil {
					return err
				}
				fragments = append(fragments, *fragment)
				return nil
			})
			if err != nil {
				return err
			}
		}

		snapshot = &index.Snapshot{
			Dimension: meta.Dimension,
			Metric:    meta.Metric,
			Fragments: fragments,
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("loaded snapshot", "entries", len(snapshot.Fragments))
	return snapshot, nil
}

// Close closes the underlying backend.
func (s *SnapshotStore) Close() error {
	return s.backend.Close()
}
