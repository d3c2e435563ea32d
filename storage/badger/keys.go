package badger

import "encoding/binary"

// Key prefixes for different data types
const (
	snapshotMetaKey     = "snapmeta"
	snapshotEntryPrefix = "snapent"
)

// makeEntryKey generates a key for the snapshot entry at the given position.
// Positions are encoded BigEndian so lexicographic iteration preserves
// insertion order.
func makeEntryKey(position int) []byte {
	prefix := snapshotEntryPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(position))
	return buf
}
