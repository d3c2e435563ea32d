package index

import "errors"

var (
	// ErrDuplicateID is returned when an inserted fragment carries an ID
	// already present in the index or repeated within the batch.
	ErrDuplicateID = errors.New("duplicate fragment id")
)
