package loader

import "errors"

var (
	// ErrUnsupportedExtension indicates the file extension maps to no
	// known document format.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
)
