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


package loader

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/quarry/core"
	"github.com/poiesic/quarry/fragment"
)

// Metadata keys stamped on every loaded segment.
const (
	MetadataSource = "source"
	MetadataRow    = "row"
	MetadataPage   = "page"
)

// Loader reads documents from disk and turns them into raw segments
// ready for fragmenting.
type Loader struct {
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// New creates a document loader.
func New(opts ...Option) (*Loader, error) {
	l := &Loader{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Load reads the document at path and returns its raw segments. The format
// is chosen by file extension: .csv yields one segment per data row, .pdf
// one segment per page, and .txt/.md/.markdown a single segment. Every
// segment carries the source file name and a document ID shared by all
// segments of the same file.
func (l *Loader) Load(path string) ([]core.RawSegment, error) {
	documentID := uuid.NewString()

	var segments []core.RawSegment
	var err error

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		segments, err = l.loadCSV(path)
	case ".pdf":
		segments, err = l.loadPDF(path)
	case ".txt", ".md", ".markdown", ".text":
		segments, err = l.loadText(path)
	default:
		return nil, fmt.Errorf("%w: %w %q", core.ErrDocumentUnreadable, ErrUnsupportedExtension, ext)
	}
	if err != nil {
		return nil, err
	}

	source := filepath.Base(path)
	for i := range segments {
		if segments[i].Metadata == nil {
			segments[i].Metadata = make(map[string]string)
		}
		segments[i].Metadata[MetadataSource] = source
		segments[i].Metadata[fragment.MetadataDocumentID] = documentID
	}

	l.logger.Debug("loaded document", "path", path, "format", ext, "segments", len(segments))
	return segments, nil
}
