package loader

import (
	"fmt"
	"os"

	"github.com/poiesic/quarry/core"
)

// loadText reads a plain text or markdown file as a single segment.
func (l *Loader) loadText(path string) ([]core.RawSegment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrDocumentUnreadable, err)
	}

	return []core.RawSegment{
		{Text: string(content)},
	}, nil
}
