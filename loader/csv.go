package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/quarry/core"
)

// loadCSV reads a CSV file with a header row. Each data row becomes one
// segment whose text spells out "header: value" pairs, with the row's
// values also folded into the segment metadata under their header names.
func (l *Loader) loadCSV(path string) ([]core.RawSegment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrDocumentUnreadable, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading CSV header: %w", core.ErrDocumentUnreadable, err)
	}

	var segments []core.RawSegment
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading CSV row %d: %w", core.ErrDocumentUnreadable, row, err)
		}

		metadata := map[string]string{
			MetadataRow: strconv.Itoa(row),
		}
		parts := make([]string, 0, len(record))
		for i, value := range record {
			if i >= len(header) {
				break
			}
			metadata[header[i]] = value
			parts = append(parts, header[i]+": "+value)
		}

		segments = append(segments, core.RawSegment{
			Text:     strings.Join(parts, ". "),
			Metadata: metadata,
		})
	}

	return segments, nil
}
