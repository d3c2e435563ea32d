package loader

import (
	"fmt"
	"strconv"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/quarry/core"
)

// loadPDF extracts one segment per page. Pages with no extractable text
// are skipped.
func (l *Loader) loadPDF(path string) ([]core.RawSegment, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrDocumentUnreadable, err)
	}
	defer file.Close()

	var segments []core.RawSegment
	numPages := reader.NumPage()
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: extracting page %d: %w", core.ErrDocumentUnreadable, pageNum, err)
		}
		if text == "" {
			continue
		}

		segments = append(segments, core.RawSegment{
			Text: text,
			Metadata: map[string]string{
				MetadataPage: strconv.Itoa(pageNum),
			},
		})
	}

	return segments, nil
}
