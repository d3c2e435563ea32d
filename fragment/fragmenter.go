package fragment

import (
	"fmt"
	"maps"

	"github.com/poiesic/quarry/core"
)

// MetadataDocumentID is the metadata key carrying the originating document
// identity. When present it is folded into content-based fragment IDs so
// that identical text in different documents yields distinct fragments.
const MetadataDocumentID = "document_id"

// Fragmenter splits raw segments into bounded-size overlapping fragments.
// It is a pure transformation: deterministic given identical inputs and
// configuration, with no side effects.
type Fragmenter struct {
	chunkSize    int
	chunkOverlap int
}

// NewFragmenter creates a fragmenter with the given window size and overlap,
// both measured in runes. Returns core.ErrInvalidConfiguration if chunkSize
// is not positive or chunkOverlap is not in [0, chunkSize).
func NewFragmenter(chunkSize, chunkOverlap int) (*Fragmenter, error) {
	if err := core.ValidateChunking(chunkSize, chunkOverlap); err != nil {
		return nil, err
	}
	return &Fragmenter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}, nil
}

// ChunkSize returns the configured window size in runes.
func (f *Fragmenter) ChunkSize() int { return f.chunkSize }

// ChunkOverlap returns the configured window overlap in runes.
func (f *Fragmenter) ChunkOverlap() int { return f.chunkOverlap }

// Split walks each segment with a sliding window of chunkSize runes advancing
// by chunkSize-chunkOverlap per step. The final window is truncated to the
// remaining text, never padded. Windowing happens on normalized text, so
// consecutive fragments from one segment share exactly chunkOverlap runes at
// each boundary.
//
// A segment shorter than chunkSize yields exactly one fragment equal to the
// whole (normalized) segment. Segments that normalize to the empty string
// yield no fragments. Each fragment inherits its segment's metadata verbatim
// and records its rune offset within the segment.
func (f *Fragmenter) Split(segments []core.RawSegment) []core.Fragment {
	var fragments []core.Fragment
	for _, segment := range segments {
		fragments = append(fragments, f.splitSegment(segment)...)
	}
	return fragments
}

func (f *Fragmenter) splitSegment(segment core.RawSegment) []core.Fragment {
	text := NormalizeWhitespace(segment.Text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	step := f.chunkSize - f.chunkOverlap

	var fragments []core.Fragment
	for start := 0; start < len(runes); start += step {
		end := start + f.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		fragments = append(fragments, newFragment(segment, string(runes[start:end]), start))
		if end == len(runes) {
			break
		}
	}
	return fragments
}

func newFragment(segment core.RawSegment, text string, offset int) core.Fragment {
	metadata := maps.Clone(segment.Metadata)
	return core.Fragment{
		Id:       fragmentID(metadata, text, offset),
		Text:     text,
		Metadata: metadata,
		Offset:   offset,
	}
}

// fragmentID derives a deterministic content-based ID. The document identity
// and offset disambiguate repeated text across and within documents.
func fragmentID(metadata map[string]string, text string, offset int) core.ID {
	return core.IDFromContent(fmt.Sprintf("%s:%d:%s", metadata[MetadataDocumentID], offset, text))
}
