package fragment

import (
	"strings"
	"unicode"
)

// NormalizeWhitespace collapses runs of whitespace and control characters
// (stray tabs, newlines, carriage returns) to single spaces and trims the
// ends. Fragment boundaries are always computed on normalized text so that
// offsets and overlaps are stable across sources with messy formatting.
func NormalizeWhitespace(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inRun := false
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			inRun = true
			continue
		}
		if inRun && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}
