package splitter

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docsum/internal/document"
)

// BuildMetaSections partitions the ordered chunk stream into consecutive,
// non-overlapping windows of size chunks each (the last window may be
// shorter) and joins each window's texts with a newline. Indices are 1-based.
func BuildMetaSections(chunks []document.Chunk, size int) ([]document.MetaSection, error) {
	if size < 1 {
		return nil, fmt.Errorf("meta section size must be at least 1, got %d", size)
	}

	var sections []document.MetaSection
	for start := 0; start < len(chunks); start += size {
		end := start + size
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		sections = append(sections, document.MetaSection{
			Index: len(sections) + 1,
			Text:  strings.Join(texts, "\n"),
		})
	}
	return sections, nil
}
