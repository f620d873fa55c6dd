package extractor

import (
	"io"
	"strings"

	"github.com/dgallion1/docsum/internal/document"
)

// TextExtractor handles plain text files. Form feeds separate pages; a file
// without them is a single page.
type TextExtractor struct{}

func (e *TextExtractor) Extract(r io.Reader, filename string) ([]document.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var pages []document.Page
	for i, segment := range strings.Split(string(data), "\f") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		pages = append(pages, document.Page{
			Number: i + 1,
			Text:   segment,
		})
	}
	return pages, nil
}
