// Package compress normalizes meta-section text before it is embedded in a
// prompt: whitespace collapsing, page-noise removal, an OCR-friendly
// character allow-list, and a hard character budget.
package compress

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/docsum/internal/document"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	pageNoiseRe  = regexp.MustCompile(`(?i)PAGE\s*\d+`)
	// Everything outside this allow-list is replaced with a space.
	disallowedRe = regexp.MustCompile(`[^a-zA-Z0-9.,;:()?\- ]`)
)

// Compressor applies the normalization pipeline with a fixed character budget.
type Compressor struct {
	maxChars int
}

func New(maxChars int) *Compressor {
	if maxChars <= 0 {
		maxChars = 700
	}
	return &Compressor{maxChars: maxChars}
}

// Compress runs the deterministic pipeline: collapse whitespace, drop
// "PAGE <n>" noise, drop characters outside the allow-list, re-collapse,
// truncate. The result never exceeds the budget and re-compressing it is a
// no-op.
func (c *Compressor) Compress(text string) string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	text = pageNoiseRe.ReplaceAllString(text, " ")
	text = disallowedRe.ReplaceAllString(text, " ")
	// Dropping a disallowed character can fuse "PAGE" with trailing digits
	// (e.g. "PAGE #12"), so the noise pass runs once more on the result.
	text = pageNoiseRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	return c.truncate(text)
}

// CompressBatch compresses every meta-section, preserving indices.
func (c *Compressor) CompressBatch(sections []document.MetaSection) []document.CompressedMetaSection {
	out := make([]document.CompressedMetaSection, 0, len(sections))
	for _, sec := range sections {
		out = append(out, document.CompressedMetaSection{
			Index: sec.Index,
			Text:  c.Compress(sec.Text),
		})
	}
	return out
}

// CompressWithCustomRules applies the standard pipeline, then the supplied
// removal patterns in order, each followed by whitespace re-collapse, then a
// final truncation. An invalid pattern fails the whole call.
func (c *Compressor) CompressWithCustomRules(text string, removePatterns []string) (string, error) {
	compressed := c.Compress(text)
	for _, pattern := range removePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return "", fmt.Errorf("compile removal pattern %q: %w", pattern, err)
		}
		compressed = re.ReplaceAllString(compressed, " ")
		compressed = strings.TrimSpace(whitespaceRe.ReplaceAllString(compressed, " "))
	}
	return c.truncate(compressed), nil
}

// truncate cuts to the budget. The allow-list leaves pure ASCII, so byte
// indexing is character indexing here. The trailing trim keeps truncation
// stable under re-compression.
func (c *Compressor) truncate(text string) string {
	if len(text) > c.maxChars {
		text = strings.TrimRight(text[:c.maxChars], " ")
	}
	return text
}
