package splitter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsum/internal/document"
)

// DefaultSeparators are tried coarsest to finest. The trailing empty string
// is the last resort and cuts on character boundaries.
var DefaultSeparators = []string{"\n\n", "\n", ".", " ", ""}

// Config controls splitting behavior. Sizes are in characters.
type Config struct {
	ChunkSize    int      // Maximum characters per chunk.
	ChunkOverlap int      // Characters carried over from the end of the previous chunk.
	Separators   []string // Tried in order; empty string means character-level cuts.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1800,
		ChunkOverlap: 250,
		Separators:   DefaultSeparators,
	}
}

// Splitter breaks page text into bounded-size, overlapping chunks while
// preserving page order.
type Splitter struct {
	cfg Config
}

func New(cfg Config) *Splitter {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1800
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 2
	}
	if len(cfg.Separators) == 0 {
		cfg.Separators = DefaultSeparators
	}
	return &Splitter{cfg: cfg}
}

// SplitPages splits every page and flattens the result in page-ascending,
// then sub-chunk-ascending order. Every page yields at least one chunk, even
// when its text is empty.
func (s *Splitter) SplitPages(pages []document.Page) []document.Chunk {
	var chunks []document.Chunk
	for _, pg := range pages {
		parts := s.SplitText(pg.Text)
		for j, text := range parts {
			chunks = append(chunks, document.Chunk{
				Page:    pg.Number,
				ChunkID: fmt.Sprintf("%d_%d", pg.Number, j+1),
				Text:    text,
			})
		}
	}
	return chunks
}

// SplitText splits a single text into chunks of at most ChunkSize characters,
// preferring the coarsest separator that keeps pieces within budget. The
// result is never empty.
func (s *Splitter) SplitText(text string) []string {
	parts := s.split(text, s.cfg.Separators)
	if len(parts) == 0 {
		parts = []string{""}
	}
	return parts
}

func (s *Splitter) split(text string, separators []string) []string {
	if utf8.RuneCountInString(text) <= s.cfg.ChunkSize {
		return []string{text}
	}

	sep, rest, ok := pickSeparator(text, separators)
	if !ok {
		// No separator applies: the text is a single atomic unit and is
		// emitted oversize rather than cut mid-unit.
		return []string{text}
	}
	if sep == "" {
		return s.hardSplit(text)
	}

	var fragments []string
	for _, part := range strings.Split(text, sep) {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= s.cfg.ChunkSize {
			fragments = append(fragments, part)
		} else {
			fragments = append(fragments, s.split(part, rest)...)
		}
	}
	return s.merge(fragments, sep)
}

// pickSeparator returns the coarsest separator present in the text and the
// finer separators remaining after it.
func pickSeparator(text string, separators []string) (string, []string, bool) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil, true
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:], true
		}
	}
	return "", nil, false
}

// hardSplit cuts text into ChunkSize-rune windows advancing by
// ChunkSize-ChunkOverlap, so consecutive windows overlap exactly.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	step := s.cfg.ChunkSize - s.cfg.ChunkOverlap
	if step <= 0 {
		step = s.cfg.ChunkSize
	}

	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + s.cfg.ChunkSize
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// merge greedily packs fragments into chunks of at most ChunkSize characters,
// rejoining them with the separator they were split on. When a chunk is
// emitted, trailing fragments worth up to ChunkOverlap characters are carried
// into the next chunk.
func (s *Splitter) merge(fragments []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)

	var out []string
	var current []string
	total := 0

	for _, frag := range fragments {
		fragLen := utf8.RuneCountInString(frag)
		join := 0
		if len(current) > 0 {
			join = sepLen
		}

		if total+fragLen+join > s.cfg.ChunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
				out = append(out, doc)
			}
			for total > s.cfg.ChunkOverlap ||
				(total+fragLen+sepLen > s.cfg.ChunkSize && total > 0) {
				drop := utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}

		current = append(current, frag)
		total += fragLen
		if len(current) > 1 {
			total += sepLen
		}
	}

	if doc := strings.TrimSpace(strings.Join(current, sep)); doc != "" {
		out = append(out, doc)
	}
	return out
}
