package summarize

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dgallion1/docsum/internal/document"
)

// ParseMetaSummaries parses the batched model response into per-section
// summaries. The response is split on the section delimiter; a block is kept
// only when it starts with a parsable section number on its own line.
// Malformed blocks are skipped, never fatal: a fully unparsable response
// yields an empty list. The result is sorted ascending by section number;
// duplicate section numbers are kept in their original relative order.
func ParseMetaSummaries(response string) []document.MetaSummary {
	var summaries []document.MetaSummary

	for _, block := range strings.Split(response, SectionDelimiter) {
		block = strings.TrimSpace(block)
		if block == "" || block[0] < '0' || block[0] > '9' {
			continue
		}

		lines := strings.Split(block, "\n")
		section, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			continue
		}

		summaries = append(summaries, document.MetaSummary{
			Section: section,
			Summary: strings.TrimSpace(strings.Join(lines[1:], "\n")),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Section < summaries[j].Section
	})
	return summaries
}
