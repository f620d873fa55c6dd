package summarize

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docsum/internal/document"
)

// SectionDelimiter is the literal token the model is instructed to put in
// front of every per-section block, and the token the parser splits on.
const SectionDelimiter = "###SECTION"

const metaSummaryInstructions = `You are an expert at summarizing long, complex documents.

Below are multiple META-SECTIONS.
Each META-SECTION is a pre-compressed excerpt from the original document.

Your task:
- Expand each META-SECTION into a 120-200 word refined summary.
- Maintain accuracy.
- Add back missing clarity and connections.
- NO hallucination.
- Format MUST be:

###SECTION <N>
<summary>

META-SECTIONS BELOW:
`

// BuildMetaSummaryPrompt embeds every compressed meta-section, tagged with
// its 1-based id, into one batched prompt.
func BuildMetaSummaryPrompt(sections []document.CompressedMetaSection) string {
	var sb strings.Builder
	sb.WriteString(metaSummaryInstructions)
	for _, sec := range sections {
		sb.WriteString(fmt.Sprintf("\n<META id='%d'> %s </META>", sec.Index, sec.Text))
	}
	return sb.String()
}

const globalSummaryInstructions = `You are a senior expert summarizer for complex long documents.

Create a unified GLOBAL SUMMARY from the refined meta-section summaries.

Include:
- Main Purpose
- Problems addressed
- Key findings
- Observations
- Critical outcomes
- Conclusions
- Important insights

Avoid repetition. Provide a coherent 4-6 paragraph summary, with the sections above as headers.

META-SECTION SUMMARIES:
`

// BuildGlobalSummaryPrompt embeds every meta-summary as a section-tagged
// block, in the order provided.
func BuildGlobalSummaryPrompt(summaries []document.MetaSummary) string {
	blocks := make([]string, 0, len(summaries))
	for _, m := range summaries {
		blocks = append(blocks, fmt.Sprintf("<S%d>\n%s\n</S%d>", m.Section, m.Summary, m.Section))
	}

	var sb strings.Builder
	sb.WriteString(globalSummaryInstructions)
	sb.WriteString(strings.Join(blocks, "\n\n"))
	sb.WriteString("\n\nWrite the final global summary:\n")
	return sb.String()
}
