// Package report writes summarization results to disk: the final markdown
// summary plus optional intermediate artifacts for inspecting the pipeline.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docsum/internal/document"
)

// DefaultOutputPath names a summary file with a timestamp so repeated runs
// never clobber each other.
func DefaultOutputPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("summary_%s.md", now.Format("20060102_150405")))
}

// WriteSummary writes the global summary as a markdown document.
func WriteSummary(path string, result *document.Result, now time.Time) error {
	var b strings.Builder
	b.WriteString("# Document Summary\n\n")
	b.WriteString(result.GlobalSummary)
	b.WriteString("\n\n---\n\n")
	b.WriteString("Generated on: " + now.Format("2006-01-02 15:04:05") + "\n")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// WriteIntermediate saves the per-section summaries and the chunk table
// next to the summary, in a "<stem>_intermediate" directory.
func WriteIntermediate(summaryPath string, result *document.Result) (string, error) {
	stem := strings.TrimSuffix(summaryPath, filepath.Ext(summaryPath))
	dir := stem + "_intermediate"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create intermediate dir: %w", err)
	}

	if err := writeMetaSummaries(filepath.Join(dir, "meta_summaries.json"), result.MetaSummaries); err != nil {
		return "", err
	}
	if err := writeChunks(filepath.Join(dir, "chunks.csv"), result.Chunks); err != nil {
		return "", err
	}
	return dir, nil
}

func writeMetaSummaries(path string, summaries []document.MetaSummary) error {
	if summaries == nil {
		summaries = []document.MetaSummary{}
	}
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta summaries: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write meta summaries: %w", err)
	}
	return nil
}

func writeChunks(path string, chunks []document.Chunk) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chunks file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"page", "chunk_id", "text"}); err != nil {
		return fmt.Errorf("write chunks header: %w", err)
	}
	for _, c := range chunks {
		if err := w.Write([]string{fmt.Sprintf("%d", c.Page), c.ChunkID, c.Text}); err != nil {
			return fmt.Errorf("write chunk row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush chunks: %w", err)
	}
	return f.Close()
}
