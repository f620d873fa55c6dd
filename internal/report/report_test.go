package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/docsum/internal/document"
)

func TestDefaultOutputPath(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
	got := DefaultOutputPath("/out", now)
	want := filepath.Join("/out", "summary_20240315_093045.md")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWriteSummary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.md")
	now := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)

	result := &document.Result{GlobalSummary: "The document argues X."}
	if err := WriteSummary(path, result, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	text := string(data)

	if !strings.HasPrefix(text, "# Document Summary\n\n") {
		t.Errorf("expected markdown header, got %q", text)
	}
	if !strings.Contains(text, "The document argues X.") {
		t.Errorf("expected global summary body, got %q", text)
	}
	if !strings.Contains(text, "Generated on: 2024-03-15 09:30:45") {
		t.Errorf("expected timestamp footer, got %q", text)
	}
}

func TestWriteIntermediate(t *testing.T) {
	dir := t.TempDir()
	summaryPath := filepath.Join(dir, "summary_20240315_093045.md")

	result := &document.Result{
		Chunks: []document.Chunk{
			{Page: 1, ChunkID: "1_1", Text: "first chunk"},
			{Page: 2, ChunkID: "2_1", Text: "has,comma and \"quotes\""},
		},
		MetaSummaries: []document.MetaSummary{
			{Section: 1, Summary: "summary one"},
			{Section: 2, Summary: "summary two"},
		},
	}

	outDir, err := WriteIntermediate(summaryPath, result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outDir != filepath.Join(dir, "summary_20240315_093045_intermediate") {
		t.Errorf("unexpected intermediate dir %q", outDir)
	}

	// meta_summaries.json round-trips.
	raw, err := os.ReadFile(filepath.Join(outDir, "meta_summaries.json"))
	if err != nil {
		t.Fatalf("read meta summaries: %v", err)
	}
	var summaries []document.MetaSummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		t.Fatalf("unmarshal meta summaries: %v", err)
	}
	if len(summaries) != 2 || summaries[0].Section != 1 || summaries[1].Summary != "summary two" {
		t.Errorf("unexpected meta summaries: %+v", summaries)
	}

	// chunks.csv has a header and quoted cells survive.
	f, err := os.Open(filepath.Join(outDir, "chunks.csv"))
	if err != nil {
		t.Fatalf("open chunks: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read chunks: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "page" || rows[0][1] != "chunk_id" || rows[0][2] != "text" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[2][2] != "has,comma and \"quotes\"" {
		t.Errorf("expected csv escaping to round-trip, got %q", rows[2][2])
	}
}

func TestWriteIntermediate_EmptyResult(t *testing.T) {
	dir := t.TempDir()
	summaryPath := filepath.Join(dir, "summary.md")

	outDir, err := WriteIntermediate(summaryPath, &document.Result{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(outDir, "meta_summaries.json"))
	if err != nil {
		t.Fatalf("read meta summaries: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("expected empty json array, got %q", raw)
	}
}
