package summarize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/docsum/internal/document"
)

// stubClient replays canned responses and records the prompts it saw.
type stubClient struct {
	responses []string
	prompts   []string
	maxTokens []int
	err       error
}

func (c *stubClient) Generate(_ context.Context, prompt string, maxTokens int) (string, error) {
	c.prompts = append(c.prompts, prompt)
	c.maxTokens = append(c.maxTokens, maxTokens)
	if c.err != nil {
		return "", c.err
	}
	call := len(c.prompts) - 1
	if call >= len(c.responses) {
		return "", nil
	}
	return c.responses[call], nil
}

func (c *stubClient) Model() string { return "stub" }
func (c *stubClient) Close()        {}

func TestSummarize_EndToEnd(t *testing.T) {
	client := &stubClient{responses: []string{
		"###SECTION 1\nSummary A\n###SECTION 2\nSummary B",
		"Final text",
	}}

	cfg := DefaultConfig()
	cfg.MetaSectionSize = 1
	s := New(client, cfg, nil)

	pages := []document.Page{
		{Number: 1, Text: "Alpha."},
		{Number: 2, Text: "Beta."},
	}

	result, err := s.Summarize(context.Background(), pages)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(result.Chunks))
	}
	if result.Chunks[0].ChunkID != "1_1" || result.Chunks[1].ChunkID != "2_1" {
		t.Errorf("unexpected chunk IDs: %q, %q", result.Chunks[0].ChunkID, result.Chunks[1].ChunkID)
	}
	if len(result.MetaSections) != 2 {
		t.Fatalf("expected 2 meta-sections, got %d", len(result.MetaSections))
	}

	want := []document.MetaSummary{
		{Section: 1, Summary: "Summary A"},
		{Section: 2, Summary: "Summary B"},
	}
	if len(result.MetaSummaries) != 2 {
		t.Fatalf("expected 2 meta-summaries, got %d", len(result.MetaSummaries))
	}
	for i := range want {
		if result.MetaSummaries[i] != want[i] {
			t.Errorf("meta-summary %d: expected %+v, got %+v", i, want[i], result.MetaSummaries[i])
		}
	}

	if result.GlobalSummary != "Final text" {
		t.Errorf("expected global summary %q, got %q", "Final text", result.GlobalSummary)
	}

	// Exactly two generation calls, regardless of document size.
	if len(client.prompts) != 2 {
		t.Fatalf("expected exactly 2 generation calls, got %d", len(client.prompts))
	}
	if !strings.Contains(client.prompts[0], "<META id='1'>") {
		t.Error("meta prompt missing tagged sections")
	}
	if !strings.Contains(client.prompts[1], "<S1>") {
		t.Error("global prompt missing tagged summaries")
	}
	if client.maxTokens[0] != 3500 || client.maxTokens[1] != 1800 {
		t.Errorf("unexpected token budgets: %v", client.maxTokens)
	}
}

func TestSummarize_InvalidMetaSectionSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MetaSectionSize = -1
	s := New(&stubClient{}, cfg, nil)

	_, err := s.Summarize(context.Background(), []document.Page{{Number: 1, Text: "text"}})
	if err == nil {
		t.Fatal("expected configuration error for negative meta section size")
	}
}

func TestSummarize_MetaStageFailureIsFatal(t *testing.T) {
	transport := errors.New("connection refused")
	client := &stubClient{err: transport}
	s := New(client, DefaultConfig(), nil)

	_, err := s.Summarize(context.Background(), []document.Page{{Number: 1, Text: "text"}})
	if err == nil {
		t.Fatal("expected error")
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %T: %v", err, err)
	}
	if stageErr.Stage != StageMetaSummary {
		t.Errorf("expected stage %q, got %q", StageMetaSummary, stageErr.Stage)
	}
	if !errors.Is(err, transport) {
		t.Error("expected wrapped transport error")
	}
	if len(client.prompts) != 1 {
		t.Errorf("expected no further calls after fatal failure, got %d", len(client.prompts))
	}
}

func TestSummarize_GlobalStageFailureIdentified(t *testing.T) {
	// First call succeeds, the composition call fails.
	calls := 0
	client := &failSecond{
		inner:  &stubClient{responses: []string{"###SECTION 1\nok"}},
		failOn: 2,
		calls:  &calls,
	}
	s := New(client, DefaultConfig(), nil)

	_, err := s.Summarize(context.Background(), []document.Page{{Number: 1, Text: "text"}})
	if err == nil {
		t.Fatal("expected error")
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %T", err)
	}
	if stageErr.Stage != StageGlobalSummary {
		t.Errorf("expected stage %q, got %q", StageGlobalSummary, stageErr.Stage)
	}
}

// failSecond delegates to an inner client and fails on the nth call.
type failSecond struct {
	inner  *stubClient
	failOn int
	calls  *int
}

func (f *failSecond) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	*f.calls++
	if *f.calls == f.failOn {
		return "", errors.New("provider unavailable")
	}
	return f.inner.Generate(ctx, prompt, maxTokens)
}

func (f *failSecond) Model() string { return f.inner.Model() }
func (f *failSecond) Close()        {}

func TestSummarize_UnparsableResponseIsNotAnError(t *testing.T) {
	client := &stubClient{responses: []string{"complete nonsense", "still composed"}}
	s := New(client, DefaultConfig(), nil)

	result, err := s.Summarize(context.Background(), []document.Page{{Number: 1, Text: "text"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.MetaSummaries) != 0 {
		t.Errorf("expected empty meta-summary list, got %+v", result.MetaSummaries)
	}
	// The empty list is passed through to composition.
	if result.GlobalSummary != "still composed" {
		t.Errorf("expected composition to proceed, got %q", result.GlobalSummary)
	}
}

func TestSummarize_EmptyDocumentSkipsGeneration(t *testing.T) {
	client := &stubClient{}
	s := New(client, DefaultConfig(), nil)

	result, err := s.Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.prompts) != 0 {
		t.Errorf("expected no generation calls for empty document, got %d", len(client.prompts))
	}
	if result.GlobalSummary != "" {
		t.Errorf("expected empty global summary, got %q", result.GlobalSummary)
	}
}
