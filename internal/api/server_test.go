package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgallion1/docsum/internal/config"
	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/pipeline"
	"github.com/dgallion1/docsum/internal/summarize"
)

type cannedClient struct {
	calls int
}

func (c *cannedClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	c.calls++
	if c.calls == 1 {
		return "###SECTION 1\nA short section summary.", nil
	}
	return "The document is about testing.", nil
}

func (c *cannedClient) Model() string { return "canned" }
func (c *cannedClient) Close()        {}

func newTestServer(t *testing.T) (*Server, *pipeline.Orchestrator, func()) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.ServerConfig{
		Port:           "0",
		APIKey:         "test-key",
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Minute,
	}

	client := &cannedClient{}
	s := summarize.New(client, summarize.Config{MetaSectionSize: 1}, log)
	orch := pipeline.NewOrchestrator(cfg, s, log)

	ctx, cancel := context.WithCancel(context.Background())
	orch.Start(ctx)

	stats := llm.NewStats(time.Minute)
	srv := NewServer(orch, client, stats, log, cfg)
	return srv, orch, func() {
		cancel()
		orch.Stop()
	}
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(fw, content)
	w.Close()
	return &body, w.FormDataContentType()
}

func TestHealth(t *testing.T) {
	srv, _, stop := newTestServer(t)
	defer stop()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"ok"`)) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _, stop := newTestServer(t)
	defer stop()

	req := httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stats/llm", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestSummarize_RejectsUnsupportedType(t *testing.T) {
	srv, _, stop := newTestServer(t)
	defer stop()

	body, contentType := multipartUpload(t, "file", "data.xlsx", "not really a spreadsheet")
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer test-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSummarize_SubmitAndPoll(t *testing.T) {
	srv, orch, stop := newTestServer(t)
	defer stop()

	body, contentType := multipartUpload(t, "file", "note.txt", "Testing is useful. It catches regressions.")
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer test-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID   string `json:"job_id"`
		Status  string `json:"status"`
		PollURL string `json:"poll_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &accepted); err != nil {
		t.Fatalf("decode accept response: %v", err)
	}
	if accepted.JobID == "" {
		t.Fatal("expected a job id")
	}
	// The worker may already be running; the accept response reports the
	// state the job was submitted in, never a later one.
	if accepted.Status != string(pipeline.StatusQueued) {
		t.Errorf("expected accept status %q, got %q", pipeline.StatusQueued, accepted.Status)
	}

	// Wait for the worker to finish.
	deadline := time.Now().Add(5 * time.Second)
	var snap pipeline.JobSnapshot
	for {
		job := orch.GetJob(accepted.JobID)
		if job == nil {
			t.Fatal("job disappeared")
		}
		snap = job.Snapshot()
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not finish, status %q", snap.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %q (errors: %v)", snap.Status, snap.Progress.Errors)
	}

	req = httptest.NewRequest(http.MethodGet, accepted.PollURL, nil)
	req.Header.Set("Authorization", "Bearer test-key")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from status, got %d", rec.Code)
	}
	var status pipeline.JobSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.GlobalSummary != "The document is about testing." {
		t.Errorf("expected global summary in response, got %q", status.GlobalSummary)
	}
	if len(status.MetaSummaries) == 0 {
		t.Error("expected meta summaries in response")
	}
}

func TestBatchSummarize_AcceptReportsQueued(t *testing.T) {
	srv, orch, stop := newTestServer(t)
	defer stop()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for i := range 3 {
		fw, err := w.CreateFormFile("files", fmt.Sprintf("doc%d.txt", i))
		if err != nil {
			t.Fatal(err)
		}
		fmt.Fprintf(fw, "Document %d. It has two sentences.", i)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/summarize/batch", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer test-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Jobs []struct {
			JobID  string `json:"job_id"`
			Status string `json:"status"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode batch response: %v", err)
	}
	if len(resp.Jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(resp.Jobs))
	}
	for _, j := range resp.Jobs {
		if j.Status != string(pipeline.StatusQueued) {
			t.Errorf("job %s: expected accept status %q, got %q", j.JobID, pipeline.StatusQueued, j.Status)
		}
		if orch.GetJob(j.JobID) == nil {
			t.Errorf("job %s not registered", j.JobID)
		}
	}
}

func TestSummarizeStatus_NotFound(t *testing.T) {
	srv, _, stop := newTestServer(t)
	defer stop()

	req := httptest.NewRequest(http.MethodGet, "/api/summarize/nope/status", nil)
	req.Header.Set("Authorization", "Bearer test-key")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
