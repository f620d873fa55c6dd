package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docsum/internal/extractor"
	"github.com/dgallion1/docsum/internal/summarize"
)

// Worker processes a single summarization job: extract pages from the
// uploaded bytes, then run the full reduction pipeline.
type Worker struct {
	summarizer *summarize.Summarizer
	log        *slog.Logger
}

func NewWorker(s *summarize.Summarizer, log *slog.Logger) *Worker {
	return &Worker{summarizer: s, log: log}
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Extract pages.
	job.SetStatus(StatusExtracting, "extracting")
	ex, err := extractor.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	pages, err := ex.Extract(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	log.Info("extracted document", "pages", len(pages))

	// Phase 2: Summarize.
	job.SetStatus(StatusSummarizing, "summarizing")
	result, err := w.summarizer.Summarize(ctx, pages)
	if err != nil {
		stage := "summarizing"
		var stageErr *summarize.StageError
		if errors.As(err, &stageErr) {
			stage = stageErr.Stage
		}
		log.Error("summarization failed", "stage", stage, "error", err)
		job.AddError(fmt.Sprintf("%s: %s", stage, err))
		job.SetStatus(StatusFailed, stage)
		return
	}

	job.SetCounts(len(result.Pages), len(result.Chunks), len(result.MetaSections), len(result.MetaSummaries))
	job.SetResult(result)
	job.SetStatus(StatusCompleted, "done")
	log.Info("summarization complete",
		"chunks", len(result.Chunks),
		"meta_sections", len(result.MetaSections),
		"meta_summaries", len(result.MetaSummaries))
}
