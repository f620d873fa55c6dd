// Package summarize implements the hierarchical reduction:
// pages -> chunks -> meta-sections -> meta-summaries -> global summary.
// The pipeline is strictly sequential and performs exactly two generation
// calls per document, regardless of document size.
package summarize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docsum/internal/compress"
	"github.com/dgallion1/docsum/internal/document"
	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/splitter"
)

// Stage names used to identify where a fatal failure originated.
const (
	StageMetaSummary   = "meta_summary"
	StageGlobalSummary = "global_summary"
)

// StageError wraps a fatal generation failure with the pipeline stage that
// produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Config carries the processing knobs for one summarizer.
type Config struct {
	Splitter            splitter.Config
	MetaSectionSize     int
	CompressionMaxChars int
	MaxTokensMeta       int
	MaxTokensGlobal     int
}

// DefaultConfig returns the stock processing configuration.
func DefaultConfig() Config {
	return Config{
		Splitter:            splitter.DefaultConfig(),
		MetaSectionSize:     5,
		CompressionMaxChars: 700,
		MaxTokensMeta:       3500,
		MaxTokensGlobal:     1800,
	}
}

// Summarizer runs the full reduction for one document at a time.
type Summarizer struct {
	client     llm.Client
	splitter   *splitter.Splitter
	compressor *compress.Compressor
	cfg        Config
	log        *slog.Logger
}

func New(client llm.Client, cfg Config, log *slog.Logger) *Summarizer {
	if cfg.MetaSectionSize == 0 {
		cfg.MetaSectionSize = 5
	}
	if cfg.MaxTokensMeta <= 0 {
		cfg.MaxTokensMeta = 3500
	}
	if cfg.MaxTokensGlobal <= 0 {
		cfg.MaxTokensGlobal = 1800
	}
	if log == nil {
		log = slog.Default()
	}
	return &Summarizer{
		client:     client,
		splitter:   splitter.New(cfg.Splitter),
		compressor: compress.New(cfg.CompressionMaxChars),
		cfg:        cfg,
		log:        log,
	}
}

// Summarize reduces the pages to a single global summary. Every intermediate
// structure is returned alongside the final text so callers can persist them.
func (s *Summarizer) Summarize(ctx context.Context, pages []document.Page) (*document.Result, error) {
	chunks := s.splitter.SplitPages(pages)
	s.log.Info("split pages into chunks", "pages", len(pages), "chunks", len(chunks))

	sections, err := splitter.BuildMetaSections(chunks, s.cfg.MetaSectionSize)
	if err != nil {
		return nil, err
	}
	s.log.Info("built meta-sections", "meta_sections", len(sections))

	compressed := s.compressor.CompressBatch(sections)

	result := &document.Result{
		Pages:              pages,
		Chunks:             chunks,
		MetaSections:       sections,
		CompressedSections: compressed,
	}

	// An empty document has nothing to summarize; skip both generation
	// calls and return an empty result rather than prompting on nothing.
	if len(compressed) == 0 {
		s.log.Warn("document produced no meta-sections, skipping generation")
		return result, nil
	}

	metaSummaries, err := s.generateMetaSummaries(ctx, compressed)
	if err != nil {
		return nil, &StageError{Stage: StageMetaSummary, Err: err}
	}
	s.log.Info("generated meta-summaries", "meta_summaries", len(metaSummaries))
	result.MetaSummaries = metaSummaries

	global, err := s.generateGlobalSummary(ctx, metaSummaries)
	if err != nil {
		return nil, &StageError{Stage: StageGlobalSummary, Err: err}
	}
	s.log.Info("generated global summary", "chars", len(global))
	result.GlobalSummary = global

	return result, nil
}

// generateMetaSummaries expands all compressed meta-sections in a single
// batched call and parses the tagged response.
func (s *Summarizer) generateMetaSummaries(ctx context.Context, sections []document.CompressedMetaSection) ([]document.MetaSummary, error) {
	prompt := BuildMetaSummaryPrompt(sections)
	response, err := s.client.Generate(ctx, prompt, s.cfg.MaxTokensMeta)
	if err != nil {
		return nil, err
	}
	return ParseMetaSummaries(response), nil
}

// generateGlobalSummary folds the meta-summaries into one composition call
// and returns the response verbatim.
func (s *Summarizer) generateGlobalSummary(ctx context.Context, summaries []document.MetaSummary) (string, error) {
	prompt := BuildGlobalSummaryPrompt(summaries)
	return s.client.Generate(ctx, prompt, s.cfg.MaxTokensGlobal)
}
