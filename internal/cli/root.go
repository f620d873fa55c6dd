// Package cli wires the command line interface: a one-shot summarize
// command and a long-running API server.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsum/internal/config"
	"github.com/dgallion1/docsum/internal/document"
	"github.com/dgallion1/docsum/internal/extractor"
	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/report"
	"github.com/dgallion1/docsum/internal/splitter"
	"github.com/dgallion1/docsum/internal/summarize"
)

var (
	cfgFile          string
	flagProvider     string
	flagModel        string
	flagAPIKey       string
	flagOutput       string
	flagIntermediate bool
)

var rootCmd = &cobra.Command{
	Use:   "docsum <file>",
	Short: "Summarize a document with a hierarchical LLM pipeline",
	Long: `docsum reads a document (txt, md, csv, html, pdf, docx), splits it into
overlapping chunks, groups them into meta-sections, compresses each one,
and produces per-section and global summaries with two LLM calls.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSummarize(cmd, args[0])
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "llm provider: groq, openai, ollama")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "model name override")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "provider api key (overrides environment)")

	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file path (default summary_<timestamp>.md)")
	rootCmd.Flags().BoolVar(&flagIntermediate, "save-intermediate", false, "save meta summaries and chunk table alongside the output")

	rootCmd.AddCommand(serveCmd)
}

// loadConfig applies flag overrides on top of file and environment values.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if flagProvider != "" {
		cfg.Provider = strings.ToLower(flagProvider)
	}
	if flagModel != "" {
		m := cfg.Model()
		m.ModelName = flagModel
		if cfg.Models == nil {
			cfg.Models = make(map[string]config.ModelConfig)
		}
		cfg.Models[strings.ToLower(cfg.Provider)] = m
	}
	if flagAPIKey != "" {
		cfg.GroqAPIKey = flagAPIKey
		cfg.OpenAIAPIKey = flagAPIKey
	}
	if flagIntermediate {
		cfg.Output.SaveIntermediate = true
	}
	return cfg, nil
}

func newClient(cfg *config.Config, stats *llm.Stats) (llm.Client, error) {
	m := cfg.Model()
	return llm.New(cfg.Provider, llm.Options{
		BaseURL:     m.BaseURL,
		APIKey:      cfg.APIKey(),
		Model:       m.ModelName,
		Temperature: m.Temperature,
		Stats:       stats,
	})
}

func newSummarizer(cfg *config.Config, client llm.Client, log *slog.Logger) *summarize.Summarizer {
	m := cfg.Model()
	return summarize.New(client, summarize.Config{
		Splitter: splitter.Config{
			ChunkSize:    cfg.Processing.ChunkSize,
			ChunkOverlap: cfg.Processing.ChunkOverlap,
			Separators:   cfg.Processing.Separators,
		},
		MetaSectionSize:     cfg.Processing.MetaSectionSize,
		CompressionMaxChars: cfg.Processing.CompressionMaxChars,
		MaxTokensMeta:       m.MaxTokensMeta,
		MaxTokensGlobal:     m.MaxTokensGlobal,
	}, log)
}

func runSummarize(cmd *cobra.Command, path string) error {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ex, err := extractor.ForFile(path)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	pages, err := ex.Extract(f, path)
	if err != nil {
		return fmt.Errorf("extract document: %w", err)
	}
	log.Info("extracted document", "file", path, "pages", len(pages))

	client, err := newClient(cfg, llm.NewStats(time.Hour))
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := newSummarizer(cfg, client, log).Summarize(cmd.Context(), pages)
	if err != nil {
		return err
	}

	return writeOutputs(cfg, result, log)
}

func writeOutputs(cfg *config.Config, result *document.Result, log *slog.Logger) error {
	now := time.Now()
	out := flagOutput
	if out == "" {
		out = report.DefaultOutputPath(cfg.Output.Dir, now)
	}
	if err := report.WriteSummary(out, result, now); err != nil {
		return err
	}
	log.Info("wrote summary", "path", out)

	if cfg.Output.SaveIntermediate {
		dir, err := report.WriteIntermediate(out, result)
		if err != nil {
			return err
		}
		log.Info("wrote intermediate artifacts", "dir", dir)
	}

	fmt.Println(out)
	return nil
}
