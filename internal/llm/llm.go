// Package llm provides the text-generation boundary: a blocking Generate
// call behind a provider-agnostic interface, with concrete clients selected
// by provider tag.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Client is the generation capability. Generate blocks until the provider
// returns text or fails with a transport error.
type Client interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	Model() string
	Close()
}

// Options configures a client. Zero values fall back to provider defaults.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Stats       *Stats // optional latency recorder, shared across clients
}

// Supported provider tags.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// New returns a client for the given provider tag. Unknown tags and missing
// credentials are configuration errors, surfaced before any generation call.
func New(provider string, opts Options) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderGroq:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("groq provider requires an API key (set GROQ_API_KEY)")
		}
		if opts.BaseURL == "" {
			opts.BaseURL = "https://api.groq.com/openai/v1"
		}
		if opts.Model == "" {
			opts.Model = "llama-3.3-70b-versatile"
		}
		return newOpenAIClient(opts), nil
	case ProviderOpenAI:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key (set OPENAI_API_KEY)")
		}
		if opts.Model == "" {
			opts.Model = "gpt-4o-mini"
		}
		return newOpenAIClient(opts), nil
	case ProviderOllama:
		if opts.BaseURL == "" {
			opts.BaseURL = "http://localhost:11434"
		}
		if opts.Model == "" {
			opts.Model = "llama3"
		}
		return newOllamaClient(opts), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q (supported: %s)", provider, strings.Join(SupportedProviders(), ", "))
	}
}

// SupportedProviders lists the known provider tags.
func SupportedProviders() []string {
	return []string{ProviderGroq, ProviderOpenAI, ProviderOllama}
}
