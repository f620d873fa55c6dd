// Package config loads settings from a YAML file and the environment.
// Environment variables override file values; every field has a usable
// default so the tool runs with no config file at all.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Provider   string                 `mapstructure:"provider"`
	Processing ProcessingConfig       `mapstructure:"processing"`
	Models     map[string]ModelConfig `mapstructure:"models"`
	Output     OutputConfig           `mapstructure:"output"`
	Server     ServerConfig           `mapstructure:"server"`

	// Credentials come from the environment only.
	GroqAPIKey   string `mapstructure:"GROQ_API_KEY"`
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
}

type ProcessingConfig struct {
	ChunkSize           int      `mapstructure:"chunk_size"`
	ChunkOverlap        int      `mapstructure:"chunk_overlap"`
	Separators          []string `mapstructure:"separators"`
	MetaSectionSize     int      `mapstructure:"meta_section_size"`
	CompressionMaxChars int      `mapstructure:"compression_max_chars"`
}

type ModelConfig struct {
	ModelName       string  `mapstructure:"model_name"`
	BaseURL         string  `mapstructure:"base_url"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxTokensMeta   int     `mapstructure:"max_tokens_meta"`
	MaxTokensGlobal int     `mapstructure:"max_tokens_global"`
}

type OutputConfig struct {
	Dir              string `mapstructure:"dir"`
	SaveIntermediate bool   `mapstructure:"save_intermediate"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	APIKey         string        `mapstructure:"api_key"`
	WorkerCount    int           `mapstructure:"worker_count"`
	MaxQueueSize   int           `mapstructure:"max_queue_size"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	JobTTL         time.Duration `mapstructure:"job_ttl"`
}

// Load reads configuration from configPath (optional) and the environment.
// A missing file is not an error; defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	// Environment variables override file values.
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("GROQ_API_KEY")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("server.api_key", "DOCSUM_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyFloors()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "groq")

	v.SetDefault("processing.chunk_size", 1800)
	v.SetDefault("processing.chunk_overlap", 250)
	v.SetDefault("processing.separators", []string{"\n\n", "\n", ".", " ", ""})
	v.SetDefault("processing.meta_section_size", 5)
	v.SetDefault("processing.compression_max_chars", 700)

	v.SetDefault("models.groq.model_name", "llama-3.3-70b-versatile")
	v.SetDefault("models.groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("models.groq.temperature", 0.3)
	v.SetDefault("models.groq.max_tokens_meta", 3500)
	v.SetDefault("models.groq.max_tokens_global", 1800)

	v.SetDefault("models.openai.model_name", "gpt-4o-mini")
	v.SetDefault("models.openai.temperature", 0.3)
	v.SetDefault("models.openai.max_tokens_meta", 3500)
	v.SetDefault("models.openai.max_tokens_global", 1800)

	v.SetDefault("models.ollama.model_name", "llama3")
	v.SetDefault("models.ollama.base_url", "http://localhost:11434")
	v.SetDefault("models.ollama.temperature", 0.3)
	v.SetDefault("models.ollama.max_tokens_meta", 3500)
	v.SetDefault("models.ollama.max_tokens_global", 1800)

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.save_intermediate", false)

	v.SetDefault("server.port", "8090")
	v.SetDefault("server.worker_count", 4)
	v.SetDefault("server.max_queue_size", 100)
	v.SetDefault("server.max_upload_bytes", int64(52428800)) // 50MB
	v.SetDefault("server.job_ttl", time.Hour)
}

func (c *Config) applyFloors() {
	if c.Processing.ChunkSize <= 0 {
		c.Processing.ChunkSize = 1800
	}
	if c.Processing.ChunkOverlap < 0 {
		c.Processing.ChunkOverlap = 0
	}
	if c.Processing.MetaSectionSize <= 0 {
		c.Processing.MetaSectionSize = 5
	}
	if c.Processing.CompressionMaxChars <= 0 {
		c.Processing.CompressionMaxChars = 700
	}
	if c.Server.WorkerCount <= 0 {
		c.Server.WorkerCount = 4
	}
	if c.Server.MaxQueueSize <= 0 {
		c.Server.MaxQueueSize = 100
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = 52428800
	}
	if c.Server.JobTTL <= 0 {
		c.Server.JobTTL = time.Hour
	}
}

// Model returns the model settings for the active provider.
func (c *Config) Model() ModelConfig {
	return c.Models[strings.ToLower(c.Provider)]
}

// APIKey returns the credential for the active provider, empty when the
// provider needs none.
func (c *Config) APIKey() string {
	switch strings.ToLower(c.Provider) {
	case "groq":
		return c.GroqAPIKey
	case "openai":
		return c.OpenAIAPIKey
	}
	return ""
}

// Validate checks that the active provider is usable.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case "groq":
		if c.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required for provider groq")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider openai")
		}
	case "ollama":
		// Local provider, no credentials.
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	if c.Processing.ChunkOverlap >= c.Processing.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Processing.ChunkOverlap, c.Processing.ChunkSize)
	}
	return nil
}
