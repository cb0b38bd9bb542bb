// Package file provides the TOML-backed application configuration.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/quaystone-labs/ragkit/internal/core/domain"
)

// DefaultDailyTokenLimit is the daily generation quota in tokens.
const DefaultDailyTokenLimit = 2_000_000

// AppConfig is the full application configuration, stored as TOML at
// ~/.ragkit/config.toml. Every field has a working default so a missing
// file is not an error.
type AppConfig struct {
	Generation GenerationConfig `toml:"generation"`
	Retrieval  RetrievalConfig  `toml:"retrieval"`
	Storage    StorageConfig    `toml:"storage"`
	Usage      UsageConfig      `toml:"usage"`
}

// GenerationConfig configures the chat completion provider.
type GenerationConfig struct {
	// APIKey authenticates against the provider. The DEEPSEEK_API_KEY
	// environment variable overrides it.
	APIKey string `toml:"api_key"`

	// BaseURL is the OpenAI-compatible API root.
	BaseURL string `toml:"base_url"`

	// Model is the chat model identifier.
	Model string `toml:"model"`

	// TimeoutSeconds bounds a single generation call.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// RequestsPerMinute caps the request rate.
	RequestsPerMinute int `toml:"requests_per_minute"`

	// Stream requests streamed completions from the provider. Answers
	// are still returned whole; streaming mainly avoids idle-connection
	// timeouts on long generations.
	Stream bool `toml:"stream"`
}

// RetrievalConfig mirrors the runtime-tunable retrieval parameters.
type RetrievalConfig struct {
	TopK                int     `toml:"top_k"`
	Temperature         float64 `toml:"temperature"`
	MaxTokens           int     `toml:"max_tokens"`
	ChunkSize           int     `toml:"chunk_size"`
	ChunkOverlap        int     `toml:"chunk_overlap"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// StorageConfig configures where state lives on disk.
type StorageConfig struct {
	// DataDir holds the metadata database, index snapshot and ledger.
	DataDir string `toml:"data_dir"`

	// MaxFileSizeBytes rejects larger files at ingest.
	MaxFileSizeBytes int64 `toml:"max_file_size_bytes"`
}

// UsageConfig configures the token ledger.
type UsageConfig struct {
	// DailyTokenLimit is the advisory daily quota.
	DailyTokenLimit int64 `toml:"daily_token_limit"`
}

// DefaultAppConfig returns the configuration defaults.
func DefaultAppConfig() AppConfig {
	rag := domain.DefaultRAGConfig()
	return AppConfig{
		Generation: GenerationConfig{
			BaseURL:           "https://api.deepseek.com/v1",
			Model:             "deepseek-chat",
			TimeoutSeconds:    120,
			RequestsPerMinute: 60,
		},
		Retrieval: RetrievalConfig{
			TopK:                rag.TopK,
			Temperature:         rag.Temperature,
			MaxTokens:           rag.MaxTokens,
			ChunkSize:           rag.ChunkSize,
			ChunkOverlap:        rag.ChunkOverlap,
			SimilarityThreshold: rag.SimilarityThreshold,
		},
		Storage: StorageConfig{
			MaxFileSizeBytes: 50 * 1024 * 1024,
		},
		Usage: UsageConfig{
			DailyTokenLimit: DefaultDailyTokenLimit,
		},
	}
}

// RAGConfig converts the retrieval section to the domain type.
func (c AppConfig) RAGConfig() domain.RAGConfig {
	return domain.RAGConfig{
		TopK:                c.Retrieval.TopK,
		Temperature:         c.Retrieval.Temperature,
		MaxTokens:           c.Retrieval.MaxTokens,
		ChunkSize:           c.Retrieval.ChunkSize,
		ChunkOverlap:        c.Retrieval.ChunkOverlap,
		SimilarityThreshold: c.Retrieval.SimilarityThreshold,
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ragkit", "config.toml"), nil
}

// Load reads the configuration at path, filling unset fields with
// defaults. A missing file yields the defaults. The DEEPSEEK_API_KEY
// environment variable overrides the stored API key.
func Load(path string) (AppConfig, error) {
	cfg := DefaultAppConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return AppConfig{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" {
		cfg.Generation.APIKey = key
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
