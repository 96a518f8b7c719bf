package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for docrag.
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ChunkingConfig holds text splitting configuration (character counts).
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`    // "mistral", "openai", "mock"
	Model          string `yaml:"model"`       // e.g., "mistral-embed"
	APIKeyEnv      string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL        string `yaml:"base_url"`
	Dimension      int    `yaml:"dimension"`
	BatchSize      int    `yaml:"batch_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LLMConfig holds language model provider configuration.
type LLMConfig struct {
	Provider       string `yaml:"provider"` // "mistral", "mock"
	Model          string `yaml:"model"`    // e.g., "mistral-tiny"
	APIKeyEnv      string `yaml:"api_key_env"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// StorageConfig holds durable storage configuration.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// IngestConfig holds bulk ingestion configuration.
type IngestConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	Workers  int      `yaml:"workers"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 200,
		},
		Retrieve: RetrieveConfig{
			TopK: 4,
		},
		Embedding: EmbeddingConfig{
			Provider:       "mistral",
			Model:          "mistral-embed",
			APIKeyEnv:      "MISTRAL_API_KEY",
			Dimension:      1024,
			BatchSize:      32,
			TimeoutSeconds: 60,
		},
		LLM: LLMConfig{
			Provider:       "mistral",
			Model:          "mistral-tiny",
			APIKeyEnv:      "MISTRAL_API_KEY",
			TimeoutSeconds: 120,
		},
		Storage: StorageConfig{
			Path: ".docrag/docrag.db",
		},
		Server: ServerConfig{
			Addr:        ":8000",
			CORSOrigins: []string{"*"},
		},
		Ingest: IngestConfig{
			Includes: []string{"**/*.pdf"},
			Excludes: []string{"**/.git/**", "**/node_modules/**"},
			Workers:  4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks invariants the rest of the system depends on.
func (c *Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be in [0, size), got %d with size %d", c.Chunking.Overlap, c.Chunking.Size)
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("retrieve.top_k must be positive, got %d", c.Retrieve.TopK)
	}
	return nil
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DBPath returns the path to the database file, anchored at dir when the
// configured path is relative.
func (c *Config) DBPath(dir string) string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(dir, c.Storage.Path)
}

// EnsureDataDir ensures the directory holding the database exists.
func (c *Config) EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Dir(c.DBPath(dir)), 0755)
}
