// Package config provides unified configuration loading for the reviews engine.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the reviews engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Store         StoreConfig         `yaml:"store"`
	Oracle        OracleConfig        `yaml:"oracle"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Answer        AnswerConfig        `yaml:"answer"`
	Ingest        IngestConfig        `yaml:"ingest"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// StoreConfig holds vector/full-text store settings.
type StoreConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	PoolSize   int    `yaml:"pool_size"`
	IndexName  string `yaml:"index_name"`
	SchemaPath string `yaml:"schema_path"`
}

// OracleConfig holds generative-text oracle settings.
type OracleConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// EmbeddingConfig holds embedding oracle settings.
type EmbeddingConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	Dimension int           `yaml:"dimension"`
	BatchSize int           `yaml:"batch_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

// AnswerConfig holds answering pipeline settings.
type AnswerConfig struct {
	TopK int `yaml:"top_k"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	DataRoot     string   `yaml:"data_root"`
	Sources      []string `yaml:"sources"`
	MaxDocuments int      `yaml:"max_documents"`
	WeightLikes  bool     `yaml:"weight_likes"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     5 * time.Minute,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Store: StoreConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   10,
			IndexName:  "reviews-main",
			SchemaPath: "redis_schema.yaml",
		},
		Oracle: OracleConfig{
			BaseURL: "http://localhost:11434/v1",
			Model:   "llama3",
			Timeout: 2 * time.Minute,
		},
		Embedding: EmbeddingConfig{
			BaseURL:   "http://localhost:11434/v1",
			Model:     "llama3",
			Dimension: 4096,
			BatchSize: 32,
			Timeout:   time.Minute,
		},
		Answer: AnswerConfig{
			TopK: 10,
		},
		Ingest: IngestConfig{
			DataRoot:     "data",
			Sources:      []string{"chatgpt", "netflix", "spotify"},
			MaxDocuments: 1000,
			WeightLikes:  true,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Store.IndexName == "" {
		return fmt.Errorf("store index name must not be empty")
	}

	if c.Answer.TopK < 1 || c.Answer.TopK > 100 {
		return fmt.Errorf("top_k must be between 1 and 100")
	}

	if c.Ingest.MaxDocuments < 1 {
		return fmt.Errorf("max_documents must be positive")
	}

	if len(c.Ingest.Sources) == 0 {
		return fmt.Errorf("at least one ingest source is required")
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Store.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("REVIEWS_INDEX"); v != "" {
		cfg.Store.IndexName = v
	}

	if v := os.Getenv("ORACLE_BASE_URL"); v != "" {
		cfg.Oracle.BaseURL = v
	}

	if v := os.Getenv("ORACLE_API_KEY"); v != "" {
		cfg.Oracle.APIKey = v
	}

	if v := os.Getenv("ORACLE_MODEL"); v != "" {
		cfg.Oracle.Model = v
	}

	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}

	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}

	if v := os.Getenv("DATA_ROOT"); v != "" {
		cfg.Ingest.DataRoot = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
