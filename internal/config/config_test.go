package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "reviews-main", cfg.Store.IndexName)
	assert.Equal(t, 10, cfg.Answer.TopK)
	assert.Equal(t, []string{"chatgpt", "netflix", "spotify"}, cfg.Ingest.Sources)
	assert.Equal(t, 1000, cfg.Ingest.MaxDocuments)
	assert.True(t, cfg.Ingest.WeightLikes)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
store:
  index_name: reviews-test
answer:
  top_k: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "reviews-test", cfg.Store.IndexName)
	assert.Equal(t, 5, cfg.Answer.TopK)
	// Untouched sections keep their defaults.
	assert.Equal(t, "llama3", cfg.Oracle.Model)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7001")
	t.Setenv("REDIS_URL", "redis://example.com:6380")
	t.Setenv("REVIEWS_INDEX", "reviews-env")
	t.Setenv("ORACLE_MODEL", "llama3.1")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, "example.com:6380", cfg.Store.Addr)
	assert.Equal(t, "reviews-env", cfg.Store.IndexName)
	assert.Equal(t, "llama3.1", cfg.Oracle.Model)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty index", func(c *Config) { c.Store.IndexName = "" }},
		{"top_k too small", func(c *Config) { c.Answer.TopK = 0 }},
		{"top_k too large", func(c *Config) { c.Answer.TopK = 500 }},
		{"non-positive cap", func(c *Config) { c.Ingest.MaxDocuments = 0 }},
		{"no sources", func(c *Config) { c.Ingest.Sources = nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
