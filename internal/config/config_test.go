package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, 5334, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 2, cfg.Pipeline.MaxRounds)
	assert.Equal(t, 3, cfg.Pipeline.DefaultCount)
	assert.Equal(t, "1h", cfg.Scheduler.CheckInterval)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{Pipeline: PipelineConfig{MaxRounds: 4}, Database: DatabaseConfig{Type: "sqlite"}}
	ApplyDefaults(cfg)

	assert.Equal(t, 4, cfg.Pipeline.MaxRounds)
	assert.Equal(t, "sqlite", cfg.Database.Type)
}

func TestApplyDefaultsClampsNegativeRetries(t *testing.T) {
	cfg := &Config{LLM: LLMConfig{MaxRetries: -1}}
	ApplyDefaults(cfg)

	assert.Equal(t, 0, cfg.LLM.MaxRetries)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	body := "server:\n  port: 8080\ndatabase:\n  type: sqlite\n  path: \":memory:\"\nllm:\n  provider: anthropic\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "localhost", cfg.Server.Host)
}
