package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"OLLAMA_URL", "OLLAMA_MODEL", "OLLAMA_PULL_TIMEOUT", "OLLAMA_TIMEOUT",
	"HTTP_PORT", "LISTEN_ADDR", "LOG_LEVEL", "LOG_FORMAT", "MAX_CHUNK_SIZE",
	"EXPLAIN_WORKERS", "MAX_INPUT_BYTES", "PROMPT_TEMPLATE", "ALLOWED_ORIGINS",
	"METRICS_ENABLED", "SHUTDOWN_TIMEOUT", "OLLAMA_INSECURE_SKIP_VERIFY",
}

// clearEnv blanks every variable Load reads; empty values count as unset.
func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL)
	assert.Equal(t, "codellama", cfg.OllamaModel)
	assert.Equal(t, 60*time.Second, cfg.PullTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, 2000, cfg.MaxChunkSize)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 1<<20, cfg.MaxInputBytes)
	assert.True(t, cfg.MetricsEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLLAMA_URL", "http://ollama:11434")
	t.Setenv("OLLAMA_MODEL", "llama3")
	t.Setenv("OLLAMA_TIMEOUT", "45s")
	t.Setenv("OLLAMA_PULL_TIMEOUT", "not-a-duration")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("EXPLAIN_WORKERS", "4")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("OLLAMA_INSECURE_SKIP_VERIFY", "true")

	cfg := Load()
	assert.Equal(t, "http://ollama:11434", cfg.OllamaURL)
	assert.Equal(t, "llama3", cfg.OllamaModel)
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, DefaultPullTimeout, cfg.PullTimeout)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.False(t, cfg.MetricsEnabled)
	assert.True(t, cfg.OllamaInsecure)
}

func TestLoad_ListenAddrWinsOverPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LISTEN_ADDR", "127.0.0.1:8080")

	assert.Equal(t, "127.0.0.1:8080", Load().ListenAddr)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ollama_model: sqlcoder
generate_timeout: 2m
max_chunk_size: 500
workers: 3
allowed_origins:
  - http://localhost:3000
prompt_template: "Explain: {{.SQL}}"
`), 0o600))
	t.Setenv("OLLAMA_MODEL", "codellama:13b")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "codellama:13b", cfg.OllamaModel, "environment overrides the file")
	assert.Equal(t, 2*time.Minute, cfg.HTTPTimeout)
	assert.Equal(t, 500, cfg.MaxChunkSize)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "Explain: {{.SQL}}", cfg.PromptTemplate)
	assert.Equal(t, DefaultPullTimeout, cfg.PullTimeout)
}

func TestLoadFile_NoPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLLAMA_MODEL", "llama3")

	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "llama3", cfg.OllamaModel)
	assert.Equal(t, Default().ListenAddr, cfg.ListenAddr)
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("ollama_modle: x\n"), 0o600))
	_, err = LoadFile(unknown)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	cfg, err := LoadFile(empty)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.OllamaURL = "localhost:11434" }},
		{"empty model", func(c *Config) { c.OllamaModel = " " }},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"zero chunk size", func(c *Config) { c.MaxChunkSize = 0 }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"no input", func(c *Config) { c.MaxInputBytes = -1 }},
		{"zero shutdown", func(c *Config) { c.ShutdownTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
