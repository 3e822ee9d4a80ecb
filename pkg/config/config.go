package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "codellama"

	// DefaultPullTimeout bounds the model pull issued before every run.
	DefaultPullTimeout = 60 * time.Second

	// DefaultHTTPTimeout bounds a single generate request.
	DefaultHTTPTimeout = 30 * time.Second

	DefaultListenAddr      = ":8000"
	DefaultMaxChunkSize    = 2000
	DefaultWorkers         = 1
	DefaultMaxInputBytes   = 1 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds application configuration
type Config struct {
	OllamaURL       string        `yaml:"ollama_url"`
	OllamaModel     string        `yaml:"ollama_model"`
	OllamaInsecure  bool          `yaml:"ollama_insecure_skip_verify"`
	PullTimeout     time.Duration `yaml:"pull_timeout"`
	HTTPTimeout     time.Duration `yaml:"generate_timeout"`
	ListenAddr      string        `yaml:"listen_addr"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	MaxChunkSize    int           `yaml:"max_chunk_size"`
	Workers         int           `yaml:"workers"`
	MaxInputBytes   int           `yaml:"max_input_bytes"`
	PromptTemplate  string        `yaml:"prompt_template"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OllamaURL:       DefaultOllamaURL,
		OllamaModel:     DefaultOllamaModel,
		PullTimeout:     DefaultPullTimeout,
		HTTPTimeout:     DefaultHTTPTimeout,
		ListenAddr:      DefaultListenAddr,
		LogLevel:        "info",
		LogFormat:       "json",
		MaxChunkSize:    DefaultMaxChunkSize,
		Workers:         DefaultWorkers,
		MaxInputBytes:   DefaultMaxInputBytes,
		MetricsEnabled:  true,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// LoadFile overlays the YAML file at path on the defaults, then applies the
// environment. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load(), nil
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.OllamaURL = getEnv("OLLAMA_URL", c.OllamaURL)
	c.OllamaModel = getEnv("OLLAMA_MODEL", c.OllamaModel)
	c.OllamaInsecure = getEnvBool("OLLAMA_INSECURE_SKIP_VERIFY", c.OllamaInsecure)
	c.PullTimeout = getEnvDuration("OLLAMA_PULL_TIMEOUT", c.PullTimeout)
	c.HTTPTimeout = getEnvDuration("OLLAMA_TIMEOUT", c.HTTPTimeout)
	if port := os.Getenv("HTTP_PORT"); port != "" {
		c.ListenAddr = ":" + port
	}
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.MaxChunkSize = getEnvInt("MAX_CHUNK_SIZE", c.MaxChunkSize)
	c.Workers = getEnvInt("EXPLAIN_WORKERS", c.Workers)
	c.MaxInputBytes = getEnvInt("MAX_INPUT_BYTES", c.MaxInputBytes)
	c.PromptTemplate = getEnv("PROMPT_TEMPLATE", c.PromptTemplate)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.OllamaURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("ollama_url %q must be an absolute URL", c.OllamaURL)
	}
	if strings.TrimSpace(c.OllamaModel) == "" {
		return fmt.Errorf("ollama_model is required")
	}
	if c.PullTimeout <= 0 || c.HTTPTimeout <= 0 {
		return fmt.Errorf("pull_timeout and generate_timeout must be positive")
	}
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("max_chunk_size must be positive, got %d", c.MaxChunkSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxInputBytes <= 0 {
		return fmt.Errorf("max_input_bytes must be positive, got %d", c.MaxInputBytes)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration variable; unparsable values keep the default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
