package main

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sql-explainer/internal/server"
	"sql-explainer/pkg/config"
	"sql-explainer/pkg/explain"
	"sql-explainer/pkg/llm"
	"sql-explainer/pkg/logging"
	"sql-explainer/pkg/metrics"
	"sql-explainer/pkg/security"
	"sql-explainer/pkg/validation"
)

// app is the wired set of components shared by the commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	prom      *metrics.PrometheusCollector
	explainer *explain.Explainer
	validator *validation.Validator
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	var collector metrics.Collector = metrics.NewNoOpCollector()
	var prom *metrics.PrometheusCollector
	if cfg.MetricsEnabled {
		prom = metrics.NewPrometheusCollector()
		collector = prom
	}

	timeout := cfg.HTTPTimeout
	if cfg.PullTimeout > timeout {
		timeout = cfg.PullTimeout
	}
	client, err := llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel,
		security.InferenceHTTPClient(timeout, cfg.OllamaInsecure),
		llm.WithTimeouts(cfg.PullTimeout, cfg.HTTPTimeout),
		llm.WithLogger(logger),
		llm.WithMetrics(collector),
	)
	if err != nil {
		return nil, err
	}

	prompts, err := llm.NewPromptBuilder(cfg.PromptTemplate)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		prom:   prom,
		explainer: explain.New(client, prompts, explain.Options{
			MaxChunkSize: cfg.MaxChunkSize,
			Workers:      cfg.Workers,
		}, logger, collector),
		validator: validation.NewValidator(cfg.MaxInputBytes),
	}, nil
}

func (a *app) mcpServer() *mcpserver.MCPServer {
	return server.NewMCPServer(a.explainer, a.validator, a.logger, version)
}

// loadConfig applies, in order: defaults, the --config file, the
// environment, then flags given on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	if flags.Changed("ollama-url") {
		cfg.OllamaURL, _ = flags.GetString("ollama-url")
	}
	if flags.Changed("model") {
		cfg.OllamaModel, _ = flags.GetString("model")
	}
	if flags.Changed("listen") {
		cfg.ListenAddr, _ = flags.GetString("listen")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("max-chunk-size") {
		cfg.MaxChunkSize, _ = flags.GetInt("max-chunk-size")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
