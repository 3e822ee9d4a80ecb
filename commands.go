package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sql-explainer/internal/server"
	"sql-explainer/pkg/sqlformat"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sql-explainer",
		Short: "Explain SQL in plain language with a local LLM",
		Long: `sql-explainer normalizes SQL, splits long scripts into chunks and asks an
Ollama-hosted model to explain each chunk.

Run without a subcommand to start the HTTP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file path (YAML)")
	flags.String("ollama-url", "", "Ollama base URL")
	flags.String("model", "", "model name")
	flags.String("listen", "", "HTTP listen address")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Int("workers", 0, "concurrent chunk requests")
	flags.Int("max-chunk-size", 0, "maximum chunk size in runes")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			Long: `Start the HTTP server with the web form, /explain, /health, /metrics and /mcp.

Example:
  sql-explainer serve --config ./config.yaml
  sql-explainer serve --listen :8080 --model sqlcoder`,
			Args: cobra.NoArgs,
			RunE: runServe,
		},
		&cobra.Command{
			Use:   "explain [file]",
			Short: "Explain SQL from a file or stdin",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runExplain,
		},
		&cobra.Command{
			Use:   "format [file]",
			Short: "Print normalized SQL from a file or stdin",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runFormat,
		},
		&cobra.Command{
			Use:   "mcp",
			Short: "Serve the MCP tools over stdio",
			Args:  cobra.NoArgs,
			RunE:  runMCP,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "SQL Explainer\n")
				fmt.Fprintf(out, "Version:    %s\n", version)
				fmt.Fprintf(out, "Commit:     %s\n", commit)
				fmt.Fprintf(out, "Build Date: %s\n", buildDate)
			},
		},
	)
	return root
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	mcpHTTP := server.NewMCPHandler(a.mcpServer())
	opts := server.Options{
		Explainer:      a.explainer,
		Validator:      a.validator,
		Logger:         a.logger,
		MCPHandler:     mcpHTTP,
		AllowedOrigins: a.cfg.AllowedOrigins,
		MaxInputBytes:  a.cfg.MaxInputBytes,
	}
	if a.prom != nil {
		opts.Metrics = a.prom
		opts.MetricsHandler = a.prom.Handler()
	}

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           server.NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("ollama_url", a.cfg.OllamaURL),
			zap.String("model", a.cfg.OllamaModel),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := mcpHTTP.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("mcp shutdown", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	a.logger.Info("server exited")
	return nil
}

func runExplain(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	sql, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	if err := a.validator.Validate(sql); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exp, err := a.explainer.Explain(ctx, sql)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), exp.Text)
	if exp.Partial() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d of %d chunks could not be explained\n", len(exp.Skipped), exp.Chunks)
	}
	return nil
}

func runFormat(cmd *cobra.Command, args []string) error {
	sql, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), sqlformat.Normalize(sql))
	return nil
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	a.logger.Info("serving MCP over stdio", zap.String("model", a.cfg.OllamaModel))
	return mcpserver.ServeStdio(a.mcpServer())
}

// readInput returns the contents of the file named by args[0], or stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
