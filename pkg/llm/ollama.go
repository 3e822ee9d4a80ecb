package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"sql-explainer/pkg/errors"
	"sql-explainer/pkg/metrics"
)

const (
	DefaultPullTimeout     = 60 * time.Second
	DefaultGenerateTimeout = 30 * time.Second

	maxResponseBytes = 8 << 20
	maxErrorBody     = 512
)

// OllamaClient talks to an Ollama server over its REST API.
type OllamaClient struct {
	baseURL         *url.URL
	model           string
	httpClient      *http.Client
	pullTimeout     time.Duration
	generateTimeout time.Duration
	logger          *zap.Logger
	metrics         metrics.Collector
}

// Option configures an OllamaClient.
type Option func(*OllamaClient)

// WithTimeouts sets the pull and generate deadlines. Non-positive values keep
// the defaults.
func WithTimeouts(pull, generate time.Duration) Option {
	return func(c *OllamaClient) {
		if pull > 0 {
			c.pullTimeout = pull
		}
		if generate > 0 {
			c.generateTimeout = generate
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *OllamaClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector metrics.Collector) Option {
	return func(c *OllamaClient) {
		if collector != nil {
			c.metrics = collector
		}
	}
}

// NewOllamaClient creates a client for the server at baseURL.
func NewOllamaClient(baseURL, model string, httpClient *http.Client, opts ...Option) (*OllamaClient, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid ollama url %q: scheme and host are required", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := &OllamaClient{
		baseURL:         parsedURL,
		model:           model,
		httpClient:      httpClient,
		pullTimeout:     DefaultPullTimeout,
		generateTimeout: DefaultGenerateTimeout,
		logger:          zap.NewNop(),
		metrics:         metrics.NewNoOpCollector(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "ollama"), zap.String("model", model))
	return c, nil
}

// EnsureModelLoaded issues a non-streaming pull for the model. Only HTTP 200
// counts as success; every failure is logged and reported as false.
func (c *OllamaClient) EnsureModelLoaded(ctx context.Context) bool {
	timer := c.metrics.StartTimer(metrics.InferenceDuration)
	ctx, cancel := context.WithTimeout(ctx, c.pullTimeout)
	defer cancel()

	outcome := "success"
	defer func() {
		c.metrics.IncrementCounter(metrics.InferenceRequestsTotal, "operation", "pull", "outcome", outcome)
		c.metrics.RecordHistogram(metrics.InferenceDuration, timer.Stop(), "operation", "pull")
	}()

	resp, err := c.post(ctx, "/api/pull", &api.PullRequest{
		Name:   c.model,
		Model:  c.model,
		Stream: ptrBool(false),
	})
	if err != nil {
		outcome = errors.GetCode(classify(ctx, err))
		c.logger.Warn("model pull failed", zap.String("code", outcome), zap.Error(err))
		c.metrics.RecordGauge(metrics.ModelAvailable, 0, "model", c.model)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	c.logger.Debug("model pull response", zap.Int("status", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		outcome = errors.CodeProtocol
		c.logger.Warn("model pull rejected", zap.Int("status", resp.StatusCode))
		c.metrics.RecordGauge(metrics.ModelAvailable, 0, "model", c.model)
		return false
	}
	c.metrics.RecordGauge(metrics.ModelAvailable, 1, "model", c.model)
	return true
}

// RequestExplanation posts prompt to /api/generate without streaming.
func (c *OllamaClient) RequestExplanation(ctx context.Context, prompt string) (string, error) {
	timer := c.metrics.StartTimer(metrics.InferenceDuration)
	text, err := c.generate(ctx, prompt)

	outcome := "success"
	if err != nil {
		outcome = errors.GetCode(err)
	}
	c.metrics.IncrementCounter(metrics.InferenceRequestsTotal, "operation", "generate", "outcome", outcome)
	c.metrics.RecordHistogram(metrics.InferenceDuration, timer.Stop(), "operation", "generate")
	return text, err
}

func (c *OllamaClient) generate(parent context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(parent, c.generateTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.post(ctx, "/api/generate", &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: ptrBool(false),
	})
	if err != nil {
		return "", classify(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", classify(ctx, err)
	}

	c.logger.Debug("generate response", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))
	if resp.StatusCode != http.StatusOK {
		return "", errors.Protocol(resp.StatusCode, truncate(body, maxErrorBody))
	}

	var probe struct {
		Response *string `json:"response"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return "", errors.Wrap(err, errors.CodeMalformedResponse, errors.ErrMalformedResponse.Message)
	}
	if probe.Response == nil {
		return "", errors.New(errors.CodeMalformedResponse, errors.ErrMalformedResponse.Message)
	}

	var meta api.GenerateResponse
	if err := json.Unmarshal(body, &meta); err == nil {
		c.logger.Debug("generate complete",
			zap.Int("prompt_tokens", meta.PromptEvalCount),
			zap.Int("eval_tokens", meta.EvalCount),
			zap.Duration("total_duration", meta.TotalDuration),
		)
	}
	return *probe.Response, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.JoinPath(path).String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// classify maps a failed round trip on ctx to an error kind. A canceled
// caller wins over an elapsed deadline.
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return errors.Wrap(err, errors.CodeCanceled, errors.ErrCanceled.Message)
	case ctx.Err() != nil, errors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(err, errors.CodeTimeout, errors.ErrTimeout.Message)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(err, errors.CodeTimeout, errors.ErrTimeout.Message)
	}
	return errors.Wrap(err, errors.CodeTransport, errors.ErrTransport.Message)
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}

func ptrBool(b bool) *bool {
	return &b
}
