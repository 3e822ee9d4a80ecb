// Package explain drives an explanation run: make sure the model is loaded,
// normalize and chunk the SQL, explain every chunk and join the results.
package explain

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sql-explainer/pkg/chunker"
	"sql-explainer/pkg/errors"
	"sql-explainer/pkg/llm"
	"sql-explainer/pkg/metrics"
	"sql-explainer/pkg/models"
	"sql-explainer/pkg/sqlformat"
)

// Options configures an Explainer.
type Options struct {
	// MaxChunkSize bounds chunk length in runes; <= 0 uses the chunker default.
	MaxChunkSize int
	// Workers is the number of concurrent chunk requests; <= 1 is sequential.
	Workers int
}

// Explainer is safe for concurrent use; every Explain call owns its own state.
type Explainer struct {
	client  llm.Client
	prompts *llm.PromptBuilder
	opts    Options
	logger  *zap.Logger
	metrics metrics.Collector
}

// New creates an Explainer. A nil logger or collector disables that concern.
func New(client llm.Client, prompts *llm.PromptBuilder, opts Options, logger *zap.Logger, collector metrics.Collector) *Explainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.NewNoOpCollector()
	}
	return &Explainer{
		client:  client,
		prompts: prompts,
		opts:    opts,
		logger:  logger.With(zap.String("component", "explainer")),
		metrics: collector,
	}
}

// result of one chunk request
type result struct {
	text string
	err  error
}

// Explain returns the explanation of raw. It fails with MODEL_UNAVAILABLE when
// the model cannot be loaded, NO_EXPLANATION_GENERATED when every chunk
// failed, and CANCELED when ctx ends first.
func (e *Explainer) Explain(ctx context.Context, raw string) (*models.Explanation, error) {
	timer := e.metrics.StartTimer(metrics.ExplainDuration)
	exp, err := e.explain(ctx, raw)

	outcome := "success"
	switch {
	case err != nil:
		outcome = strings.ToLower(errors.GetCode(err))
	case exp.Partial():
		outcome = "partial"
	}
	e.metrics.IncrementCounter(metrics.ExplanationsTotal, "outcome", outcome)
	e.metrics.RecordHistogram(metrics.ExplainDuration, timer.Stop())
	return exp, err
}

func (e *Explainer) explain(ctx context.Context, raw string) (*models.Explanation, error) {
	if !e.client.EnsureModelLoaded(ctx) {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.CodeCanceled, errors.ErrCanceled.Message)
		}
		e.logger.Warn("model unavailable")
		return nil, errors.ErrModelUnavailable
	}

	chunks := chunker.Split(sqlformat.Normalize(raw), e.opts.MaxChunkSize)
	e.logger.Debug("dispatching chunks", zap.Int("chunks", len(chunks)), zap.Int("workers", e.opts.Workers))

	results := make([]result, len(chunks))
	if e.opts.Workers > 1 && len(chunks) > 1 {
		e.dispatchConcurrent(ctx, chunks, results)
	} else {
		e.dispatchSequential(ctx, chunks, results)
	}
	if ctx.Err() != nil {
		return nil, errors.Wrap(ctx.Err(), errors.CodeCanceled, errors.ErrCanceled.Message)
	}

	exp := &models.Explanation{Chunks: len(chunks)}
	for i, r := range results {
		if r.err != nil {
			exp.Skipped = append(exp.Skipped, i)
			continue
		}
		exp.Parts = append(exp.Parts, r.text)
	}
	if len(exp.Parts) == 0 {
		return nil, errors.ErrNoExplanationGenerated
	}
	exp.Text = strings.Join(exp.Parts, "\n")
	return exp, nil
}

func (e *Explainer) dispatchSequential(ctx context.Context, chunks []models.Chunk, results []result) {
	for i, c := range chunks {
		if ctx.Err() != nil {
			return
		}
		results[i] = e.explainChunk(ctx, c, len(chunks))
	}
}

// dispatchConcurrent writes each chunk's result into its own slot so the
// aggregate keeps chunk order whatever the completion order.
func (e *Explainer) dispatchConcurrent(ctx context.Context, chunks []models.Chunk, results []result) {
	var g errgroup.Group
	g.SetLimit(e.opts.Workers)
	for i, c := range chunks {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = result{err: ctx.Err()}
				return nil
			}
			results[i] = e.explainChunk(ctx, c, len(chunks))
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Explainer) explainChunk(ctx context.Context, c models.Chunk, total int) result {
	log := e.logger.With(zap.Int("chunk", c.Index), zap.Int("chunks", total))

	prompt, err := e.prompts.Build(c.Text, c.Index+1, total)
	if err != nil {
		log.Error("prompt rendering failed", zap.Error(err))
		e.metrics.IncrementCounter(metrics.ChunksTotal, "outcome", "failure")
		return result{err: err}
	}

	text, err := e.client.RequestExplanation(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New(errors.CodeMalformedResponse, "empty explanation")
	}
	if err != nil {
		fields := []zap.Field{zap.String("code", errors.GetCode(err)), zap.Error(err)}
		var appErr *errors.Error
		if errors.As(err, &appErr) && appErr.StatusCode != 0 {
			fields = append(fields, zap.Int("status", appErr.StatusCode))
		}
		log.Warn("chunk skipped", fields...)
		e.metrics.IncrementCounter(metrics.ChunksTotal, "outcome", "failure")
		return result{err: err}
	}

	log.Debug("chunk explained", zap.Int("length", len(text)))
	e.metrics.IncrementCounter(metrics.ChunksTotal, "outcome", "success")
	return result{text: text}
}
