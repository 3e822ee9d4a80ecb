package llm

import (
	"context"
)

// Client is the inference endpoint as seen by the explainer.
type Client interface {
	// EnsureModelLoaded asks the endpoint to make the model available and
	// reports whether it succeeded. It never returns an error.
	EnsureModelLoaded(ctx context.Context) bool

	// RequestExplanation sends a single prompt and returns the generated
	// text. Failures are *errors.Error values.
	RequestExplanation(ctx context.Context, prompt string) (string, error)
}

var _ Client = (*OllamaClient)(nil)
