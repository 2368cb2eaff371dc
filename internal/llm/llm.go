package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers for writing assistance.
type Client interface {
	Generate(ctx context.Context, systemInstruction, prompt string, cfg GenerationConfig) (string, error)
}

// GenerationConfig carries provider sampling parameters. Zero values are
// omitted from the provider request.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM not configured")

// PlaceholderClient is a stub implementation used when no provider key is set.
type PlaceholderClient struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderClient) Generate(ctx context.Context, systemInstruction, prompt string, cfg GenerationConfig) (string, error) {
	_ = ctx
	_ = systemInstruction
	_ = prompt
	_ = cfg
	return "", ErrNotConfigured
}
