package ai

import (
	"context"
	"log/slog"
)

// Options selects which provider to construct. Gemini wins when both keys
// are present; with neither key the application runs rule-based only.
type Options struct {
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	MaxTokens       int64
}

// Resolve picks a Generator from the configured keys. A nil Generator with
// a nil error means no provider is configured; callers must handle that.
func Resolve(ctx context.Context, opts Options) (Generator, error) {
	logger := slog.Default().With("component", "ai")
	if opts.GeminiAPIKey != "" {
		g, err := NewGemini(ctx, opts.GeminiAPIKey, opts.GeminiModel)
		if err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "text generation enabled", "provider", g.Name(), "model", opts.GeminiModel)
		return g, nil
	}
	if opts.AnthropicAPIKey != "" {
		c := NewClaude(opts.AnthropicAPIKey, opts.AnthropicModel, opts.MaxTokens)
		logger.InfoContext(ctx, "text generation enabled", "provider", c.Name(), "model", opts.AnthropicModel)
		return c, nil
	}
	logger.InfoContext(ctx, "no text generation key configured, insights run rule-based")
	return nil, nil
}
