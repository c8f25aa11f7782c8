package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

// ErrEmptyCompletion reports a provider call that succeeded but returned
// no usable text.
var ErrEmptyCompletion = errors.New("provider returned no text")

// Gemini generates text through the Google Generative Language API.
type Gemini struct {
	svc   *generativelanguage.Service
	model string
}

// NewGemini builds a Gemini generator. model is the bare model name, for
// example "gemini-2.5-flash".
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	svc, err := generativelanguage.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create generativelanguage service: %w", err)
	}
	return &Gemini{svc: svc, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
	}
	resp, err := g.svc.Models.GenerateContent("models/"+g.model, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", ErrEmptyCompletion
}
