// Package ai holds the optional text-generation collaborators. The rest of
// the application only sees the Generator interface; which provider backs
// it (or none at all) is decided once at process start from configuration.
package ai

import "context"

// Generator produces text for a prompt. Implementations call external
// services; callers must treat every error as a signal to degrade to
// rule-based output, never as a request failure.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}
