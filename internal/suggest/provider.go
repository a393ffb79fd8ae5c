package suggest

import (
	"context"

	"inkflow/internal/domain/models"
)

// GenerateRequest is one completion request to a text-generation provider.
// Prompt-level concerns (context windows, instructions) are the service's
// responsibility; providers only transport.
type GenerateRequest struct {
	System      string
	Messages    []models.ChatMessage
	MaxTokens   int
	Temperature *float64
}

// Provider is a text-generation backend. Implementations must be safe for
// concurrent use.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}

// Float returns a pointer to v, for optional request parameters.
func Float(v float64) *float64 {
	return &v
}
