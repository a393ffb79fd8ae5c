// Package anthropic implements the suggestion provider backed by the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"inkflow/internal/domain/models"
	"inkflow/internal/suggest"
)

const defaultModel = "claude-3-5-haiku-latest"

// Provider generates text with the Anthropic API.
type Provider struct {
	client sdk.Client
	model  string
	logger *slog.Logger
}

// New creates an Anthropic provider. An empty model selects the default
// fast model.
func New(apiKey, model string, logger *slog.Logger) *Provider {
	if model == "" {
		model = defaultModel
	}
	return &Provider{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}
}

// Name identifies this provider in logs and health output.
func (p *Provider) Name() string {
	return "anthropic"
}

// Generate sends one completion request and returns the concatenated text
// content of the response.
func (p *Provider) Generate(ctx context.Context, req *suggest.GenerateRequest) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		Messages:  convertMessages(req.Messages),
		MaxTokens: int64(req.MaxTokens),
	}
	if params.MaxTokens == 0 {
		params.MaxTokens = 1024
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{
			{Type: "text", Text: req.System},
		}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}

	var sb strings.Builder
	for _, content := range resp.Content {
		switch content.Type {
		case "text":
			sb.WriteString(content.Text)
		default:
			p.logger.Debug("skipping non-text content block", "type", content.Type)
		}
	}

	return sb.String(), nil
}

// convertMessages maps chat turns onto the SDK's message params. Assistant
// turns map to the assistant role; everything else is treated as user input.
func convertMessages(messages []models.ChatMessage) []sdk.MessageParam {
	out := make([]sdk.MessageParam, 0, len(messages))
	for _, msg := range messages {
		block := sdk.NewTextBlock(msg.Text)
		if msg.Role == models.RoleAssistant {
			out = append(out, sdk.NewAssistantMessage(block))
		} else {
			out = append(out, sdk.NewUserMessage(block))
		}
	}
	return out
}
