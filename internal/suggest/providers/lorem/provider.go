// Package lorem implements a keyless suggestion provider that produces
// placeholder prose. It keeps the full pipeline exercisable in development
// environments without API credentials.
package lorem

import (
	"context"
	"strings"

	loremgen "github.com/bozaro/golorem"

	"inkflow/internal/suggest"
)

// Provider generates filler text locally.
type Provider struct {
	generator *loremgen.Lorem
}

// New creates a lorem provider.
func New() *Provider {
	return &Provider{generator: loremgen.New()}
}

// Name identifies this provider in logs and health output.
func (p *Provider) Name() string {
	return "lorem"
}

// Generate returns filler prose sized roughly to the request budget. Tone
// analysis prompts get a canned JSON report so strict parsing still works.
func (p *Provider) Generate(ctx context.Context, req *suggest.GenerateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if wantsJSON(req) {
		return `{"overall":"Conversational","confidence":0.5,"traits":[{"label":"Formality","value":40},{"label":"Emotion","value":50},{"label":"Clarity","value":60},{"label":"Creativity","value":50}],"suggestion":"Vary your sentence length to build rhythm."}`, nil
	}

	sentences := 2
	if req.MaxTokens > 100 || req.MaxTokens == 0 {
		sentences = 4
	}

	var sb strings.Builder
	for i := 0; i < sentences; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(p.generator.Sentence(5, 12))
	}

	return sb.String(), nil
}

func wantsJSON(req *suggest.GenerateRequest) bool {
	for _, msg := range req.Messages {
		if strings.Contains(msg.Text, "Return a JSON object") {
			return true
		}
	}
	return false
}
