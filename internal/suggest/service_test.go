package suggest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"inkflow/internal/domain"
	"inkflow/internal/domain/models"
)

// fakeProvider records the last request and returns a scripted response.
type fakeProvider struct {
	last     *GenerateRequest
	response string
	err      error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, req *GenerateRequest) (string, error) {
	f.last = req
	return f.response, f.err
}

func newTestService(response string, err error) (*Service, *fakeProvider) {
	fake := &fakeProvider{response: response, err: err}
	return NewService(fake, slog.Default()), fake
}

func TestCompleteFromEndTruncatesTail(t *testing.T) {
	svc, fake := newTestService("  and the story begins.  ", nil)

	long := strings.Repeat("a", 900) + strings.Repeat("b", 900)
	out, err := svc.CompleteFromEnd(context.Background(), "Draft", long)
	if err != nil {
		t.Fatalf("CompleteFromEnd: %v", err)
	}
	if out != "and the story begins." {
		t.Errorf("got %q, want trimmed suggestion", out)
	}

	prompt := fake.last.Messages[0].Text
	if strings.Contains(prompt, strings.Repeat("a", 200)) {
		t.Error("prompt should not contain text beyond the tail window")
	}
	if !strings.Contains(prompt, strings.Repeat("b", 900)) {
		t.Error("prompt should contain the document tail")
	}
	if fake.last.MaxTokens != 60 {
		t.Errorf("MaxTokens = %d, want 60", fake.last.MaxTokens)
	}
	if fake.last.Temperature == nil || *fake.last.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", fake.last.Temperature)
	}
}

func TestCompleteFromCursorWindows(t *testing.T) {
	svc, fake := newTestService("bridge text", nil)

	before := strings.Repeat("x", 1200)
	after := strings.Repeat("y", 600)
	if _, err := svc.CompleteFromCursor(context.Background(), "Draft", before, after); err != nil {
		t.Fatalf("CompleteFromCursor: %v", err)
	}

	prompt := fake.last.Messages[0].Text
	if strings.Contains(prompt, strings.Repeat("x", 801)) {
		t.Error("before-cursor text should be capped at 800 characters")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 800)) {
		t.Error("prompt should contain the 800-character tail before the cursor")
	}
	if strings.Contains(prompt, strings.Repeat("y", 401)) {
		t.Error("after-cursor text should be capped at 400 characters")
	}
	if fake.last.MaxTokens != 80 {
		t.Errorf("MaxTokens = %d, want 80", fake.last.MaxTokens)
	}
}

func TestRewriteSelection(t *testing.T) {
	svc, fake := newTestService("A sharper sentence.", nil)

	out, err := svc.RewriteSelection(context.Background(), "a blunt sentence", "make it sharper", strings.Repeat("c", 800))
	if err != nil {
		t.Fatalf("RewriteSelection: %v", err)
	}
	if out != "A sharper sentence." {
		t.Errorf("got %q", out)
	}

	prompt := fake.last.Messages[0].Text
	if !strings.Contains(prompt, "a blunt sentence") {
		t.Error("prompt should contain the selection")
	}
	if !strings.Contains(prompt, "make it sharper") {
		t.Error("prompt should contain the instruction")
	}
	if strings.Contains(prompt, strings.Repeat("c", 501)) {
		t.Error("context sample should be capped at 500 characters")
	}
	if fake.last.Temperature != nil {
		t.Error("rewrite should not pin a temperature")
	}
}

func TestChatBuildsHistory(t *testing.T) {
	svc, fake := newTestService("Here is an idea.", nil)

	history := []models.ChatMessage{
		{Role: models.RoleAssistant, Text: "Hello!"},
		{Role: models.RoleUser, Text: "Help me outline."},
		{Role: models.RoleAssistant, Text: "Sure."},
	}
	doc := models.DocumentContext{Title: "Essay", Content: strings.Repeat("d", 6000)}

	out, err := svc.Chat(context.Background(), history, "What next?", doc)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "Here is an idea." {
		t.Errorf("got %q", out)
	}

	if len(fake.last.Messages) != 4 {
		t.Fatalf("got %d messages, want history plus new turn", len(fake.last.Messages))
	}
	final := fake.last.Messages[3]
	if final.Role != models.RoleUser || final.Text != "What next?" {
		t.Errorf("final turn = %+v, want the new user message", final)
	}
	if !strings.Contains(fake.last.System, `Title: "Essay"`) {
		t.Error("system prompt should include the document title")
	}
	if strings.Contains(fake.last.System, strings.Repeat("d", 5001)) {
		t.Error("document content should be capped at 5000 characters")
	}
}

func TestAnalyzeToneParsesFencedJSON(t *testing.T) {
	response := "```json\n" + `{
		"overall": "Reflective",
		"confidence": 0.85,
		"traits": [
			{"label": "Formality", "value": 55},
			{"label": "Emotion", "value": 70},
			{"label": "Clarity", "value": 80},
			{"label": "Creativity", "value": 65}
		],
		"suggestion": "Lean into the imagery in your second paragraph."
	}` + "\n```"

	svc, fake := newTestService(response, nil)

	analysis, err := svc.AnalyzeTone(context.Background(), "Morning Pages", "Some reflective prose about rivers.")
	if err != nil {
		t.Fatalf("AnalyzeTone: %v", err)
	}
	if analysis.Overall != "Reflective" {
		t.Errorf("Overall = %q", analysis.Overall)
	}
	if analysis.Confidence != 0.85 {
		t.Errorf("Confidence = %v", analysis.Confidence)
	}
	if len(analysis.Traits) != 4 || analysis.Traits[1].Value != 70 {
		t.Errorf("Traits = %+v", analysis.Traits)
	}
	if fake.last.MaxTokens != 200 {
		t.Errorf("MaxTokens = %d, want 200", fake.last.MaxTokens)
	}
	if fake.last.Temperature == nil || *fake.last.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", fake.last.Temperature)
	}
}

func TestAnalyzeToneRejectsBadResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"prose instead of JSON", "The tone is formal and a little stiff."},
		{"truncated object", `{"overall": "Formal", "confidence": 0.9, "traits": [`},
		{"out-of-range confidence", `{"overall": "Formal", "confidence": 3.5, "traits": [], "suggestion": "x"}`},
		{"missing overall", `{"confidence": 0.5, "traits": [], "suggestion": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(tt.response, nil)

			analysis, err := svc.AnalyzeTone(context.Background(), "T", "content")
			if analysis != nil {
				t.Errorf("got analysis %+v, want nil", analysis)
			}
			var parseErr *domain.ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("got error %v, want *domain.ParseError", err)
			}
			if parseErr != nil && parseErr.Raw != tt.response {
				t.Error("parse error should carry the raw response")
			}
		})
	}
}

func TestAnalyzeToneTrimsLeadingProse(t *testing.T) {
	response := `Here is the analysis you asked for: {"overall":"Casual","confidence":0.6,"traits":[{"label":"Formality","value":20}],"suggestion":"Keep it loose."} Hope that helps!`

	svc, _ := newTestService(response, nil)
	analysis, err := svc.AnalyzeTone(context.Background(), "T", "hey there")
	if err != nil {
		t.Fatalf("AnalyzeTone: %v", err)
	}
	if analysis.Overall != "Casual" {
		t.Errorf("Overall = %q", analysis.Overall)
	}
}

func TestProviderErrorsPropagate(t *testing.T) {
	boom := errors.New("rate limited")
	svc, _ := newTestService("", boom)

	if _, err := svc.CompleteFromEnd(context.Background(), "T", "text"); !errors.Is(err, boom) {
		t.Errorf("CompleteFromEnd error = %v, want wrapped provider error", err)
	}
	if _, err := svc.Chat(context.Background(), nil, "hi", models.DocumentContext{}); !errors.Is(err, boom) {
		t.Errorf("Chat error = %v, want wrapped provider error", err)
	}
}
