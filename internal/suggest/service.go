package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"inkflow/internal/domain"
	"inkflow/internal/domain/models"
)

// Context windows, in plain-text characters. Long documents are trimmed to
// these before prompting so request size stays bounded.
const (
	ghostTailWindow   = 1000
	cursorTailWindow  = 800
	cursorHeadWindow  = 400
	refineHeadWindow  = 500
	chatHeadWindow    = 5000
	toneHeadWindow    = 3000
)

const (
	ghostMaxTokens  = 60
	cursorMaxTokens = 80
	refineMaxTokens = 200
	toneMaxTokens   = 200
)

// Service builds prompts for the writing-assistant operations and delegates
// generation to a Provider.
type Service struct {
	provider Provider
	logger   *slog.Logger
}

// NewService creates a new suggestion service
func NewService(provider Provider, logger *slog.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// ProviderName reports which backend generations are served by.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// CompleteFromEnd suggests a short continuation for a document whose cursor
// sits at the end of the text. Returns the trimmed suggestion, which may be
// empty when the model has nothing to add.
func (s *Service) CompleteFromEnd(ctx context.Context, title, text string) (string, error) {
	prompt := fmt.Sprintf(`You are a "Ghost Writer", a proactive thought partner for a writer.

Document Title: %s

Current Text Context (end of document):
"%s"

Task: Suggest a short, natural continuation of the text (max 1-2 sentences).
Match the tone and style of the existing text.
Do not repeat the last sentence.
Do not add commentary. Just the text.`, title, tail(text, ghostTailWindow))

	out, err := s.provider.Generate(ctx, &GenerateRequest{
		Messages:    []models.ChatMessage{{Role: models.RoleUser, Text: prompt}},
		MaxTokens:   ghostMaxTokens,
		Temperature: Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("complete from end: %w", err)
	}

	return strings.TrimSpace(out), nil
}

// CompleteFromCursor suggests a continuation for a cursor in the middle of
// the document, bridging into the text that follows it.
func (s *Service) CompleteFromCursor(ctx context.Context, title, before, after string) (string, error) {
	prompt := fmt.Sprintf(`You are a "Ghost Writer" continuing text from the middle of a document.

Document Title: %s

Text BEFORE cursor:
"%s"

Text AFTER cursor (for context):
"%s"

Task: Write a natural continuation (1-2 sentences) that bridges from the text before the cursor.
It should flow naturally into the text after the cursor if present.
Match the exact tone and style. Return ONLY the text. No quotes, no commentary.`,
		title, tail(before, cursorTailWindow), head(after, cursorHeadWindow))

	out, err := s.provider.Generate(ctx, &GenerateRequest{
		Messages:    []models.ChatMessage{{Role: models.RoleUser, Text: prompt}},
		MaxTokens:   cursorMaxTokens,
		Temperature: Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("complete from cursor: %w", err)
	}

	return strings.TrimSpace(out), nil
}

// RewriteSelection rewrites selected text according to a freeform
// instruction, using a sample of the surrounding document for context.
func (s *Service) RewriteSelection(ctx context.Context, selection, instruction, fullText string) (string, error) {
	prompt := fmt.Sprintf(`You are an expert editor.

Context: The user is writing a document.
Full Context Sample: "%s..."

Selected Text to Edit: "%s"

User Instruction: "%s"

Task: Rewrite the selected text based on the instruction.
Return ONLY the rewritten text. No quotes, no explanations.`,
		head(fullText, refineHeadWindow), selection, instruction)

	out, err := s.provider.Generate(ctx, &GenerateRequest{
		Messages:  []models.ChatMessage{{Role: models.RoleUser, Text: prompt}},
		MaxTokens: refineMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("rewrite selection: %w", err)
	}

	return strings.TrimSpace(out), nil
}

// Chat answers a conversational message with the prior turns and the current
// document as context. History must alternate roles; the new message is
// appended as the final user turn.
func (s *Service) Chat(ctx context.Context, history []models.ChatMessage, message string, doc models.DocumentContext) (string, error) {
	system := fmt.Sprintf(`You are an intelligent writing assistant embedded in a text editor.

CURRENT DOCUMENT CONTEXT:
Title: "%s"
Content: "%s"
(Note: Content is truncated for efficiency if very long).

Your Goal: Help the user brainstorm, edit, research, or critique their work.
Tone: Helpful, concise, and sophisticated.
Format: Use Markdown for formatting. If the user asks for a rewrite, provide just the text or the text with a brief explanation.`,
		doc.Title, head(doc.Content, chatHeadWindow))

	messages := make([]models.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: models.RoleUser, Text: message})

	out, err := s.provider.Generate(ctx, &GenerateRequest{
		System:   system,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	return out, nil
}

// AnalyzeTone asks the model for a structured tone report and parses it
// strictly. A response that is not valid JSON, or that fails validation,
// yields a domain.ParseError carrying the raw text.
func (s *Service) AnalyzeTone(ctx context.Context, title, text string) (*models.ToneAnalysis, error) {
	prompt := fmt.Sprintf(`Analyze the writing tone and style of this document.

Title: "%s"
Content: "%s"

Return a JSON object with this exact structure:
{
  "overall": "<one word: e.g. Formal, Casual, Poetic, Persuasive, Academic, Conversational, Melancholic, Humorous, Authoritative, Reflective>",
  "confidence": <0.0 to 1.0>,
  "traits": [
    { "label": "Formality", "value": <0-100> },
    { "label": "Emotion", "value": <0-100> },
    { "label": "Clarity", "value": <0-100> },
    { "label": "Creativity", "value": <0-100> }
  ],
  "suggestion": "<one brief sentence of stylistic advice>"
}

Return ONLY the JSON object. No markdown, no code fences, no explanation.`,
		title, head(text, toneHeadWindow))

	out, err := s.provider.Generate(ctx, &GenerateRequest{
		Messages:    []models.ChatMessage{{Role: models.RoleUser, Text: prompt}},
		MaxTokens:   toneMaxTokens,
		Temperature: Float(0.3),
	})
	if err != nil {
		return nil, fmt.Errorf("analyze tone: %w", err)
	}

	analysis, err := parseToneResponse(out)
	if err != nil {
		s.logger.Warn("unparseable tone response", "provider", s.provider.Name(), "error", err)
		return nil, err
	}

	return analysis, nil
}

// parseToneResponse extracts and validates the JSON object in a model
// response. Models sometimes wrap output in code fences or leading prose
// despite instructions, so everything outside the outermost braces is
// discarded before decoding.
func parseToneResponse(raw string) (*models.ToneAnalysis, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	open := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if open == -1 || end <= open {
		return nil, &domain.ParseError{Message: "no JSON object in response", Raw: raw}
	}
	cleaned = cleaned[open : end+1]

	var analysis models.ToneAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, &domain.ParseError{Message: fmt.Sprintf("decode tone analysis: %v", err), Raw: raw}
	}
	if err := analysis.Validate(); err != nil {
		return nil, &domain.ParseError{Message: fmt.Sprintf("invalid tone analysis: %v", err), Raw: raw}
	}

	return &analysis, nil
}

// tail returns at most n trailing characters of s.
func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// head returns at most n leading characters of s.
func head(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
