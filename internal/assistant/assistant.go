// Package assistant maintains the conversational sidebar: an append-only
// turn history grounded in the current document.
package assistant

import (
	"context"
	"log/slog"
	"sync"

	"inkflow/internal/domain/models"
	"inkflow/internal/htmltext"
)

const (
	greeting      = "Hi! I'm your writing partner. I have read your current draft. How can I help you refine or expand it?"
	clearedNotice = "Chat cleared. How can I help with this document?"
	fallbackReply = "Sorry, I encountered an error. Please try again."
)

// stripWarnRatio flags document stripping that removes a suspicious share
// of characters, a guard against content-extraction bugs.
const stripWarnRatio = 0.3

// Chatter is the slice of the suggestion service the assistant calls.
type Chatter interface {
	Chat(ctx context.Context, history []models.ChatMessage, message string, doc models.DocumentContext) (string, error)
}

// Assistant holds one conversation. Turns are append-only until an explicit
// Clear. Safe for concurrent use.
type Assistant struct {
	chatter Chatter
	logger  *slog.Logger

	mu    sync.Mutex
	turns []models.ChatMessage
}

// New creates an assistant seeded with its greeting turn.
func New(chatter Chatter, logger *slog.Logger) *Assistant {
	return &Assistant{
		chatter: chatter,
		logger:  logger,
		turns:   []models.ChatMessage{{Role: models.RoleAssistant, Text: greeting}},
	}
}

// History returns a copy of the conversation so far.
func (a *Assistant) History() []models.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.ChatMessage(nil), a.turns...)
}

// Send appends the user's message, asks the backend with the prior turns and
// a stripped projection of the document as grounding, and appends the reply.
// Backend failure appends a fixed fallback turn instead; the conversation is
// never left hanging on an error.
func (a *Assistant) Send(ctx context.Context, message string, doc models.Document) []models.ChatMessage {
	a.mu.Lock()
	a.turns = append(a.turns, models.ChatMessage{Role: models.RoleUser, Text: message})
	history := append([]models.ChatMessage(nil), a.turns[:len(a.turns)-1]...)
	a.mu.Unlock()

	grounding := models.DocumentContext{
		Title:   doc.Title,
		Content: a.stripContent(doc.Content),
	}

	reply, err := a.chatter.Chat(ctx, history, message, grounding)
	if err != nil {
		a.logger.Warn("chat request failed", "document_id", doc.ID, "error", err)
		reply = fallbackReply
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.turns = append(a.turns, models.ChatMessage{Role: models.RoleAssistant, Text: reply})
	return append([]models.ChatMessage(nil), a.turns...)
}

// Clear resets the conversation to a single cleared notice.
func (a *Assistant) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.turns = []models.ChatMessage{{Role: models.RoleAssistant, Text: clearedNotice}}
}

// stripContent reduces document HTML to collapsed plain text for token
// efficiency, warning when the reduction is large enough to suggest the
// extraction dropped real content.
func (a *Assistant) stripContent(content string) string {
	cleaned := htmltext.Collapse(htmltext.Text(content))

	origLen := len(content)
	if origLen > 100 && float64(origLen-len(cleaned)) > float64(origLen)*stripWarnRatio {
		a.logger.Warn("document content significantly reduced after stripping",
			"original", origLen, "cleaned", len(cleaned))
	}

	return cleaned
}

// Greeting returns the canonical opening turn text.
func Greeting() string {
	return greeting
}
