// Package editor holds the live buffer for the currently open document and
// mediates between raw edits, persistence commits, and suggestion overlays.
package editor

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"inkflow/internal/domain/models"
	"inkflow/internal/htmltext"
	"inkflow/internal/store"
)

// ChangeSource tags who mutated the buffer, so listeners can distinguish
// ordinary typing from an accepted suggestion or an external sync.
type ChangeSource int

const (
	SourceUser ChangeSource = iota
	SourceSuggestion
	SourceExternal
)

// ChangeListener is notified after every committed buffer mutation. It runs
// outside the session lock, so it may call back into the session.
type ChangeListener func(source ChangeSource)

// DocumentWriter is the slice of the document store a session commits
// through.
type DocumentWriter interface {
	Update(ctx context.Context, id string, patch models.DocumentPatch)
}

const wordsPerMinute = 200

// Session owns the live content buffer for exactly one document at a time.
// The buffer is a copy of the store's content; writes flow back only through
// commit, which re-derives title and preview so the two never diverge.
type Session struct {
	writer DocumentWriter
	logger *slog.Logger

	mu       sync.Mutex
	docID    string
	buffer   string
	selFrom  int
	selTo    int
	listener ChangeListener
}

// NewSession creates a session with no document open.
func NewSession(writer DocumentWriter, logger *slog.Logger) *Session {
	return &Session{writer: writer, logger: logger}
}

// SetListener registers the single change listener. Pass nil to clear.
func (s *Session) SetListener(fn ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
}

// Open loads a document into the buffer, replacing whatever was open. The
// selection collapses to the start.
func (s *Session) Open(doc models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docID = doc.ID
	s.buffer = doc.Content
	s.selFrom, s.selTo = 0, 0
}

// Close detaches the session from its document. Subsequent edits are
// dropped until the next Open.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docID = ""
	s.buffer = ""
	s.selFrom, s.selTo = 0, 0
}

// DocumentID reports the open document, or "" when none is open.
func (s *Session) DocumentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docID
}

// Content returns the buffer's serialized content.
func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

// PlainText returns the buffer's plain-text projection.
func (s *Session) PlainText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return htmltext.Text(s.buffer)
}

// WordCount returns the whitespace-delimited token count of the plain-text
// projection.
func (s *Session) WordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.CountWords(s.buffer)
}

// ReadingTime estimates minutes to read, never less than one.
func (s *Session) ReadingTime() int {
	words := s.WordCount()
	minutes := int(math.Round(float64(words) / wordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// SetSelection records the current selection as plain-text offsets. Offsets
// are clamped to the projection and normalized so from <= to.
func (s *Session) SetSelection(from, to int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len([]rune(htmltext.Text(s.buffer)))
	s.selFrom, s.selTo = clampRange(from, to, n)
}

// Selection returns the current selection offsets.
func (s *Session) Selection() (from, to int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selFrom, s.selTo
}

// SelectedText returns the plain text inside the current selection.
func (s *Session) SelectedText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	runes := []rune(htmltext.Text(s.buffer))
	from, to := clampRange(s.selFrom, s.selTo, len(runes))
	return string(runes[from:to])
}

// CursorSplit returns the plain text before and after the selection start,
// for continue-from-cursor suggestions.
func (s *Session) CursorSplit() (before, after string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	runes := []rune(htmltext.Text(s.buffer))
	at, _ := clampRange(s.selFrom, s.selFrom, len(runes))
	return string(runes[:at]), string(runes[at:])
}

// ApplyEdit replaces the buffer with new content from the editing surface
// and commits it. This is the path every user edit takes.
func (s *Session) ApplyEdit(ctx context.Context, content string) {
	s.mu.Lock()
	if s.docID == "" {
		s.mu.Unlock()
		s.logger.Debug("edit dropped, no open document")
		return
	}
	s.buffer = content
	commit, notify := s.prepareCommitLocked()
	s.mu.Unlock()
	commit(ctx)
	if notify != nil {
		notify(SourceUser)
	}
}

// InsertSuggestion inserts accepted ghost text at the anchor offset and
// commits. The change is tagged SourceSuggestion so listeners do not treat
// it as a fresh user edit.
func (s *Session) InsertSuggestion(ctx context.Context, anchor int, text string) {
	s.mu.Lock()
	if s.docID == "" {
		s.mu.Unlock()
		return
	}
	updated, err := htmltext.InsertAt(s.buffer, anchor, text)
	if err != nil {
		id := s.docID
		s.mu.Unlock()
		s.logger.Error("suggestion insert failed, buffer unchanged",
			"document_id", id, "error", err)
		return
	}
	s.buffer = updated
	commit, notify := s.prepareCommitLocked()
	s.mu.Unlock()
	commit(ctx)
	if notify != nil {
		notify(SourceSuggestion)
	}
}

// ReplaceSelection swaps the selected range for replacement text, commits,
// and re-selects the replacement so a follow-up instruction applies to it.
func (s *Session) ReplaceSelection(ctx context.Context, replacement string) {
	s.mu.Lock()
	if s.docID == "" {
		s.mu.Unlock()
		return
	}
	n := len([]rune(htmltext.Text(s.buffer)))
	from, to := clampRange(s.selFrom, s.selTo, n)
	updated, err := htmltext.ReplaceRange(s.buffer, from, to, replacement)
	if err != nil {
		id := s.docID
		s.mu.Unlock()
		s.logger.Error("selection replace failed, buffer unchanged",
			"document_id", id, "error", err)
		return
	}
	s.buffer = updated
	s.selFrom, s.selTo = from, from+len([]rune(replacement))
	commit, notify := s.prepareCommitLocked()
	s.mu.Unlock()
	commit(ctx)
	if notify != nil {
		notify(SourceUser)
	}
}

// SyncExternal resets the buffer when the store's copy of the open document
// changed underneath us. The external write wins; local unsaved edits are
// discarded and the loss is logged.
func (s *Session) SyncExternal(doc models.Document) {
	s.mu.Lock()
	if s.docID != doc.ID || s.buffer == doc.Content {
		s.mu.Unlock()
		return
	}
	s.logger.Warn("external change replaced local buffer",
		"document_id", doc.ID)
	s.buffer = doc.Content
	n := len([]rune(htmltext.Text(s.buffer)))
	s.selFrom, s.selTo = clampRange(s.selFrom, s.selTo, n)
	notify := s.listener
	s.mu.Unlock()
	if notify != nil {
		notify(SourceExternal)
	}
}

// prepareCommitLocked snapshots the buffer for a store write. Callers hold
// s.mu and invoke the returned commit after releasing it: the store may
// deliver a subscription push synchronously from Update, which re-enters the
// session via SyncExternal. The snapshot carries the full content, so
// overlapping commits stay last-write-wins.
func (s *Session) prepareCommitLocked() (commit func(context.Context), notify ChangeListener) {
	id := s.docID
	title := store.DeriveTitle(s.buffer)
	preview := store.DerivePreview(s.buffer)
	content := s.buffer
	return func(ctx context.Context) {
		s.writer.Update(ctx, id, models.DocumentPatch{
			Title:   &title,
			Content: &content,
			Preview: &preview,
		})
	}, s.listener
}

func clampRange(from, to, n int) (int, int) {
	if from < 0 {
		from = 0
	}
	if to < 0 {
		to = 0
	}
	if from > n {
		from = n
	}
	if to > n {
		to = n
	}
	if from > to {
		from, to = to, from
	}
	return from, to
}
