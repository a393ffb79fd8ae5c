// Package ghost coordinates the lifecycle of AI continuation suggestions:
// when to request one, whether a response is still relevant when it lands,
// and how an accepted suggestion merges back into the live buffer.
package ghost

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"inkflow/internal/editor"
)

// State is the coordinator's position in the suggestion lifecycle.
type State int

const (
	StateIdle State = iota
	StatePending
	StateDisplayed
	StateAccepting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateDisplayed:
		return "displayed"
	case StateAccepting:
		return "accepting"
	default:
		return "unknown"
	}
}

// Completer is the slice of the suggestion service the coordinator calls.
type Completer interface {
	CompleteFromEnd(ctx context.Context, title, text string) (string, error)
	CompleteFromCursor(ctx context.Context, title, before, after string) (string, error)
}

// Config tunes the trigger behavior. Zero values fall back to defaults.
type Config struct {
	// DebounceDelay is how long after the last edit an automatic trigger
	// fires.
	DebounceDelay time.Duration
	// MinTextLength gates automatic triggers: shorter documents produce
	// no suggestion.
	MinTextLength int
	// AcceptHold is the presentation-only pause in the Accepting state
	// after the text is already inserted.
	AcceptHold time.Duration
}

func (c Config) withDefaults() Config {
	if c.DebounceDelay == 0 {
		c.DebounceDelay = 1500 * time.Millisecond
	}
	if c.MinTextLength == 0 {
		c.MinTextLength = 50
	}
	if c.AcceptHold == 0 {
		c.AcceptHold = 400 * time.Millisecond
	}
	return c
}

// Session is the editor surface the coordinator reads from and inserts into.
type Session interface {
	DocumentID() string
	PlainText() string
	CursorSplit() (before, after string)
	InsertSuggestion(ctx context.Context, anchor int, text string)
}

// Coordinator runs the suggestion state machine for one editor session. At
// most one suggestion is live at a time; a monotonic request token marks
// superseded requests so their late responses are discarded.
type Coordinator struct {
	completer Completer
	session   Session
	title     func() string
	cfg       Config
	logger    *slog.Logger

	mu         sync.Mutex
	state      State
	token      uint64
	suggestion string
	anchor     int
	debounce   *time.Timer
	holdTimer  *time.Timer
	cancel     context.CancelFunc
	closed     bool
}

// NewCoordinator wires a coordinator to its session. The title func supplies
// the current document title for prompt context.
func NewCoordinator(completer Completer, session Session, title func() string, cfg Config, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		completer: completer,
		session:   session,
		title:     title,
		cfg:       cfg.withDefaults(),
		logger:    logger,
	}
}

// State reports the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Suggestion returns the displayed ghost text and its anchor. ok is false
// unless a suggestion is currently displayed.
func (c *Coordinator) Suggestion() (text string, anchor int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDisplayed {
		return "", 0, false
	}
	return c.suggestion, c.anchor, true
}

// ContentChanged is the session's change notification. A user edit discards
// any live suggestion and re-arms the debounce timer; suggestion-sourced
// changes (our own insert) and external syncs never re-arm.
func (c *Coordinator) ContentChanged(source editor.ChangeSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	switch source {
	case editor.SourceSuggestion:
		// Our own accept insertion; the Accepting hold is already running.
		return
	case editor.SourceExternal:
		c.resetLocked()
		return
	}

	c.resetLocked()
	c.armDebounceLocked()
}

// TriggerFromEnd requests a continuation anchored at the document end,
// bypassing the debounce gate. Used by the explicit "continue" command.
func (c *Coordinator) TriggerFromEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.startRequestLocked(false)
}

// TriggerFromCursor requests a continuation anchored at the cursor,
// splitting the document into before/after context.
func (c *Coordinator) TriggerFromCursor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.startRequestLocked(true)
}

// Accept merges the displayed suggestion into the buffer as a single
// " "-prefixed insertion at the anchor. A second Accept while the hold timer
// runs is a no-op, so a doubled key event cannot insert twice.
func (c *Coordinator) Accept(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateDisplayed {
		c.mu.Unlock()
		return
	}
	text := c.suggestion
	anchor := c.anchor
	c.state = StateAccepting
	c.suggestion = ""
	c.token++

	hold := c.cfg.AcceptHold
	c.holdTimer = time.AfterFunc(hold, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state == StateAccepting {
			c.state = StateIdle
		}
	})
	c.mu.Unlock()

	// Insert before the hold elapses: the content mutation is synchronous,
	// only the state transition back to Idle is delayed.
	c.session.InsertSuggestion(ctx, anchor, " "+text)
}

// Dismiss discards a displayed suggestion without inserting anything.
func (c *Coordinator) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDisplayed {
		return
	}
	c.resetLocked()
}

// DocumentSwitched cancels all suggestion activity when the active document
// changes. Late responses from the old document are discarded via the token.
func (c *Coordinator) DocumentSwitched() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Close shuts the coordinator down permanently.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	if c.holdTimer != nil {
		c.holdTimer.Stop()
		c.holdTimer = nil
	}
	c.closed = true
}

// resetLocked drops any pending or displayed suggestion: stops the debounce
// timer, cancels the in-flight request, and bumps the token so a late
// response is ignored.
func (c *Coordinator) resetLocked() {
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.token++
	c.state = StateIdle
	c.suggestion = ""
	c.anchor = 0
}

// armDebounceLocked schedules an automatic trigger. Each call replaces the
// previous timer, so a burst of edits fires at most once, after the last.
func (c *Coordinator) armDebounceLocked() {
	token := c.token
	c.debounce = time.AfterFunc(c.cfg.DebounceDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || token != c.token || c.state != StateIdle {
			return
		}
		// Length gate applies only to the automatic path.
		if len([]rune(c.session.PlainText())) <= c.cfg.MinTextLength {
			return
		}
		c.startRequestLocked(false)
	})
}

// startRequestLocked issues a suggestion request, superseding any request
// already in flight. Callers hold c.mu.
func (c *Coordinator) startRequestLocked(fromCursor bool) {
	if c.session.DocumentID() == "" {
		return
	}
	c.resetLocked()
	c.state = StatePending
	c.token++
	token := c.token

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	title := c.title()
	var before, after string
	var anchor int
	if fromCursor {
		before, after = c.session.CursorSplit()
		anchor = len([]rune(before))
	} else {
		anchor = -1 // document end
	}

	go func() {
		var text string
		var err error
		if fromCursor {
			text, err = c.completer.CompleteFromCursor(ctx, title, before, after)
		} else {
			text, err = c.completer.CompleteFromEnd(ctx, title, c.session.PlainText())
		}
		c.finishRequest(token, anchor, text, err)
	}()
}

// finishRequest applies a response if its request is still the latest.
func (c *Coordinator) finishRequest(token uint64, anchor int, text string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token || c.state != StatePending {
		return
	}
	if err != nil {
		c.logger.Debug("suggestion request failed", "error", err)
		c.state = StateIdle
		return
	}
	if text == "" {
		c.state = StateIdle
		return
	}
	c.state = StateDisplayed
	c.suggestion = text
	c.anchor = anchor
}
