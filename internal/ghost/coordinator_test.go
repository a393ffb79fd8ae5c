package ghost

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"inkflow/internal/domain/models"
	"inkflow/internal/editor"
)

// fakeCompleter routes each call through a per-call handler so tests can
// control response content and timing.
type fakeCompleter struct {
	mu      sync.Mutex
	calls   int
	handler func(call int) (string, error)
}

func (f *fakeCompleter) nextCall() (int, func(int) (string, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.calls, f.handler
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCompleter) CompleteFromEnd(_ context.Context, _, _ string) (string, error) {
	n, h := f.nextCall()
	return h(n)
}

func (f *fakeCompleter) CompleteFromCursor(_ context.Context, _, _, _ string) (string, error) {
	n, h := f.nextCall()
	return h(n)
}

// fakeSession is a minimal stand-in for the editor session.
type fakeSession struct {
	mu       sync.Mutex
	docID    string
	text     string
	inserted []string
}

func (f *fakeSession) DocumentID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docID
}

func (f *fakeSession) PlainText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

func (f *fakeSession) CursorSplit() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	half := len(f.text) / 2
	return f.text[:half], f.text[half:]
}

func (f *fakeSession) InsertSuggestion(_ context.Context, _ int, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, text)
}

func (f *fakeSession) insertions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inserted...)
}

var testConfig = Config{
	DebounceDelay: 20 * time.Millisecond,
	MinTextLength: 50,
	AcceptHold:    10 * time.Millisecond,
}

func newTestCoordinator(handler func(call int) (string, error), text string) (*Coordinator, *fakeCompleter, *fakeSession) {
	completer := &fakeCompleter{handler: handler}
	session := &fakeSession{docID: "d1", text: text}
	coord := NewCoordinator(completer, session, func() string { return "Draft" }, testConfig, slog.Default())
	return coord, completer, session
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func longText() string {
	return strings.Repeat("The river kept moving. ", 5)
}

func TestDebounceFiresOnceAfterBurst(t *testing.T) {
	coord, completer, _ := newTestCoordinator(func(int) (string, error) {
		return "continuation", nil
	}, longText())
	defer coord.Close()

	for i := 0; i < 5; i++ {
		coord.ContentChanged(editor.SourceUser)
		time.Sleep(5 * time.Millisecond)
	}
	if completer.callCount() != 0 {
		t.Fatal("request fired during the edit burst")
	}

	waitFor(t, func() bool { return completer.callCount() == 1 },
		"debounce never fired after the burst ended")
	waitFor(t, func() bool { return coord.State() == StateDisplayed },
		"coordinator never reached Displayed")

	// No further edits, no further requests.
	time.Sleep(3 * testConfig.DebounceDelay)
	if completer.callCount() != 1 {
		t.Errorf("got %d requests, want exactly 1", completer.callCount())
	}
}

func TestShortDocumentsNeverAutoTrigger(t *testing.T) {
	coord, completer, _ := newTestCoordinator(func(int) (string, error) {
		return "continuation", nil
	}, "too short")
	defer coord.Close()

	coord.ContentChanged(editor.SourceUser)
	time.Sleep(3 * testConfig.DebounceDelay)
	if completer.callCount() != 0 {
		t.Errorf("got %d requests, want 0 for short documents", completer.callCount())
	}
}

func TestManualTriggerBypassesLengthGate(t *testing.T) {
	coord, completer, _ := newTestCoordinator(func(int) (string, error) {
		return "continuation", nil
	}, "short")
	defer coord.Close()

	coord.TriggerFromEnd()
	waitFor(t, func() bool { return completer.callCount() == 1 },
		"manual trigger never issued a request")
	waitFor(t, func() bool { return coord.State() == StateDisplayed },
		"manual trigger never displayed")
}

func TestSupersededResponseIsDiscarded(t *testing.T) {
	releaseA := make(chan struct{})
	coord, completer, _ := newTestCoordinator(func(call int) (string, error) {
		if call == 1 {
			<-releaseA
			return "response A", nil
		}
		return "response B", nil
	}, longText())
	defer coord.Close()

	coord.TriggerFromEnd()
	waitFor(t, func() bool { return completer.callCount() == 1 }, "first request never issued")

	coord.TriggerFromEnd()
	waitFor(t, func() bool { return coord.State() == StateDisplayed }, "second request never displayed")

	// A's late response must not replace B's.
	close(releaseA)
	time.Sleep(20 * time.Millisecond)

	text, _, ok := coord.Suggestion()
	if !ok || text != "response B" {
		t.Errorf("suggestion = %q ok=%v, want the superseding response B", text, ok)
	}
}

func TestEditDiscardsDisplayedSuggestion(t *testing.T) {
	coord, _, _ := newTestCoordinator(func(int) (string, error) {
		return "stale ghost", nil
	}, longText())
	defer coord.Close()

	coord.TriggerFromEnd()
	waitFor(t, func() bool { return coord.State() == StateDisplayed }, "never displayed")

	coord.ContentChanged(editor.SourceUser)

	if _, _, ok := coord.Suggestion(); ok {
		t.Error("suggestion still retrievable after an edit")
	}
	if s := coord.State(); s == StateDisplayed {
		t.Errorf("state = %v after edit", s)
	}
}

func TestAcceptInsertsOnce(t *testing.T) {
	coord, _, session := newTestCoordinator(func(int) (string, error) {
		return "the tide turned", nil
	}, longText())
	defer coord.Close()

	coord.TriggerFromEnd()
	waitFor(t, func() bool { return coord.State() == StateDisplayed }, "never displayed")

	coord.Accept(context.Background())
	coord.Accept(context.Background()) // doubled key event

	ins := session.insertions()
	if len(ins) != 1 {
		t.Fatalf("got %d insertions, want 1", len(ins))
	}
	if ins[0] != " the tide turned" {
		t.Errorf("inserted %q, want space-prefixed suggestion", ins[0])
	}

	if s := coord.State(); s != StateAccepting {
		t.Errorf("state = %v immediately after accept, want Accepting", s)
	}
	waitFor(t, func() bool { return coord.State() == StateIdle },
		"hold never released back to Idle")
}

func TestFailedRequestFallsBackToIdle(t *testing.T) {
	coord, _, _ := newTestCoordinator(func(int) (string, error) {
		return "", context.DeadlineExceeded
	}, longText())
	defer coord.Close()

	coord.TriggerFromEnd()
	waitFor(t, func() bool { return coord.State() == StateIdle }, "failure did not settle to Idle")
}

func TestEmptyResponseFallsBackToIdle(t *testing.T) {
	started := make(chan struct{}, 1)
	coord, _, _ := newTestCoordinator(func(int) (string, error) {
		started <- struct{}{}
		return "", nil
	}, longText())
	defer coord.Close()

	coord.TriggerFromEnd()
	<-started
	waitFor(t, func() bool { return coord.State() == StateIdle }, "empty response did not settle to Idle")
	if _, _, ok := coord.Suggestion(); ok {
		t.Error("empty response produced a suggestion")
	}
}

func TestDocumentSwitchCancelsEverything(t *testing.T) {
	release := make(chan struct{})
	coord, _, _ := newTestCoordinator(func(int) (string, error) {
		<-release
		return "late ghost", nil
	}, longText())
	defer coord.Close()

	coord.TriggerFromEnd()
	coord.DocumentSwitched()
	close(release)
	time.Sleep(20 * time.Millisecond)

	if s := coord.State(); s != StateIdle {
		t.Errorf("state = %v, want Idle after switch", s)
	}
	if _, _, ok := coord.Suggestion(); ok {
		t.Error("late response applied after document switch")
	}
}

func TestDismissDropsSuggestionWithoutInsert(t *testing.T) {
	coord, _, session := newTestCoordinator(func(int) (string, error) {
		return "unwanted", nil
	}, longText())
	defer coord.Close()

	coord.TriggerFromEnd()
	waitFor(t, func() bool { return coord.State() == StateDisplayed }, "never displayed")

	coord.Dismiss()
	if s := coord.State(); s != StateIdle {
		t.Errorf("state = %v, want Idle", s)
	}
	if len(session.insertions()) != 0 {
		t.Error("dismiss inserted text")
	}
}

// End-to-end shape of the guest flow: type past the length gate, wait out
// the debounce, accept the ghost text, and the buffer ends with it.
func TestAcceptAppendsToLiveBuffer(t *testing.T) {
	writer := &nopWriter{}
	session := editor.NewSession(writer, slog.Default())
	session.Open(models.Document{ID: "d1", Content: "<p></p>"})

	coord := NewCoordinator(
		&fakeCompleter{handler: func(int) (string, error) { return "and the story begins.", nil }},
		session,
		func() string { return "Untitled" },
		testConfig,
		slog.Default(),
	)
	defer coord.Close()
	session.SetListener(coord.ContentChanged)

	prior := "Once upon a time there was a village beside a wide and quiet river"
	session.ApplyEdit(context.Background(), "<p>"+prior+"</p>")

	waitFor(t, func() bool { return coord.State() == StateDisplayed }, "debounced trigger never displayed")

	text, anchor, ok := coord.Suggestion()
	if !ok || text != "and the story begins." {
		t.Fatalf("suggestion = %q ok=%v", text, ok)
	}
	if anchor != -1 {
		t.Errorf("anchor = %d, want document end", anchor)
	}

	coord.Accept(context.Background())

	want := prior + " and the story begins."
	if got := session.PlainText(); got != want {
		t.Errorf("buffer = %q,\nwant    %q", got, want)
	}
	waitFor(t, func() bool { return coord.State() == StateIdle }, "accept never settled to Idle")
}

type nopWriter struct{}

func (nopWriter) Update(context.Context, string, models.DocumentPatch) {}
