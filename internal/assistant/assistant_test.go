package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"inkflow/internal/domain/models"
)

type fakeChatter struct {
	lastHistory []models.ChatMessage
	lastMessage string
	lastDoc     models.DocumentContext
	reply       string
	err         error
}

func (f *fakeChatter) Chat(_ context.Context, history []models.ChatMessage, message string, doc models.DocumentContext) (string, error) {
	f.lastHistory = history
	f.lastMessage = message
	f.lastDoc = doc
	return f.reply, f.err
}

func TestNewStartsWithGreeting(t *testing.T) {
	a := New(&fakeChatter{}, slog.Default())

	turns := a.History()
	if len(turns) != 1 {
		t.Fatalf("got %d turns, want the greeting only", len(turns))
	}
	if turns[0].Role != models.RoleAssistant || turns[0].Text != Greeting() {
		t.Errorf("opening turn = %+v", turns[0])
	}
}

func TestSendAppendsBothTurns(t *testing.T) {
	chatter := &fakeChatter{reply: "Try opening with the storm scene."}
	a := New(chatter, slog.Default())

	doc := models.Document{ID: "d1", Title: "Draft", Content: "<p>It was a dark night.</p>"}
	turns := a.Send(context.Background(), "Where should I start?", doc)

	if len(turns) != 3 {
		t.Fatalf("got %d turns, want greeting + user + reply", len(turns))
	}
	if turns[1].Role != models.RoleUser || turns[1].Text != "Where should I start?" {
		t.Errorf("user turn = %+v", turns[1])
	}
	if turns[2].Role != models.RoleAssistant || turns[2].Text != "Try opening with the storm scene." {
		t.Errorf("assistant turn = %+v", turns[2])
	}

	// The backend sees the history before the new message, plus stripped
	// document grounding.
	if len(chatter.lastHistory) != 1 {
		t.Errorf("backend got %d history turns, want greeting only", len(chatter.lastHistory))
	}
	if chatter.lastMessage != "Where should I start?" {
		t.Errorf("backend message = %q", chatter.lastMessage)
	}
	if chatter.lastDoc.Content != "It was a dark night." {
		t.Errorf("grounding content = %q, want stripped plain text", chatter.lastDoc.Content)
	}
}

func TestSendFailureAppendsFallback(t *testing.T) {
	a := New(&fakeChatter{err: errors.New("quota exceeded")}, slog.Default())

	turns := a.Send(context.Background(), "hello?", models.Document{ID: "d1"})

	last := turns[len(turns)-1]
	if last.Role != models.RoleAssistant || last.Text != fallbackReply {
		t.Errorf("last turn = %+v, want the fallback reply", last)
	}
}

func TestHistoryIsAppendOnlyAcrossSends(t *testing.T) {
	chatter := &fakeChatter{reply: "ok"}
	a := New(chatter, slog.Default())

	a.Send(context.Background(), "first", models.Document{})
	a.Send(context.Background(), "second", models.Document{})

	turns := a.History()
	if len(turns) != 5 {
		t.Fatalf("got %d turns, want 5", len(turns))
	}
	var texts []string
	for _, turn := range turns {
		texts = append(texts, turn.Text)
	}
	if texts[1] != "first" || texts[3] != "second" {
		t.Errorf("turn order = %v", texts)
	}
	// Second send's backend history includes everything before it.
	if len(chatter.lastHistory) != 3 {
		t.Errorf("backend history = %d turns, want 3", len(chatter.lastHistory))
	}
}

func TestClearResetsConversation(t *testing.T) {
	a := New(&fakeChatter{reply: "ok"}, slog.Default())
	a.Send(context.Background(), "something", models.Document{})

	a.Clear()

	turns := a.History()
	if len(turns) != 1 {
		t.Fatalf("got %d turns after clear, want 1", len(turns))
	}
	if turns[0].Text != clearedNotice {
		t.Errorf("cleared turn = %q", turns[0].Text)
	}
}

func TestStripContentCollapsesMarkup(t *testing.T) {
	chatter := &fakeChatter{reply: "ok"}
	a := New(chatter, slog.Default())

	content := "<h1>Title</h1><p>First   line.</p><p>Second line.</p>"
	a.Send(context.Background(), "q", models.Document{Content: content})

	got := chatter.lastDoc.Content
	if strings.Contains(got, "<") {
		t.Errorf("grounding still contains markup: %q", got)
	}
	if got != "Title First line. Second line." {
		t.Errorf("grounding = %q", got)
	}
}
