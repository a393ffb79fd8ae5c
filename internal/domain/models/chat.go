package models

// Chat roles. The assistant role maps to the backend's "model" side.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn in the conversational assistant, append-only.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// DocumentContext is the grounding passed to assistant calls: the active
// document's title plus a stripped plain-text projection of its content.
type DocumentContext struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
