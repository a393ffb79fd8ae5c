package store

import (
	"strings"

	"inkflow/internal/htmltext"
)

const (
	titleLimit   = 40
	previewLimit = 100
)

// DeriveTitle computes a document title from its content: the first <h1>
// text when present, otherwise the first 40 characters of the plain-text
// projection, otherwise "Untitled".
func DeriveTitle(content string) string {
	if heading := htmltext.FirstHeading(content); heading != "" {
		return heading
	}
	text := strings.TrimSpace(htmltext.Text(content))
	if text == "" {
		return "Untitled"
	}
	if runes := []rune(text); len(runes) > titleLimit {
		return string(runes[:titleLimit])
	}
	return text
}

// DerivePreview computes the sidebar preview: the first 100 characters of
// the plain-text projection, with an ellipsis marker when truncated.
func DerivePreview(content string) string {
	text := strings.TrimSpace(htmltext.Text(content))
	if text == "" {
		return "Empty draft..."
	}
	if runes := []rune(text); len(runes) > previewLimit {
		return string(runes[:previewLimit]) + "..."
	}
	return text
}

// CountWords counts whitespace-delimited tokens in the plain-text projection.
func CountWords(content string) int {
	return len(strings.Fields(htmltext.Text(content)))
}
