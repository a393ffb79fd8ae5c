package convert

import (
	stdhtml "html"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var importPolicy = bluemonday.UGCPolicy()

// ImportedDocument is the initial title and content for a document created
// from an uploaded file.
type ImportedDocument struct {
	Title   string
	Content string
}

// FromUpload converts an uploaded file into document content. Plain-text and
// markdown files become one paragraph per non-empty line; anything else is
// treated as HTML and sanitized. The filename without its extension becomes
// the title.
func FromUpload(filename string, data []byte) *ImportedDocument {
	ext := strings.ToLower(filepath.Ext(filename))
	title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	var content string
	switch ext {
	case ".txt", ".md":
		content = linesToParagraphs(string(data))
	default:
		content = importPolicy.Sanitize(string(data))
	}

	return &ImportedDocument{Title: title, Content: content}
}

func linesToParagraphs(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(stdhtml.EscapeString(line))
		sb.WriteString("</p>")
	}
	return sb.String()
}
