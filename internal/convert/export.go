// Package convert moves documents across formats: file export, file import,
// and pulling documents in from an external drive.
package convert

import (
	"fmt"
	stdhtml "html"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"inkflow/internal/domain"
	"inkflow/internal/domain/models"
	"inkflow/internal/htmltext"
)

// Format selects an export target.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	// FormatWord is a styled HTML wrapper served with a Word MIME type so
	// word processors open it directly.
	FormatWord Format = "html"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Name string
	MIME string
	Data []byte
}

// Export renders a document in the requested format.
func Export(doc models.Document, format Format) (*ExportFile, error) {
	title := doc.Title
	if title == "" {
		title = "Untitled"
	}

	switch format {
	case FormatText:
		return &ExportFile{
			Name: title + ".txt",
			MIME: "text/plain; charset=utf-8",
			Data: []byte(htmltext.Text(doc.Content)),
		}, nil

	case FormatMarkdown:
		converter := md.NewConverter("", true, nil)
		out, err := converter.ConvertString(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("convert to markdown: %w", err)
		}
		return &ExportFile{
			Name: title + ".md",
			MIME: "text/markdown; charset=utf-8",
			Data: []byte(out),
		}, nil

	case FormatWord:
		return &ExportFile{
			Name: title + ".doc",
			MIME: "application/vnd.ms-word",
			Data: []byte(wrapStyled(title, doc.Content)),
		}, nil
	}

	return nil, &domain.ValidationError{Message: fmt.Sprintf("unknown export format %q", format)}
}

func wrapStyled(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>%[1]s</title>
  <style>
    body { font-family: 'Merriweather', serif; line-height: 1.6; color: #2D2D2D; }
    h1, h2, h3 { font-family: 'Inter', sans-serif; }
  </style>
</head>
<body>
  <h1>%[1]s</h1>
  %[2]s
</body>
</html>
`, stdhtml.EscapeString(title), content)
}
