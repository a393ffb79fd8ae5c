package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"inkflow/internal/domain"
)

const driveBaseURL = "https://www.googleapis.com/drive/v3"

// maxExternalBody caps how much of a remote export is read.
const maxExternalBody = 10 << 20

// ExternalImporter pulls a remote drive document in as HTML using a
// user-granted access token.
type ExternalImporter struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewExternalImporter creates an importer. A nil client uses the default.
func NewExternalImporter(client *http.Client, logger *slog.Logger) *ExternalImporter {
	if client == nil {
		client = http.DefaultClient
	}
	return &ExternalImporter{client: client, baseURL: driveBaseURL, logger: logger}
}

// Import fetches the named file's HTML export and extracts its body fragment
// as sanitized document content.
func (i *ExternalImporter) Import(ctx context.Context, accessToken, fileID string) (*ImportedDocument, error) {
	if accessToken == "" {
		return nil, &domain.UnauthorizedError{Message: "missing drive access token"}
	}

	title, err := i.fetchTitle(ctx, accessToken, fileID)
	if err != nil {
		return nil, err
	}

	exportURL := fmt.Sprintf("%s/files/%s/export?mimeType=%s",
		i.baseURL, url.PathEscape(fileID), url.QueryEscape("text/html"))
	raw, err := i.get(ctx, accessToken, exportURL)
	if err != nil {
		return nil, fmt.Errorf("export file %s: %w", fileID, err)
	}

	content, err := extractBody(raw)
	if err != nil {
		i.logger.Warn("could not extract body fragment, using full export",
			"file_id", fileID, "error", err)
		content = string(raw)
	}

	return &ImportedDocument{
		Title:   title,
		Content: importPolicy.Sanitize(content),
	}, nil
}

func (i *ExternalImporter) fetchTitle(ctx context.Context, accessToken, fileID string) (string, error) {
	metaURL := fmt.Sprintf("%s/files/%s?fields=name", i.baseURL, url.PathEscape(fileID))
	raw, err := i.get(ctx, accessToken, metaURL)
	if err != nil {
		return "", fmt.Errorf("fetch file metadata: %w", err)
	}

	var meta struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", fmt.Errorf("decode file metadata: %w", err)
	}

	return meta.Name, nil
}

func (i *ExternalImporter) get(ctx context.Context, accessToken, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &domain.UnauthorizedError{Message: "drive token rejected"}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &domain.NotFoundError{Message: "drive file not found"}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("drive returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxExternalBody))
}

// extractBody returns the inner HTML of the export's <body>.
func extractBody(raw []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return "", fmt.Errorf("no body element")
	}
	return body.Html()
}
