package convert

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkflow/internal/domain"
	"inkflow/internal/domain/models"
)

func TestExportText(t *testing.T) {
	doc := models.Document{
		Title:   "Field Notes",
		Content: "<h1>Field Notes</h1><p>Day one was wet.</p><p>Day two, wetter.</p>",
	}

	file, err := Export(doc, FormatText)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if file.Name != "Field Notes.txt" {
		t.Errorf("Name = %q", file.Name)
	}
	want := "Field Notes\nDay one was wet.\nDay two, wetter."
	if string(file.Data) != want {
		t.Errorf("Data = %q, want %q", file.Data, want)
	}
}

func TestExportMarkdown(t *testing.T) {
	doc := models.Document{
		Title:   "Notes",
		Content: "<h1>Heading</h1><p>Some <strong>bold</strong> and <em>italic</em> text.</p>",
	}

	file, err := Export(doc, FormatMarkdown)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	out := string(file.Data)
	if !strings.Contains(out, "# Heading") {
		t.Errorf("markdown missing heading: %q", out)
	}
	if !strings.Contains(out, "**bold**") || !strings.Contains(out, "_italic_") {
		t.Errorf("markdown missing emphasis: %q", out)
	}
}

func TestExportWordWrapper(t *testing.T) {
	doc := models.Document{Title: "A & B", Content: "<p>body text</p>"}

	file, err := Export(doc, FormatWord)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if file.Name != "A & B.doc" {
		t.Errorf("Name = %q", file.Name)
	}
	if file.MIME != "application/vnd.ms-word" {
		t.Errorf("MIME = %q", file.MIME)
	}
	out := string(file.Data)
	if !strings.Contains(out, "<title>A &amp; B</title>") {
		t.Errorf("title not escaped: %q", out)
	}
	if !strings.Contains(out, "<p>body text</p>") {
		t.Errorf("content missing: %q", out)
	}
	if !strings.Contains(out, "Merriweather") {
		t.Error("styled wrapper missing font rules")
	}
}

func TestExportUntitledFallback(t *testing.T) {
	file, err := Export(models.Document{Content: "<p>x</p>"}, FormatText)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if file.Name != "Untitled.txt" {
		t.Errorf("Name = %q", file.Name)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := Export(models.Document{}, Format("pdf"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestFromUploadWrapsLines(t *testing.T) {
	data := []byte("First line\n\n  \nSecond line\r\nThird & final\n")

	got := FromUpload("trip-notes.txt", data)

	if got.Title != "trip-notes" {
		t.Errorf("Title = %q", got.Title)
	}
	want := "<p>First line</p><p>Second line</p><p>Third &amp; final</p>"
	if got.Content != want {
		t.Errorf("Content = %q,\nwant    %q", got.Content, want)
	}
}

func TestFromUploadSanitizesHTML(t *testing.T) {
	data := []byte(`<p>fine</p><script>alert("nope")</script><p onclick="x()">also fine</p>`)

	got := FromUpload("draft.html", data)

	if strings.Contains(got.Content, "script") || strings.Contains(got.Content, "onclick") {
		t.Errorf("unsanitized content: %q", got.Content)
	}
	if !strings.Contains(got.Content, "<p>fine</p>") {
		t.Errorf("safe markup stripped: %q", got.Content)
	}
}

func TestExternalImport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case strings.Contains(r.URL.Path, "/export"):
			w.Write([]byte(`<html><head><style>junk</style></head><body><h1>Remote Doc</h1><p>imported body</p></body></html>`))
		default:
			w.Write([]byte(`{"name": "Remote Doc"}`))
		}
	}))
	defer server.Close()

	importer := NewExternalImporter(server.Client(), slog.Default())
	importer.baseURL = server.URL

	got, err := importer.Import(context.Background(), "token-1", "file-123")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got.Title != "Remote Doc" {
		t.Errorf("Title = %q", got.Title)
	}
	if !strings.Contains(got.Content, "<p>imported body</p>") {
		t.Errorf("Content = %q, want extracted body fragment", got.Content)
	}
	if strings.Contains(got.Content, "<body") || strings.Contains(got.Content, "junk") {
		t.Errorf("Content = %q, head/body wrapper should be stripped", got.Content)
	}
}

func TestExternalImportRejectsBadToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	importer := NewExternalImporter(server.Client(), slog.Default())
	importer.baseURL = server.URL

	if _, err := importer.Import(context.Background(), "stale", "f"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("err = %v, want unauthorized", err)
	}

	if _, err := importer.Import(context.Background(), "", "f"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("missing token err = %v, want unauthorized", err)
	}
}
