package localstore

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"inkflow/internal/domain/models"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := New(dir, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, dir
}

func TestLoadDocumentsMissingBlob(t *testing.T) {
	s, _ := newTestStore(t)
	if docs := s.LoadDocuments(); docs != nil {
		t.Errorf("expected nil for missing blob, got %+v", docs)
	}
}

func TestLoadDocumentsCorruptBlob(t *testing.T) {
	s, dir := newTestStore(t)
	if err := os.WriteFile(filepath.Join(dir, documentsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if docs := s.LoadDocuments(); docs != nil {
		t.Errorf("expected nil for corrupt blob, got %+v", docs)
	}
}

func TestDocumentsRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	docs := []models.Document{
		{
			ID:           "doc-2",
			Title:        "Second",
			Content:      "<p>newer</p>",
			Preview:      "newer",
			LastModified: time.Now().Truncate(time.Second),
		},
		{
			ID:           "doc-1",
			Title:        "First",
			Content:      "<p>older</p>",
			Preview:      "older",
			LastModified: time.Now().Add(-time.Hour).Truncate(time.Second),
		},
	}
	if err := s.SaveDocuments(docs); err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}

	got := s.LoadDocuments()
	if len(got) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(got))
	}
	// Order is preserved, not re-sorted.
	if got[0].ID != "doc-2" || got[1].ID != "doc-1" {
		t.Errorf("order changed: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Content != "<p>newer</p>" || got[0].Title != "Second" {
		t.Errorf("got[0] = %+v", got[0])
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	if raw := s.LoadSettings(); raw != nil {
		t.Errorf("expected nil for missing settings, got %q", raw)
	}

	blob := []byte(`{"fontSize":20}`)
	if err := s.SaveSettings(blob); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if got := s.LoadSettings(); string(got) != string(blob) {
		t.Errorf("LoadSettings = %q, want %q", got, blob)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	s, dir := newTestStore(t)
	if err := s.SaveDocuments([]models.Document{{ID: "doc-1"}}); err != nil {
		t.Fatalf("SaveDocuments: %v", err)
	}
	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}
