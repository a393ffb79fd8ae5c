// Package localstore is the guest-mode persistence backend: the full document
// list serialized as a single JSON blob under a fixed namespace, plus a second
// blob for editor settings. The remote backend's analog of localStorage.
package localstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"inkflow/internal/domain/models"
)

const (
	documentsFile = "ink-flow-docs.json"
	settingsFile  = "ink-flow-settings.json"
)

// Store reads and writes the guest blobs under one directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates the blob store, ensuring the directory exists.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create local store directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// LoadDocuments returns the saved document list in its persisted order.
// A missing or corrupt blob is treated as "no saved documents", never an error.
func (s *Store) LoadDocuments() []models.Document {
	raw, err := os.ReadFile(filepath.Join(s.dir, documentsFile))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read local documents", "error", err)
		}
		return nil
	}
	var docs []models.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		s.logger.Warn("corrupt local document blob, starting empty", "error", err)
		return nil
	}
	return docs
}

// SaveDocuments serializes the full list. Write goes through a temp file and
// rename so a crash never leaves a half-written blob.
func (s *Store) SaveDocuments(docs []models.Document) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("serialize local documents: %w", err)
	}
	return s.writeBlob(documentsFile, raw)
}

// LoadSettings returns the raw settings blob, or nil when absent.
func (s *Store) LoadSettings() []byte {
	raw, err := os.ReadFile(filepath.Join(s.dir, settingsFile))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read local settings", "error", err)
		}
		return nil
	}
	return raw
}

// SaveSettings persists the raw settings blob.
func (s *Store) SaveSettings(raw []byte) error {
	return s.writeBlob(settingsFile, raw)
}

func (s *Store) writeBlob(name string, raw []byte) error {
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
