package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"inkflow/internal/assistant"
	"inkflow/internal/domain"
	"inkflow/internal/domain/models"
	"inkflow/internal/domain/repositories"
	"inkflow/internal/editor"
	"inkflow/internal/ghost"
	"inkflow/internal/repository/localstore"
	"inkflow/internal/store"
)

// Workspace bundles everything one identity works with: its document store,
// the single live editor session, the ghost coordinator attached to that
// session, the assistant conversation, and settings persistence.
type Workspace struct {
	identity models.Identity
	logger   *slog.Logger

	Store     *store.Store
	Session   *editor.Session
	Ghost     *ghost.Coordinator
	Assistant *assistant.Assistant

	// settings backends; exactly one is set depending on mode
	settingsRepo repositories.SettingsRepository
	local        *localstore.Store

	mu          sync.Mutex
	activeID    string
	unsubscribe func()
}

// ActiveID returns the currently open document id.
func (w *Workspace) ActiveID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeID
}

// ActiveDocument returns the currently open document from the store.
func (w *Workspace) ActiveDocument(ctx context.Context) (*models.Document, error) {
	id := w.ActiveID()
	if id == "" {
		return nil, fmt.Errorf("no active document: %w", domain.ErrNotFound)
	}
	return w.Store.Get(ctx, id)
}

// SelectDocument makes the document the active one: the editor session
// reloads its buffer and any live suggestion is cancelled.
func (w *Workspace) SelectDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := w.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	w.Ghost.DocumentSwitched()
	w.Session.Open(*doc)

	w.mu.Lock()
	w.activeID = doc.ID
	w.mu.Unlock()
	return doc, nil
}

// CreateDocument creates an empty draft and selects it.
func (w *Workspace) CreateDocument(ctx context.Context, folderID *string) (*models.Document, error) {
	doc, err := w.Store.Create(ctx, folderID)
	if err != nil {
		return nil, err
	}
	return w.SelectDocument(ctx, doc.ID)
}

// ImportDocument creates a document seeded with imported content and
// selects it. Title falls back to the content-derived title when empty.
func (w *Workspace) ImportDocument(ctx context.Context, title, content string) (*models.Document, error) {
	doc, err := w.Store.Create(ctx, nil)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = store.DeriveTitle(content)
	}
	preview := store.DerivePreview(content)
	w.Store.Update(ctx, doc.ID, models.DocumentPatch{
		Title:   &title,
		Content: &content,
		Preview: &preview,
	})
	return w.SelectDocument(ctx, doc.ID)
}

// DeleteDocument removes the document. Deleting the active document selects
// the first remaining one, or creates a fresh draft when none remain.
func (w *Workspace) DeleteDocument(ctx context.Context, id string) (*models.Document, error) {
	if err := w.Store.Delete(ctx, id); err != nil {
		return nil, err
	}
	if w.ActiveID() != id {
		return w.ActiveDocument(ctx)
	}

	w.Ghost.DocumentSwitched()
	w.Session.Close()
	w.mu.Lock()
	w.activeID = ""
	w.mu.Unlock()

	if remaining := w.Store.List(ctx); len(remaining) > 0 {
		return w.SelectDocument(ctx, remaining[0].ID)
	}
	return w.CreateDocument(ctx, nil)
}

// RestoreVersion rewrites the document from a history snapshot. This is a
// plain update: restoring does not append a new version entry, so repeated
// restores cannot grow the history unboundedly.
func (w *Workspace) RestoreVersion(ctx context.Context, documentID, versionID string) (*models.Document, error) {
	versions, err := w.Store.ListVersions(ctx, documentID)
	if err != nil {
		return nil, err
	}

	for _, v := range versions {
		if v.ID != versionID {
			continue
		}
		preview := store.DerivePreview(v.Content)
		w.Store.Update(ctx, documentID, models.DocumentPatch{
			Title:   &v.Title,
			Content: &v.Content,
			Preview: &preview,
		})
		if w.ActiveID() == documentID {
			// Reload the session so the buffer reflects the restore.
			return w.SelectDocument(ctx, documentID)
		}
		return w.Store.Get(ctx, documentID)
	}

	return nil, fmt.Errorf("version %s: %w", versionID, domain.ErrNotFound)
}

// Settings returns the identity's editor settings merged onto defaults.
func (w *Workspace) Settings(ctx context.Context) models.EditorSettings {
	raw := w.loadSettingsBlob(ctx)
	return models.MergeSettings(raw)
}

// UpdateSettings overlays the patch and persists the result.
func (w *Workspace) UpdateSettings(ctx context.Context, patch *models.SettingsPatch) (models.EditorSettings, error) {
	settings := w.Settings(ctx)
	settings.Apply(patch)

	raw, err := json.Marshal(settings)
	if err != nil {
		return settings, fmt.Errorf("serialize settings: %w", err)
	}
	if err := w.saveSettingsBlob(ctx, raw); err != nil {
		return settings, err
	}
	return settings, nil
}

// Close tears the workspace down: the store subscription is removed first so
// no external push can touch the session afterwards.
func (w *Workspace) Close() {
	w.mu.Lock()
	unsub := w.unsubscribe
	w.unsubscribe = nil
	w.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	w.Ghost.Close()
	w.Session.Close()
}

func (w *Workspace) loadSettingsBlob(ctx context.Context) []byte {
	if w.settingsRepo != nil {
		raw, err := w.settingsRepo.Get(ctx, w.identity.UserID)
		if err != nil {
			w.logger.Warn("failed to load settings, using defaults", "error", err)
			return nil
		}
		return raw
	}
	return w.local.LoadSettings()
}

func (w *Workspace) saveSettingsBlob(ctx context.Context, raw []byte) error {
	if w.settingsRepo != nil {
		return w.settingsRepo.Upsert(ctx, w.identity.UserID, raw)
	}
	return w.local.SaveSettings(raw)
}

// handleStorePush is the remote subscription callback: when the active
// document's content changed externally, the session buffer resets to it.
func (w *Workspace) handleStorePush(docs []models.Document) {
	id := w.ActiveID()
	if id == "" {
		return
	}
	for i := range docs {
		if docs[i].ID == id {
			w.Session.SyncExternal(docs[i])
			return
		}
	}
}
