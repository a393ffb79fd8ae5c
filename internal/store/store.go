// Package store owns the document and folder collections for the current
// identity, abstracting over the guest (local blob) and authenticated
// (remote) persistence strategies.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"inkflow/internal/domain"
	"inkflow/internal/domain/models"
	"inkflow/internal/domain/repositories"
	"inkflow/internal/repository/localstore"
)

// Mode selects the persistence strategy.
type Mode int

const (
	// ModeGuest persists to the local blob store, single device, no folders.
	ModeGuest Mode = iota
	// ModeRemote persists to the remote backend with live list pushes.
	ModeRemote
)

// Subscriber receives the full ordered document list after remote changes.
type Subscriber func(docs []models.Document)

// Store is the authoritative document/folder collection for one identity.
// Only the store mutates the collections; subscribers receive copies.
type Store struct {
	mu       sync.Mutex
	mode     Mode
	identity models.Identity
	logger   *slog.Logger

	// guest strategy
	local *localstore.Store
	docs  []models.Document // insertion-prepended order

	// remote strategy
	docRepo     repositories.DocumentRepository
	folderRepo  repositories.FolderRepository
	versionRepo repositories.VersionRepository
	txManager   repositories.TransactionManager
	snapshot    []models.Document // latest remote list, last-modified descending
	folders     []models.Folder

	// subsMu guards subs separately from mu so deliveries can run under a
	// read lock: Unsubscribe takes the write lock and therefore returns only
	// after any in-flight delivery has finished, making unsubscription
	// synchronous. Subscribers must not (un)subscribe from inside a callback.
	subsMu  sync.RWMutex
	subs    map[int]Subscriber
	nextSub int
}

// NewGuestStore creates a store backed by the local blob store. When no saved
// state exists the seed draft becomes the initial document.
func NewGuestStore(local *localstore.Store, logger *slog.Logger) *Store {
	docs := local.LoadDocuments()
	if docs == nil {
		docs = []models.Document{SeedDocument()}
	}
	return &Store{
		mode:     ModeGuest,
		identity: models.GuestIdentity,
		logger:   logger,
		local:    local,
		docs:     docs,
		subs:     make(map[int]Subscriber),
	}
}

// RemoteDeps bundles the remote-mode repositories.
type RemoteDeps struct {
	Documents repositories.DocumentRepository
	Folders   repositories.FolderRepository
	Versions  repositories.VersionRepository
	Tx        repositories.TransactionManager
}

// NewRemoteStore creates a store backed by the remote repositories for an
// authenticated identity and loads the initial snapshot.
func NewRemoteStore(ctx context.Context, identity models.Identity, deps RemoteDeps, logger *slog.Logger) (*Store, error) {
	s := &Store{
		mode:        ModeRemote,
		identity:    identity,
		logger:      logger,
		docRepo:     deps.Documents,
		folderRepo:  deps.Folders,
		versionRepo: deps.Versions,
		txManager:   deps.Tx,
		subs:        make(map[int]Subscriber),
	}
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Mode returns the persistence strategy in use.
func (s *Store) Mode() Mode {
	return s.mode
}

// Identity returns the identity the store was built for.
func (s *Store) Identity() models.Identity {
	return s.identity
}

// List returns the ordered document list: last-modified descending when
// authenticated, insertion-prepended for guest mode.
func (s *Store) List(ctx context.Context) []models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

// Get returns one document by id.
func (s *Store) Get(ctx context.Context, id string) (*models.Document, error) {
	if s.mode == ModeRemote {
		return s.docRepo.GetByID(ctx, id, s.identity.UserID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID == id {
			doc := s.docs[i]
			return &doc, nil
		}
	}
	return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}

// Create produces a new empty document whose id is immediately usable.
func (s *Store) Create(ctx context.Context, folderID *string) (*models.Document, error) {
	doc := models.Document{
		OwnerID:      s.identity.UserID,
		FolderID:     folderID,
		Title:        "",
		Content:      "",
		Preview:      "Empty draft...",
		LastModified: time.Now(),
	}

	if s.mode == ModeRemote {
		if err := s.docRepo.Create(ctx, &doc); err != nil {
			return nil, err
		}
		s.refreshAndNotify(ctx)
		return &doc, nil
	}

	doc.ID = fmt.Sprintf("doc-%d", time.Now().UnixMilli())
	s.mu.Lock()
	s.docs = append([]models.Document{doc}, s.docs...)
	s.persistGuestLocked()
	s.mu.Unlock()
	return &doc, nil
}

// Update merges patch fields into the document and recomputes LastModified.
// A missing id is a logged no-op; persistence failures are logged, never
// surfaced to the caller.
func (s *Store) Update(ctx context.Context, id string, patch models.DocumentPatch) {
	if s.mode == ModeRemote {
		doc, err := s.docRepo.GetByID(ctx, id, s.identity.UserID)
		if err != nil {
			s.logger.Warn("update skipped, document not found", "document_id", id, "error", err)
			return
		}
		applyPatch(doc, patch)
		doc.LastModified = time.Now()
		if err := s.docRepo.Update(ctx, doc); err != nil {
			s.logger.Error("remote document update failed", "document_id", id, "error", err)
			return
		}
		s.refreshAndNotify(ctx)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID == id {
			applyPatch(&s.docs[i], patch)
			s.docs[i].LastModified = time.Now()
			s.persistGuestLocked()
			return
		}
	}
	s.logger.Warn("update skipped, document not found", "document_id", id)
}

// Delete removes the document. Confirmation is the caller's concern; the
// caller is also responsible for selecting a replacement active document.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.mode == ModeRemote {
		if err := s.docRepo.Delete(ctx, id, s.identity.UserID); err != nil {
			return err
		}
		s.refreshAndNotify(ctx)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.docs {
		if s.docs[i].ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			s.persistGuestLocked()
			return nil
		}
	}
	return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}

// Subscribe registers a callback for remote list pushes and returns an
// unsubscribe function. Unsubscribing is synchronous: once it returns, no
// further deliveries happen. Guest mode registers but never pushes; guest
// mutations are local and synchronous.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// Folders returns the folder list (authenticated mode only; empty for guest).
func (s *Store) Folders(ctx context.Context) []models.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Folder, len(s.folders))
	copy(out, s.folders)
	return out
}

// CreateFolder creates a folder. Guest mode has no folders.
func (s *Store) CreateFolder(ctx context.Context, name string) (*models.Folder, error) {
	if s.mode != ModeRemote {
		return nil, &domain.UnsupportedError{Message: "folders require an account"}
	}
	folder := &models.Folder{
		Name:      name,
		OwnerID:   s.identity.UserID,
		CreatedAt: time.Now(),
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}
	s.refreshAndNotify(ctx)
	return folder, nil
}

// DeleteFolder removes the folder and reassigns every member document to
// root in a single transaction, so orphan repair is all-or-nothing.
func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	if s.mode != ModeRemote {
		return &domain.UnsupportedError{Message: "folders require an account"}
	}
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folderRepo.Delete(txCtx, id, s.identity.UserID); err != nil {
			return err
		}
		return s.docRepo.ClearFolder(txCtx, id, s.identity.UserID)
	})
	if err != nil {
		return err
	}
	s.refreshAndNotify(ctx)
	return nil
}

// SaveVersion appends an immutable compressed snapshot to the document's
// history. Restoring a version is a plain Update and deliberately does not
// create a new entry.
func (s *Store) SaveVersion(ctx context.Context, documentID, content, title string) error {
	if s.mode != ModeRemote {
		return &domain.UnsupportedError{Message: "version history requires an account"}
	}
	compressed, err := CompressContent(content)
	if err != nil {
		return err
	}
	return s.versionRepo.Append(ctx, documentID, title, compressed)
}

// ListVersions returns the document's snapshots newest-first, decompressed.
// A snapshot that fails to decompress is skipped and logged rather than
// poisoning the whole history.
func (s *Store) ListVersions(ctx context.Context, documentID string) ([]models.Version, error) {
	if s.mode != ModeRemote {
		return nil, &domain.UnsupportedError{Message: "version history requires an account"}
	}
	stored, err := s.versionRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	versions := make([]models.Version, 0, len(stored))
	for _, v := range stored {
		content, err := DecompressContent(v.Compressed)
		if err != nil {
			s.logger.Warn("skipping unreadable version snapshot", "version_id", v.ID, "error", err)
			continue
		}
		versions = append(versions, models.Version{
			ID:         v.ID,
			DocumentID: v.DocumentID,
			Title:      v.Title,
			Content:    content,
			CreatedAt:  v.CreatedAt,
		})
	}
	return versions, nil
}

// SeedDocument is the draft shown to first-time guests.
func SeedDocument() models.Document {
	content := `<h1>The Art of Fluidity</h1><p>Water does not resist. Water flows. When you plunge your hand into it, all you feel is a caress. Water is not a solid wall, it will not stop you. But water always goes where it wants to go, and nothing in the end can stand against it.</p><p>In writing, we seek this same property. We want words that move around obstacles, sentences that cascade into paragraphs with the inevitability of a river finding the sea.</p>`
	return models.Document{
		ID:           "doc-1",
		Title:        DeriveTitle(content),
		Content:      content,
		Preview:      DerivePreview(content),
		LastModified: time.Now(),
		FolderID:     nil,
	}
}

func applyPatch(doc *models.Document, patch models.DocumentPatch) {
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Content != nil {
		doc.Content = *patch.Content
	}
	if patch.Preview != nil {
		doc.Preview = *patch.Preview
	}
	if patch.MoveToRoot {
		doc.FolderID = nil
	} else if patch.FolderID != nil {
		doc.FolderID = patch.FolderID
	}
}

// currentLocked returns a copy of the active list. Callers hold s.mu.
func (s *Store) currentLocked() []models.Document {
	src := s.docs
	if s.mode == ModeRemote {
		src = s.snapshot
	}
	out := make([]models.Document, len(src))
	copy(out, src)
	return out
}

// persistGuestLocked serializes the guest blob. Callers hold s.mu.
func (s *Store) persistGuestLocked() {
	if err := s.local.SaveDocuments(s.docs); err != nil {
		s.logger.Error("guest document persistence failed", "error", err)
	}
}

// refresh reloads the remote snapshot (documents and folders).
func (s *Store) refresh(ctx context.Context) error {
	docs, err := s.docRepo.ListByOwner(ctx, s.identity.UserID)
	if err != nil {
		return err
	}
	folders, err := s.folderRepo.ListByOwner(ctx, s.identity.UserID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshot = docs
	s.folders = folders
	s.mu.Unlock()
	return nil
}

// refreshAndNotify reloads the snapshot after a committed mutation and
// pushes the full list to subscribers, mirroring a live-query channel.
// Callbacks run outside the store lock.
func (s *Store) refreshAndNotify(ctx context.Context) {
	if err := s.refresh(ctx); err != nil {
		s.logger.Error("remote snapshot refresh failed", "error", err)
		return
	}
	s.mu.Lock()
	docs := s.currentLocked()
	s.mu.Unlock()

	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, fn := range s.subs {
		fn(docs)
	}
}
