package repositories

import (
	"context"
	"time"

	"inkflow/internal/domain/models"
)

// DocumentRepository defines data access for remote document persistence.
// Listings are ordered newest-modified-first, scoped to one owner.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error

	GetByID(ctx context.Context, id, ownerID string) (*models.Document, error)

	// Update persists the document's current field values and LastModified.
	Update(ctx context.Context, doc *models.Document) error

	Delete(ctx context.Context, id, ownerID string) error

	// ListByOwner returns all of an owner's documents, last-modified descending.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error)

	// ClearFolder reassigns every document in the folder to root (folder_id = NULL).
	ClearFolder(ctx context.Context, folderID, ownerID string) error
}

// FolderRepository defines data access for folders (authenticated mode only).
type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error

	Delete(ctx context.Context, id, ownerID string) error

	// ListByOwner returns all of an owner's folders, newest-created first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Folder, error)
}

// VersionRepository stores write-once document snapshots. Content is held
// compressed; the codec lives above this layer.
type VersionRepository interface {
	// Append adds a snapshot with pre-compressed content bytes.
	Append(ctx context.Context, documentID, title string, compressed []byte) error

	// ListByDocument returns snapshots newest-first with compressed content.
	ListByDocument(ctx context.Context, documentID string) ([]StoredVersion, error)
}

// StoredVersion is a version row as persisted (content still compressed).
type StoredVersion struct {
	ID         string
	DocumentID string
	Title      string
	Compressed []byte
	CreatedAt  time.Time
}

// SettingsRepository persists the per-user editor settings blob.
type SettingsRepository interface {
	Get(ctx context.Context, ownerID string) ([]byte, error)
	Upsert(ctx context.Context, ownerID string, raw []byte) error
}
