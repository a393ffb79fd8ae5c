package models

import (
	"time"
)

// Document is one draft owned by a single identity. Content is the serialized
// rich-text HTML the editor produces; Title and Preview are always derivable
// from Content and are recomputed on every commit.
type Document struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id,omitempty"`
	FolderID     *string   `json:"folder_id"` // nil = root level
	Title        string    `json:"title"`
	Content      string    `json:"content"` // HTML content
	Preview      string    `json:"preview"`
	LastModified time.Time `json:"last_modified"`
}

// DocumentPatch carries a partial update. Nil fields are left untouched;
// LastModified is always recomputed by the store.
type DocumentPatch struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Preview  *string `json:"preview,omitempty"`
	FolderID *string `json:"folder_id,omitempty"`
	// MoveToRoot distinguishes "set folder_id to null" from "leave unchanged"
	MoveToRoot bool `json:"move_to_root,omitempty"`
}

// Version is an immutable, compressed snapshot of a document at a point in time.
type Version struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"` // decompressed on read
	CreatedAt  time.Time `json:"created_at"`
}
