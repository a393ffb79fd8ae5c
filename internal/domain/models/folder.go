package models

import (
	"time"
)

// Folder groups documents one level deep. Folders exist only in authenticated
// mode; every document's FolderID either references a folder owned by the same
// user or is nil (root).
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}
