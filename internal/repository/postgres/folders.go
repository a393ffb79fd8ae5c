package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"inkflow/internal/domain"
	"inkflow/internal/domain/models"
	"inkflow/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	config *RepositoryConfig
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{config: config, logger: config.Logger}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, r.config.Tables.Folders)

	executor := GetExecutor(ctx, r.config.Pool)
	if _, err := executor.Exec(ctx, query, folder.ID, folder.OwnerID, folder.Name, folder.CreatedAt); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// Delete removes a folder. Member documents are reassigned by the caller
// inside the same transaction (see store.DeleteFolder).
func (r *PostgresFolderRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, r.config.Tables.Folders)

	executor := GetExecutor(ctx, r.config.Pool)
	tag, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByOwner returns all of an owner's folders, newest-created first.
func (r *PostgresFolderRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, name, created_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, r.config.Tables.Folders)

	executor := GetExecutor(ctx, r.config.Pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		if err := rows.Scan(&folder.ID, &folder.OwnerID, &folder.Name, &folder.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	return folders, nil
}
