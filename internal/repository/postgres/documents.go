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

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	config *RepositoryConfig
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{config: config, logger: config.Logger}
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, folder_id, title, content, preview, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.config.Tables.Documents)

	executor := GetExecutor(ctx, r.config.Pool)
	_, err := executor.Exec(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.FolderID,
		doc.Title,
		doc.Content,
		doc.Preview,
		doc.LastModified,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID, scoped to its owner.
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, folder_id, title, content, preview, last_modified
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.config.Tables.Documents)

	var doc models.Document
	executor := GetExecutor(ctx, r.config.Pool)
	err := executor.QueryRow(ctx, query, id, ownerID).Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.FolderID,
		&doc.Title,
		&doc.Content,
		&doc.Preview,
		&doc.LastModified,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// Update persists the document's current field values.
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $3, title = $4, content = $5, preview = $6, last_modified = $7
		WHERE id = $1 AND owner_id = $2
	`, r.config.Tables.Documents)

	executor := GetExecutor(ctx, r.config.Pool)
	tag, err := executor.Exec(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.FolderID,
		doc.Title,
		doc.Content,
		doc.Preview,
		doc.LastModified,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a document. Version snapshots cascade via the schema.
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, r.config.Tables.Documents)

	executor := GetExecutor(ctx, r.config.Pool)
	tag, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByOwner returns all of an owner's documents, last-modified descending.
func (r *PostgresDocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, folder_id, title, content, preview, last_modified
		FROM %s
		WHERE owner_id = $1
		ORDER BY last_modified DESC
	`, r.config.Tables.Documents)

	executor := GetExecutor(ctx, r.config.Pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.OwnerID,
			&doc.FolderID,
			&doc.Title,
			&doc.Content,
			&doc.Preview,
			&doc.LastModified,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

// ClearFolder reassigns every document in the folder to root.
func (r *PostgresDocumentRepository) ClearFolder(ctx context.Context, folderID, ownerID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET folder_id = NULL WHERE folder_id = $1 AND owner_id = $2
	`, r.config.Tables.Documents)

	executor := GetExecutor(ctx, r.config.Pool)
	if _, err := executor.Exec(ctx, query, folderID, ownerID); err != nil {
		return fmt.Errorf("clear folder: %w", err)
	}

	return nil
}
