package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"inkflow/internal/domain/repositories"
)

// PostgresVersionRepository implements the VersionRepository interface.
// Rows are write-once; there is no update or delete path.
type PostgresVersionRepository struct {
	config *RepositoryConfig
	logger *slog.Logger
}

// NewVersionRepository creates a new version repository
func NewVersionRepository(config *RepositoryConfig) repositories.VersionRepository {
	return &PostgresVersionRepository{config: config, logger: config.Logger}
}

// Append adds a snapshot with pre-compressed content bytes.
func (r *PostgresVersionRepository) Append(ctx context.Context, documentID, title string, compressed []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, document_id, title, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.config.Tables.Versions)

	executor := GetExecutor(ctx, r.config.Pool)
	_, err := executor.Exec(ctx, query, uuid.NewString(), documentID, title, compressed, time.Now())
	if err != nil {
		return fmt.Errorf("append version: %w", err)
	}

	return nil
}

// ListByDocument returns snapshots newest-first with compressed content.
func (r *PostgresVersionRepository) ListByDocument(ctx context.Context, documentID string) ([]repositories.StoredVersion, error) {
	query := fmt.Sprintf(`
		SELECT id, document_id, title, content, created_at
		FROM %s
		WHERE document_id = $1
		ORDER BY created_at DESC
	`, r.config.Tables.Versions)

	executor := GetExecutor(ctx, r.config.Pool)
	rows, err := executor.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []repositories.StoredVersion
	for rows.Next() {
		var v repositories.StoredVersion
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Title, &v.Compressed, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}

	return versions, nil
}
