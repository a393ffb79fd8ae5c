package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inkflow/internal/domain/repositories"
)

// PostgresSettingsRepository implements the SettingsRepository interface
type PostgresSettingsRepository struct {
	config *RepositoryConfig
	logger *slog.Logger
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(config *RepositoryConfig) repositories.SettingsRepository {
	return &PostgresSettingsRepository{config: config, logger: config.Logger}
}

// Get retrieves the raw settings blob for a user. Missing settings are not
// an error; the caller merges defaults either way.
func (r *PostgresSettingsRepository) Get(ctx context.Context, ownerID string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT settings FROM %s WHERE owner_id = $1`, r.config.Tables.Settings)

	var raw []byte
	executor := GetExecutor(ctx, r.config.Pool)
	err := executor.QueryRow(ctx, query, ownerID).Scan(&raw)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}

	return raw, nil
}

// Upsert creates or replaces the user's settings blob.
func (r *PostgresSettingsRepository) Upsert(ctx context.Context, ownerID string, raw []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, settings, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id) DO UPDATE SET
			settings = EXCLUDED.settings,
			updated_at = EXCLUDED.updated_at
	`, r.config.Tables.Settings)

	executor := GetExecutor(ctx, r.config.Pool)
	if _, err := executor.Exec(ctx, query, ownerID, raw, time.Now()); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}

	return nil
}
