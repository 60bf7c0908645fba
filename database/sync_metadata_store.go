// database/sync_metadata_store.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gewnthar/visabulletin/logger"
	"github.com/gewnthar/visabulletin/models"
)

const metadataColumns = `id, last_sync_at, sync_status, records_updated, error_message, source_url`

func upsertMetadataQuery(driver string) string {
	insert := `INSERT INTO ` + metadataTable + ` (` + metadataColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	if driver == "mysql" {
		return insert + `
		ON DUPLICATE KEY UPDATE
			last_sync_at = VALUES(last_sync_at),
			sync_status = VALUES(sync_status),
			records_updated = VALUES(records_updated),
			error_message = VALUES(error_message),
			source_url = VALUES(source_url)`
	}
	return insert + `
		ON CONFLICT (id) DO UPDATE SET
			last_sync_at = excluded.last_sync_at,
			sync_status = excluded.sync_status,
			records_updated = excluded.records_updated,
			error_message = excluded.error_message,
			source_url = excluded.source_url`
}

// UpsertSyncMetadata overwrites the singleton metadata row.
func (s *Store) UpsertSyncMetadata(ctx context.Context, m models.SyncMetadata) error {
	query := s.db.Rebind(upsertMetadataQuery(s.db.DriverName()))
	_, err := s.db.ExecContext(ctx, query,
		models.SyncMetadataID, m.LastSyncAt.UTC(), string(m.SyncStatus),
		m.RecordsUpdated, m.ErrorMessage, m.SourceURL,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert sync metadata: %w", err)
	}
	s.log.Debug("Upserted sync metadata", logger.String("status", string(m.SyncStatus)))
	return nil
}

// GetSyncMetadata returns the metadata row, or nil when no sync ever ran.
func (s *Store) GetSyncMetadata(ctx context.Context) (*models.SyncMetadata, error) {
	var m models.SyncMetadata
	query := s.db.Rebind(`SELECT ` + metadataColumns + ` FROM ` + metadataTable + ` WHERE id = ?`)
	if err := s.db.GetContext(ctx, &m, query, models.SyncMetadataID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query sync metadata: %w", err)
	}
	return &m, nil
}
