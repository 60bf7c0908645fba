// database/schema.go
package database

import (
	"context"
	"fmt"

	"github.com/gewnthar/visabulletin/models"
)

const metadataTable = "visa_bulletin_sync_metadata"

func bulletinTableDDL(driver, table string) string {
	id := "id BIGINT AUTO_INCREMENT PRIMARY KEY"
	created := "created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP"
	suffix := " DEFAULT CHARSET=utf8mb4"
	switch driver {
	case "pgx":
		id = "id BIGSERIAL PRIMARY KEY"
		created = "created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()"
		suffix = ""
	case "sqlite":
		id = "id INTEGER PRIMARY KEY AUTOINCREMENT"
		suffix = ""
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		%s,
		category VARCHAR(64) NOT NULL,
		china_current VARCHAR(16) NULL,
		india_current VARCHAR(16) NULL,
		mexico_current VARCHAR(16) NULL,
		philippines_current VARCHAR(16) NULL,
		global_current VARCHAR(16) NULL,
		%s
	)%s`, table, id, created, suffix)
}

func metadataTableDDL(driver string) string {
	ts := "TIMESTAMP"
	if driver == "pgx" {
		ts = "TIMESTAMPTZ"
	}
	if driver == "mysql" {
		ts = "DATETIME(6)"
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id INTEGER NOT NULL PRIMARY KEY,
		last_sync_at %s NOT NULL,
		sync_status VARCHAR(16) NOT NULL,
		records_updated INTEGER NULL,
		error_message TEXT NULL,
		source_url TEXT NOT NULL
	)`, metadataTable, ts)
}

// Migrate creates the bulletin and metadata tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		bulletinTableDDL(s.db.DriverName(), models.TableActionDates.TableName()),
		bulletinTableDDL(s.db.DriverName(), models.TableFilingDates.TableName()),
		metadataTableDDL(s.db.DriverName()),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	s.log.Info("Database schema is up to date")
	return nil
}
