// database/bulletin_store.go
package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gewnthar/visabulletin/logger"
	"github.com/gewnthar/visabulletin/models"
)

// impossibleRowID never matches a real row: ids are assigned from 1 upward.
// Deletes filter on it so no statement is ever an unconditional DELETE.
const impossibleRowID = -1

const bulletinColumns = `id, category, china_current, india_current, mexico_current, philippines_current, global_current`

// Store persists bulletin tables and the sync metadata row.
type Store struct {
	db  *sqlx.DB
	log logger.Logger
}

func NewStore(db *sqlx.DB, log logger.Logger) *Store {
	return &Store{db: db, log: log.With(logger.String("component", "store"))}
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ReplaceTable deletes every row of kind's table and inserts rows, in one
// transaction. An empty rows slice leaves the table untouched.
func (s *Store) ReplaceTable(ctx context.Context, kind models.TableKind, rows []models.VisaCategoryRow) (int, error) {
	table := kind.TableName()
	if len(rows) == 0 {
		s.log.Debug("No rows provided, table left untouched", logger.String("table", table))
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction for %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM `+table+` WHERE id <> ?`), impossibleRowID); err != nil {
		return 0, fmt.Errorf("failed to delete old rows from %s: %w", table, err)
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO `+table+` (
			category, china_current, india_current, mexico_current,
			philippines_current, global_current
		) VALUES (?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert statement for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.Category, r.ChinaCurrent, r.IndiaCurrent, r.MexicoCurrent,
			r.PhilippinesCurrent, r.GlobalCurrent,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert %s row into %s: %w", r.Category, table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction for %s: %w", table, err)
	}

	s.log.Info("Replaced bulletin table", logger.String("table", table), logger.Int("rows", len(rows)))
	return len(rows), nil
}

// ListTable returns kind's rows in insertion order.
func (s *Store) ListTable(ctx context.Context, kind models.TableKind) ([]models.VisaCategoryRow, error) {
	rows := []models.VisaCategoryRow{}
	query := `SELECT ` + bulletinColumns + ` FROM ` + kind.TableName() + ` ORDER BY id ASC`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", kind.TableName(), err)
	}
	return rows, nil
}
