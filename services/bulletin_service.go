// services/bulletin_service.go
package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/gewnthar/visabulletin/logger"
	"github.com/gewnthar/visabulletin/models"
)

// SnapshotCache stores the rendered read-path snapshot.
type SnapshotCache interface {
	Get(ctx context.Context) (*models.BulletinSnapshot, bool, error)
	Set(ctx context.Context, snap *models.BulletinSnapshot) error
	SnapshotInvalidator
}

// BulletinService serves stored bulletin data to readers.
type BulletinService struct {
	Bulletins BulletinStore
	Metadata  MetadataStore
	Cache     SnapshotCache // optional
	Log       logger.Logger
}

// GetBulletin returns both tables decorated for display plus the last sync
// outcome. Cache errors degrade to a database read.
func (s *BulletinService) GetBulletin(ctx context.Context) (*models.BulletinSnapshot, error) {
	if s.Cache != nil {
		snap, ok, err := s.Cache.Get(ctx)
		if err != nil {
			s.Log.Warn("Bulletin cache read failed", logger.Error(err))
		} else if ok {
			return snap, nil
		}
	}

	action, err := s.Bulletins.ListTable(ctx, models.TableActionDates)
	if err != nil {
		return nil, fmt.Errorf("failed to load action dates: %w", err)
	}
	filing, err := s.Bulletins.ListTable(ctx, models.TableFilingDates)
	if err != nil {
		return nil, fmt.Errorf("failed to load filing dates: %w", err)
	}
	meta, err := s.Metadata.GetSyncMetadata(ctx)
	if err != nil {
		return nil, err
	}

	snap := &models.BulletinSnapshot{
		ActionDates: models.NewPresentationRows(action),
		FilingDates: models.NewPresentationRows(filing),
		Metadata:    meta,
		SyncStatus:  models.SyncStatusNeverSynced,
	}
	if meta != nil {
		snap.SyncStatus = meta.SyncStatus
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, snap); err != nil {
			s.Log.Warn("Bulletin cache write failed", logger.Error(err))
		}
	}
	return snap, nil
}

// ExportCSV writes one stored table as CSV with a header row. Null cells
// are written as empty fields.
func (s *BulletinService) ExportCSV(ctx context.Context, kind models.TableKind, w io.Writer) (int, error) {
	rows, err := s.Bulletins.ListTable(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", kind.TableName(), err)
	}

	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if len(rows) == 0 {
		if err := enc.EncodeHeader(models.VisaCategoryRow{}); err != nil {
			return 0, fmt.Errorf("failed to write CSV header: %w", err)
		}
	}
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return 0, fmt.Errorf("failed to encode %s row: %w", r.Category, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return len(rows), nil
}
