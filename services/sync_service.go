// services/sync_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gewnthar/visabulletin/logger"
	"github.com/gewnthar/visabulletin/metrics"
	"github.com/gewnthar/visabulletin/models"
)

// ErrSyncFailed is matched by every error RunSync returns.
var ErrSyncFailed = errors.New("visa bulletin sync failed")

// SyncError carries the stage that failed. Its message is the cause's
// message so it can be stored and returned to callers verbatim.
type SyncError struct {
	Stage string
	Err   error
}

func (e *SyncError) Error() string   { return e.Err.Error() }
func (e *SyncError) Unwrap() []error { return []error{ErrSyncFailed, e.Err} }

// PageFetcher downloads the source document.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// BulletinParser turns a document into action and filing rows.
type BulletinParser interface {
	Parse(html string) (models.Bulletin, error)
}

// BulletinStore persists and reads the two bulletin tables.
type BulletinStore interface {
	ReplaceTable(ctx context.Context, kind models.TableKind, rows []models.VisaCategoryRow) (int, error)
	ListTable(ctx context.Context, kind models.TableKind) ([]models.VisaCategoryRow, error)
}

// MetadataStore persists the singleton sync metadata row.
type MetadataStore interface {
	UpsertSyncMetadata(ctx context.Context, m models.SyncMetadata) error
	GetSyncMetadata(ctx context.Context) (*models.SyncMetadata, error)
}

// SnapshotInvalidator drops a cached read-path snapshot.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context) error
}

// SyncResult summarizes one successful invocation.
type SyncResult struct {
	ActionDatesCount int
	FilingDatesCount int
	SkippedTables    []string
	Timestamp        time.Time
}

// finalizeTimeout bounds the metadata write and cache invalidation that close
// every run. They run detached from the caller's context so a cancelled
// trigger still records its outcome.
const finalizeTimeout = 10 * time.Second

// SyncService runs fetch, extract and persist to completion.
type SyncService struct {
	SourceURL string
	Fetcher   PageFetcher
	Parser    BulletinParser
	Bulletins BulletinStore
	Metadata  MetadataStore
	Log       logger.Logger

	// Optional.
	Metrics *metrics.SyncMetrics
	Cache   SnapshotInvalidator
	Now     func() time.Time
}

func (s *SyncService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RunSync performs one full synchronization. Any failure is recorded in the
// metadata row and returned as a *SyncError; no stage is retried.
func (s *SyncService) RunSync(ctx context.Context) (SyncResult, error) {
	started := time.Now()
	s.Log.Info("Starting visa bulletin sync", logger.String("source_url", s.SourceURL))

	result, stage, err := s.run(ctx)
	if err != nil {
		s.Log.Error("Visa bulletin sync failed",
			logger.String("stage", stage),
			logger.Error(err),
			logger.Duration("elapsed", time.Since(started)),
		)
		s.finalize(ctx, models.NewErrorMetadata(s.now(), s.SourceURL, err))
		if s.Metrics != nil {
			s.Metrics.ObserveFailure(started)
		}
		return SyncResult{}, &SyncError{Stage: stage, Err: err}
	}

	result.Timestamp = s.now()
	total := result.ActionDatesCount + result.FilingDatesCount
	s.finalize(ctx, models.NewSuccessMetadata(result.Timestamp, s.SourceURL, total))

	if s.Metrics != nil {
		s.Metrics.ObserveSuccess(started, result.ActionDatesCount, result.FilingDatesCount, result.SkippedTables)
	}
	s.Log.Info("Visa bulletin sync completed",
		logger.Int("action_dates", result.ActionDatesCount),
		logger.Int("filing_dates", result.FilingDatesCount),
		logger.Strings("skipped_tables", result.SkippedTables),
		logger.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (s *SyncService) run(ctx context.Context) (SyncResult, string, error) {
	var result SyncResult

	html, err := s.Fetcher.FetchPage(ctx, s.SourceURL)
	if err != nil {
		return result, "fetch", err
	}
	s.Log.Debug("Fetched source document", logger.Int("bytes", len(html)))

	bulletin, err := s.Parser.Parse(html)
	if err != nil {
		return result, "extract", err
	}
	result.ActionDatesCount = len(bulletin.ActionDates)
	result.FilingDatesCount = len(bulletin.FilingDates)

	for _, kind := range []models.TableKind{models.TableActionDates, models.TableFilingDates} {
		rows := bulletin.Rows(kind)
		if len(rows) == 0 {
			s.Log.Warn("No rows extracted, leaving table untouched",
				logger.String("table", kind.TableName()))
			result.SkippedTables = append(result.SkippedTables, string(kind))
			continue
		}
		if _, err := s.Bulletins.ReplaceTable(ctx, kind, rows); err != nil {
			return result, "persist", fmt.Errorf("failed to replace %s: %w", kind.TableName(), err)
		}
	}
	return result, "", nil
}

// finalize records the outcome and then drops the cached snapshot, which
// embeds the metadata row, whatever the outcome was.
func (s *SyncService) finalize(ctx context.Context, m models.SyncMetadata) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()
	s.writeMetadata(ctx, m)
	s.invalidateCache(ctx)
}

func (s *SyncService) invalidateCache(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		s.Log.Warn("Failed to invalidate bulletin cache", logger.Error(err))
	}
}

// writeMetadata never fails the sync; a lost metadata write is only logged.
func (s *SyncService) writeMetadata(ctx context.Context, m models.SyncMetadata) {
	if err := s.Metadata.UpsertSyncMetadata(ctx, m); err != nil {
		s.Log.Error("Failed to write sync metadata",
			logger.String("status", string(m.SyncStatus)),
			logger.Error(err),
		)
	}
}
