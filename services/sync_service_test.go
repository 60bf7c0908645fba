package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/visabulletin/config"
	"github.com/gewnthar/visabulletin/database"
	"github.com/gewnthar/visabulletin/logger"
	"github.com/gewnthar/visabulletin/metrics"
	"github.com/gewnthar/visabulletin/models"
	"github.com/gewnthar/visabulletin/scraper"
	"github.com/gewnthar/visabulletin/services"
)

const sourceURL = "https://travel.state.gov/visa-bulletin"

const bulletinPage = `<html><body>
<h2>表A 最终裁决日期</h2>
<table>
<tr><td>类别</td><td>中国</td><td>其他</td></tr>
<tr><td>EB-1</td><td>2022年11月15日</td><td>无需排期</td></tr>
<tr><td>EB-2</td><td>2021年05月01日 2023年02月15日</td><td>2023年01月01日</td></tr>
<tr><td>EB-5 Regional Center</td><td>暂无排期</td><td>不可用</td></tr>
</table>
<h2>表B 递交申请日期</h2>
<table>
<tr><td>EB-1</td><td>2023年01月01日</td><td>C</td></tr>
</table>
</body></html>`

type fetcherFunc func(ctx context.Context, url string) (string, error)

func (f fetcherFunc) FetchPage(ctx context.Context, url string) (string, error) { return f(ctx, url) }

func staticPage(html string) fetcherFunc {
	return func(context.Context, string) (string, error) { return html, nil }
}

type failingStore struct {
	services.BulletinStore
	err error
}

func (f failingStore) ReplaceTable(context.Context, models.TableKind, []models.VisaCategoryRow) (int, error) {
	return 0, f.err
}

type failingMetadata struct {
	services.MetadataStore
}

func (failingMetadata) UpsertSyncMetadata(context.Context, models.SyncMetadata) error {
	return errors.New("metadata table locked")
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func newStore(t *testing.T) *database.Store {
	t.Helper()
	db, err := database.Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := database.NewStore(db, logger.NewNop())
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func newParser() scraper.BulletinParser {
	return scraper.BulletinParser{
		Extractor:     scraper.RegexExtractor{},
		NewClassifier: func() scraper.TableClassifier { return scraper.OffsetClassifier{} },
		Markers:       []string{"递交申请日期", "DATES FOR FILING"},
	}
}

var fixedNow = time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC)

func newSyncService(store *database.Store, fetcher services.PageFetcher) *services.SyncService {
	return &services.SyncService{
		SourceURL: sourceURL,
		Fetcher:   fetcher,
		Parser:    newParser(),
		Bulletins: store,
		Metadata:  store,
		Log:       logger.NewNop(),
		Now:       func() time.Time { return fixedNow },
	}
}

func TestRunSync_Success(t *testing.T) {
	store := newStore(t)
	inv := &countingInvalidator{}
	m := metrics.NewSyncMetrics(prometheus.NewRegistry())
	svc := newSyncService(store, staticPage(bulletinPage))
	svc.Cache = inv
	svc.Metrics = m
	ctx := context.Background()

	res, err := svc.RunSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ActionDatesCount)
	assert.Equal(t, 1, res.FilingDatesCount)
	assert.Empty(t, res.SkippedTables)
	assert.Equal(t, fixedNow, res.Timestamp)
	assert.Equal(t, 1, inv.calls)

	action, err := store.ListTable(ctx, models.TableActionDates)
	require.NoError(t, err)
	require.Len(t, action, 3)
	eb2 := action[1]
	assert.Equal(t, "EB-2", eb2.Category)
	assert.Equal(t, "2023-02-15", *eb2.ChinaCurrent)
	assert.Equal(t, "2023-02-15", *eb2.IndiaCurrent)
	assert.Equal(t, "2023-01-01", *eb2.GlobalCurrent)
	eb5 := action[2]
	assert.Equal(t, "EB-5", eb5.Category)
	assert.Equal(t, "U", *eb5.ChinaCurrent)
	assert.Equal(t, "U", *eb5.GlobalCurrent)

	meta, err := store.GetSyncMetadata(ctx)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, models.SyncStatusSuccess, meta.SyncStatus)
	require.NotNil(t, meta.RecordsUpdated)
	assert.Equal(t, 4, *meta.RecordsUpdated)
	assert.Nil(t, meta.ErrorMessage)
	assert.Equal(t, sourceURL, meta.SourceURL)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("success")))
}

func TestRunSync_IsIdempotent(t *testing.T) {
	store := newStore(t)
	svc := newSyncService(store, staticPage(bulletinPage))
	ctx := context.Background()

	_, err := svc.RunSync(ctx)
	require.NoError(t, err)
	first, err := store.ListTable(ctx, models.TableActionDates)
	require.NoError(t, err)

	_, err = svc.RunSync(ctx)
	require.NoError(t, err)
	second, err := store.ListTable(ctx, models.TableActionDates)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		first[i].ID, second[i].ID = 0, 0
	}
	assert.Equal(t, first, second)
}

func TestRunSync_EmptyTableIsLeftUntouched(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	_, err := newSyncService(store, staticPage(bulletinPage)).RunSync(ctx)
	require.NoError(t, err)

	// A page without the filing marker yields only action rows.
	onlyAction := `<table><tr><td>EB-3</td><td>2020年1月1日</td><td>C</td></tr></table>`
	res, err := newSyncService(store, staticPage(onlyAction)).RunSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ActionDatesCount)
	assert.Zero(t, res.FilingDatesCount)
	assert.Equal(t, []string{"filing"}, res.SkippedTables)

	action, err := store.ListTable(ctx, models.TableActionDates)
	require.NoError(t, err)
	require.Len(t, action, 1)
	assert.Equal(t, "EB-3", action[0].Category)

	filing, err := store.ListTable(ctx, models.TableFilingDates)
	require.NoError(t, err)
	require.Len(t, filing, 1, "previous filing rows survive")
	assert.Equal(t, "EB-1", filing[0].Category)

	meta, err := store.GetSyncMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, *meta.RecordsUpdated)
}

func TestRunSync_NoRowsAtAllStillSucceeds(t *testing.T) {
	store := newStore(t)
	res, err := newSyncService(store, staticPage("<html><p>maintenance</p></html>")).RunSync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.ActionDatesCount)
	assert.Zero(t, res.FilingDatesCount)
	assert.Equal(t, []string{"action", "filing"}, res.SkippedTables)

	meta, err := store.GetSyncMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSuccess, meta.SyncStatus)
	assert.Equal(t, 0, *meta.RecordsUpdated)
}

func TestRunSync_FetchFailureRecordsError(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	_, err := newSyncService(store, staticPage(bulletinPage)).RunSync(ctx)
	require.NoError(t, err)

	statusErr := &scraper.StatusError{URL: sourceURL, StatusCode: 503}
	m := metrics.NewSyncMetrics(prometheus.NewRegistry())
	svc := newSyncService(store, fetcherFunc(func(context.Context, string) (string, error) {
		return "", statusErr
	}))
	svc.Metrics = m

	_, err = svc.RunSync(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrSyncFailed)

	var se *scraper.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 503, se.StatusCode)

	var syncErr *services.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, "fetch", syncErr.Stage)

	meta, err := store.GetSyncMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusError, meta.SyncStatus)
	require.NotNil(t, meta.ErrorMessage)
	assert.Equal(t, statusErr.Error(), *meta.ErrorMessage)
	assert.Nil(t, meta.RecordsUpdated)

	action, err := store.ListTable(ctx, models.TableActionDates)
	require.NoError(t, err)
	assert.Len(t, action, 3, "tables untouched on fetch failure")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("error")))
}

func TestRunSync_PersistFailureRecordsError(t *testing.T) {
	store := newStore(t)
	svc := newSyncService(store, staticPage(bulletinPage))
	svc.Bulletins = failingStore{BulletinStore: store, err: errors.New("deadlock")}

	_, err := svc.RunSync(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrSyncFailed)
	assert.Contains(t, err.Error(), "deadlock")

	meta, err := store.GetSyncMetadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusError, meta.SyncStatus)
	assert.Contains(t, *meta.ErrorMessage, "deadlock")
}

func TestRunSync_MetadataFailureDoesNotFailSync(t *testing.T) {
	store := newStore(t)
	svc := newSyncService(store, staticPage(bulletinPage))
	svc.Metadata = failingMetadata{}

	res, err := svc.RunSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.ActionDatesCount)
}

func TestRunSync_CancelledTriggerStillRecordsFailure(t *testing.T) {
	store := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := newSyncService(store, fetcherFunc(func(context.Context, string) (string, error) {
		cancel()
		return "", errors.New("client went away")
	}))

	_, err := svc.RunSync(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrSyncFailed)

	meta, err := store.GetSyncMetadata(context.Background())
	require.NoError(t, err)
	require.NotNil(t, meta, "failure is recorded even though the caller's context is done")
	assert.Equal(t, models.SyncStatusError, meta.SyncStatus)
	require.NotNil(t, meta.ErrorMessage)
	assert.Equal(t, "client went away", *meta.ErrorMessage)
}

func TestRunSync_FailureInvalidatesCachedSnapshot(t *testing.T) {
	store := newStore(t)
	cache := &memoryCache{}
	ctx := context.Background()
	reader := &services.BulletinService{Bulletins: store, Metadata: store, Cache: cache, Log: logger.NewNop()}

	ok := newSyncService(store, staticPage(bulletinPage))
	ok.Cache = cache
	_, err := ok.RunSync(ctx)
	require.NoError(t, err)

	snap, err := reader.GetBulletin(ctx)
	require.NoError(t, err)
	require.Equal(t, models.SyncStatusSuccess, snap.SyncStatus)
	require.NotNil(t, cache.snap)

	failing := newSyncService(store, fetcherFunc(func(context.Context, string) (string, error) {
		return "", &scraper.StatusError{URL: sourceURL, StatusCode: 502}
	}))
	failing.Cache = cache
	_, err = failing.RunSync(ctx)
	require.Error(t, err)
	assert.Nil(t, cache.snap)

	snap, err = reader.GetBulletin(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusError, snap.SyncStatus)
	require.NotNil(t, snap.Metadata)
	assert.Contains(t, *snap.Metadata.ErrorMessage, "502")
	assert.Len(t, snap.ActionDates, 3, "rows from the last good sync are still served")
}

func TestRunSync_AllTablesSkippedInvalidatesCache(t *testing.T) {
	store := newStore(t)
	cache := &memoryCache{snap: &models.BulletinSnapshot{SyncStatus: models.SyncStatusError}}
	svc := newSyncService(store, staticPage("<html><p>maintenance</p></html>"))
	svc.Cache = cache

	res, err := svc.RunSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"action", "filing"}, res.SkippedTables)
	assert.Nil(t, cache.snap)
	assert.Equal(t, 1, cache.invalids)
}
