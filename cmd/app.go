// cmd/app.go
package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/gewnthar/visabulletin/cache"
	"github.com/gewnthar/visabulletin/config"
	"github.com/gewnthar/visabulletin/database"
	"github.com/gewnthar/visabulletin/logger"
	"github.com/gewnthar/visabulletin/metrics"
	"github.com/gewnthar/visabulletin/scraper"
	"github.com/gewnthar/visabulletin/services"
)

// app holds every wired component for one process.
type app struct {
	cfg       config.Config
	log       logger.Logger
	db        *sqlx.DB
	store     *database.Store
	redis     *redis.Client
	registry  *prometheus.Registry
	metrics   *metrics.SyncMetrics
	sync      *services.SyncService
	bulletins *services.BulletinService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	a.db, err = database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	a.store = database.NewStore(a.db, log)
	log.Info("Database connection established",
		logger.String("driver", cfg.Database.Driver),
		logger.String("dbname", cfg.Database.DBName))

	if cfg.Database.AutoMigrate {
		if err := a.store.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	var snapshots *cache.RedisCache
	if cfg.Redis.URL != "" {
		a.redis, err = cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			// The cache is an accelerator; run without it.
			log.Warn("Redis unavailable, bulletin cache disabled", logger.Error(err))
		} else {
			snapshots = cache.NewRedisCache(a.redis, cfg.Redis.TTL)
		}
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.NewSyncMetrics(a.registry)

	parser, err := scraper.NewBulletinParser(cfg.Scraper, log.With(logger.String("component", "parser")))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.sync = &services.SyncService{
		SourceURL: cfg.Scraper.SourceURL,
		Fetcher:   scraper.NewFetcher(cfg.Scraper.Timeout, cfg.Scraper.UserAgent),
		Parser:    parser,
		Bulletins: a.store,
		Metadata:  a.store,
		Log:       log.With(logger.String("component", "sync")),
		Metrics:   a.metrics,
	}
	a.bulletins = &services.BulletinService{
		Bulletins: a.store,
		Metadata:  a.store,
		Log:       log.With(logger.String("component", "bulletins")),
	}
	if snapshots != nil {
		a.sync.Cache = snapshots
		a.bulletins.Cache = snapshots
	}
	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	a.log.Sync()
}
