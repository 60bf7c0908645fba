// handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gewnthar/visabulletin/config"
	"github.com/gewnthar/visabulletin/logger"
)

// Routes bundles what the HTTP surface needs.
type Routes struct {
	Syncer  SyncRunner
	Reader  BulletinReader
	Store   Pinger
	Metrics http.Handler // optional
	Auth    config.AuthConfig
	Log     logger.Logger
}

// NewRouter registers every route on a fresh ServeMux.
func NewRouter(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()

	sync := withCORS(&SyncHandler{Syncer: rt.Syncer, Auth: rt.Auth, Log: rt.Log})
	mux.Handle("/functions/v1/sync-visa-bulletin", sync)
	mux.Handle("/api/admin/sync-visa-bulletin", sync)

	bulletins := &BulletinHandler{Reader: rt.Reader, Log: rt.Log}
	mux.HandleFunc("/api/visa-bulletin", bulletins.GetBulletin)
	mux.HandleFunc("/api/visa-bulletin/export", bulletins.ExportCSV)
	mux.HandleFunc("/api/health", HealthHandler(rt.Store, rt.Log))

	if rt.Metrics != nil {
		mux.Handle("/metrics", rt.Metrics)
	}
	return mux
}
