// handlers/sync_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gewnthar/visabulletin/config"
	"github.com/gewnthar/visabulletin/logger"
	"github.com/gewnthar/visabulletin/models"
	"github.com/gewnthar/visabulletin/services"
)

// SyncRunner runs one synchronization.
type SyncRunner interface {
	RunSync(ctx context.Context) (services.SyncResult, error)
}

// SyncHandler is the authenticated HTTP trigger for a sync.
// Expects POST; each request runs one full sync to completion before responding.
type SyncHandler struct {
	Syncer SyncRunner
	Auth   config.AuthConfig
	Log    logger.Logger
	Now    func() time.Time
}

func (h *SyncHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}
	if !authorized(r, h.Auth) {
		h.Log.Warn("Rejected unauthorized sync trigger", logger.String("remote_addr", r.RemoteAddr))
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// A disconnecting client does not abort the sync it started.
	res, err := h.Syncer.RunSync(context.WithoutCancel(r.Context()))
	if err != nil {
		respondWithJSON(w, http.StatusInternalServerError, models.SyncErrorResponse{
			Success:   false,
			Error:     err.Error(),
			Timestamp: timestamp(h.now()),
		})
		return
	}

	respondWithJSON(w, http.StatusOK, models.SyncResponse{
		Success:          true,
		Message:          "Visa bulletin data synchronized successfully",
		ActionDatesCount: res.ActionDatesCount,
		FilingDatesCount: res.FilingDatesCount,
		SkippedTables:    res.SkippedTables,
		Timestamp:        timestamp(res.Timestamp),
	})
}
