// handlers/bulletin_handler.go
package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gewnthar/visabulletin/logger"
	"github.com/gewnthar/visabulletin/models"
)

// BulletinReader serves stored bulletin data.
type BulletinReader interface {
	GetBulletin(ctx context.Context) (*models.BulletinSnapshot, error)
	ExportCSV(ctx context.Context, kind models.TableKind, w io.Writer) (int, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type BulletinHandler struct {
	Reader BulletinReader
	Log    logger.Logger
}

// GetBulletin handles GET /api/visa-bulletin.
func (h *BulletinHandler) GetBulletin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	snap, err := h.Reader.GetBulletin(r.Context())
	if err != nil {
		h.Log.Error("Failed to load bulletin", logger.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to load visa bulletin")
		return
	}
	respondWithJSON(w, http.StatusOK, snap)
}

// ExportCSV handles GET /api/visa-bulletin/export?table=action|filing.
func (h *BulletinHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	table := r.URL.Query().Get("table")
	if table == "" {
		table = string(models.TableActionDates)
	}
	kind, ok := models.ParseTableKind(table)
	if !ok {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid table '%s'. Use 'action' or 'filing'.", table))
		return
	}

	var buf bytes.Buffer
	if _, err := h.Reader.ExportCSV(r.Context(), kind, &buf); err != nil {
		h.Log.Error("Failed to export bulletin table", logger.String("table", kind.TableName()), logger.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to export visa bulletin")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, kind.TableName()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// HealthHandler reports store connectivity on GET /api/health.
func HealthHandler(store Pinger, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			log.Error("Health check failed: database ping error", logger.Error(err))
			respondWithJSON(w, http.StatusInternalServerError, map[string]string{
				"status":  "error",
				"message": "database connection error",
			})
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "visa bulletin service is healthy",
		})
	}
}
