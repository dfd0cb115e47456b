// internal/server/handlers/history.go

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"trendwatch/internal/domain/trends"
)

// SnapshotHistory reads back stored keyword statistics
type SnapshotHistory interface {
	History(ctx context.Context, keyword string, limit int) ([]trends.KeywordSnapshot, error)
}

// CaptureHistory reads back stored trending captures
type CaptureHistory interface {
	RecentCaptures(ctx context.Context, geo string, limit int) ([]trends.TrendingCapture, error)
}

// HistoryHandler handles history-related HTTP requests
type HistoryHandler struct {
	snapshots SnapshotHistory
	captures  CaptureHistory
	log       *logrus.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(snapshots SnapshotHistory, captures CaptureHistory, log *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{
		snapshots: snapshots,
		captures:  captures,
		log:       log,
	}
}

// KeywordHistory returns stored statistic snapshots for one keyword,
// newest first
func (h *HistoryHandler) KeywordHistory(w http.ResponseWriter, r *http.Request) {
	keyword := chi.URLParam(r, "keyword")
	if keyword == "" {
		respondWithError(w, http.StatusBadRequest, "Missing keyword parameter", nil)
		return
	}

	snapshots, err := h.snapshots.History(r.Context(), keyword, parseLimit(r))
	if err != nil {
		h.log.Errorf("Failed to load keyword history: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load keyword history", err)
		return
	}

	respondWithJSON(w, http.StatusOK, snapshots)
}

// TrendingHistory returns stored trending captures, newest first. An
// empty geo returns captures for every region.
func (h *HistoryHandler) TrendingHistory(w http.ResponseWriter, r *http.Request) {
	geo := r.URL.Query().Get("geo")

	captures, err := h.captures.RecentCaptures(r.Context(), geo, parseLimit(r))
	if err != nil {
		h.log.Errorf("Failed to load trending history: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load trending history", err)
		return
	}

	respondWithJSON(w, http.StatusOK, captures)
}

// parseLimit reads the optional limit query parameter. Zero means the
// store default.
func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
