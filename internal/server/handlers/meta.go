// internal/server/handlers/meta.go

package handlers

import (
	"net/http"

	"trendwatch/internal/domain/trends"
)

// MetaHandler serves static metadata about the trends API
type MetaHandler struct{}

// NewMetaHandler creates a new meta handler
func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

// Timeframes lists every accepted timeframe token
func (h *MetaHandler) Timeframes(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, trends.Timeframes())
}

// Regions lists the curated region codes
func (h *MetaHandler) Regions(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, trends.Regions())
}
