// internal/server/handlers/export.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"trendwatch/internal/adapter/export"
	"trendwatch/internal/domain/trends"
)

// FileExporter writes interest series to flat files
type FileExporter interface {
	WriteCSV(series trends.TimeSeries, customName string) (export.ExportResult, error)
	WriteJSON(series trends.TimeSeries, q trends.Query, customName string) (export.ExportResult, error)
}

// TableExporter materializes interest series as SQLite tables
type TableExporter interface {
	CreateTable(series trends.TimeSeries, tableName string) (export.SQLTableResult, error)
}

// exportRequest is the body accepted by the export endpoints
type exportRequest struct {
	Keywords  []string `json:"keywords"`
	Timeframe string   `json:"timeframe"`
	Geo       string   `json:"geo"`
	Filename  string   `json:"filename"`
	TableName string   `json:"table_name"`
}

// ExportHandler handles export-related HTTP requests
type ExportHandler struct {
	fetcher trends.Fetcher
	files   FileExporter
	tables  TableExporter
	log     *logrus.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(fetcher trends.Fetcher, files FileExporter, tables TableExporter, log *logrus.Logger) *ExportHandler {
	return &ExportHandler{
		fetcher: fetcher,
		files:   files,
		tables:  tables,
		log:     log,
	}
}

// CSV fetches interest data and writes it as a CSV file
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	req, q, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	series := h.fetcher.SearchTrends(r.Context(), req.Keywords, q)

	result, err := h.files.WriteCSV(series, req.Filename)
	if err != nil {
		h.respondExportError(w, "CSV export failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// JSON fetches interest data and writes it as a JSON document
func (h *ExportHandler) JSON(w http.ResponseWriter, r *http.Request) {
	req, q, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	series := h.fetcher.SearchTrends(r.Context(), req.Keywords, q)

	result, err := h.files.WriteJSON(series, q, req.Filename)
	if err != nil {
		h.respondExportError(w, "JSON export failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// SQLite fetches interest data and materializes it as a SQLite table
func (h *ExportHandler) SQLite(w http.ResponseWriter, r *http.Request) {
	req, q, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	series := h.fetcher.SearchTrends(r.Context(), req.Keywords, q)

	result, err := h.tables.CreateTable(series, req.TableName)
	if err != nil {
		h.respondExportError(w, "SQLite export failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// parseRequest decodes and validates an export request body
func (h *ExportHandler) parseRequest(w http.ResponseWriter, r *http.Request) (exportRequest, trends.Query, bool) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return exportRequest{}, trends.Query{}, false
	}

	if len(req.Keywords) == 0 {
		respondWithError(w, http.StatusBadRequest, "Missing keywords", nil)
		return exportRequest{}, trends.Query{}, false
	}

	if req.Timeframe == "" {
		req.Timeframe = trends.DefaultTimeframe
	}
	if !trends.IsValidTimeframe(req.Timeframe) {
		respondWithError(w, http.StatusBadRequest, "Invalid timeframe", nil)
		return exportRequest{}, trends.Query{}, false
	}

	if req.Geo == "" {
		req.Geo = trends.DefaultGeo
	}

	return req, trends.Query{Timeframe: req.Timeframe, Geo: req.Geo}, true
}

// respondExportError maps empty-series exports to 422 and everything
// else to 500.
func (h *ExportHandler) respondExportError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, export.ErrNoData) {
		respondWithError(w, http.StatusUnprocessableEntity, "No data to export", nil)
		return
	}

	h.log.Errorf("%s: %v", message, err)
	respondWithError(w, http.StatusInternalServerError, message, err)
}
