// internal/adapter/export/export.go

package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"trendwatch/internal/domain/trends"
)

// ErrNoData is returned when an export is requested for a series that
// carries no points.
var ErrNoData = errors.New("no data to export")

// ExportResult describes a file written by an export operation.
type ExportResult struct {
	Filename  string `json:"filename"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"size_bytes"`
	Path      string `json:"path"`
}

// jsonDocument is the on-disk layout of a JSON export.
type jsonDocument struct {
	Metadata jsonMetadata             `json:"metadata"`
	Data     []map[string]interface{} `json:"data"`
}

type jsonMetadata struct {
	Keywords   []string `json:"keywords"`
	Timeframe  string   `json:"timeframe"`
	Geo        string   `json:"geo"`
	ExportDate string   `json:"export_date"`
	DataPoints int      `json:"data_points"`
}

// Exporter writes interest series to flat files under a single directory.
type Exporter struct {
	dir string
	log *logrus.Logger
}

// NewExporter creates an exporter rooted at dir.
func NewExporter(dir string, log *logrus.Logger) *Exporter {
	return &Exporter{dir: dir, log: log}
}

// WriteCSV writes the series as a wide CSV table: one row per point, one
// column per keyword, date first and the partial marker last.
func (e *Exporter) WriteCSV(series trends.TimeSeries, customName string) (ExportResult, error) {
	if series.IsEmpty() {
		return ExportResult{}, ErrNoData
	}

	path, filename, err := e.preparePath(series.Keywords, "csv", customName)
	if err != nil {
		return ExportResult{}, err
	}

	f, err := os.Create(path)
	if err != nil {
		return ExportResult{}, fmt.Errorf("error creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{"date"}, series.Keywords...)
	header = append(header, "is_partial")
	if err := w.Write(header); err != nil {
		return ExportResult{}, fmt.Errorf("error writing csv header: %w", err)
	}

	for _, point := range series.Points {
		row := make([]string, 0, len(header))
		row = append(row, point.Time.Format("2006-01-02 15:04:05"))
		for _, kw := range series.Keywords {
			if v, ok := point.Values[kw]; ok {
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, strconv.FormatBool(point.IsPartial))

		if err := w.Write(row); err != nil {
			return ExportResult{}, fmt.Errorf("error writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return ExportResult{}, fmt.Errorf("error flushing csv: %w", err)
	}

	return e.finishResult(path, filename, "csv", len(series.Points))
}

// WriteJSON writes the series with query metadata alongside the records.
func (e *Exporter) WriteJSON(series trends.TimeSeries, q trends.Query, customName string) (ExportResult, error) {
	if series.IsEmpty() {
		return ExportResult{}, ErrNoData
	}

	path, filename, err := e.preparePath(series.Keywords, "json", customName)
	if err != nil {
		return ExportResult{}, err
	}

	doc := jsonDocument{
		Metadata: jsonMetadata{
			Keywords:   series.Keywords,
			Timeframe:  q.Timeframe,
			Geo:        q.Geo,
			ExportDate: time.Now().UTC().Format(time.RFC3339),
			DataPoints: len(series.Points),
		},
		Data: make([]map[string]interface{}, 0, len(series.Points)),
	}

	for _, point := range series.Points {
		record := make(map[string]interface{}, len(series.Keywords)+2)
		record["date"] = point.Time.Format(time.RFC3339)
		record["is_partial"] = point.IsPartial
		for _, kw := range series.Keywords {
			if v, ok := point.Values[kw]; ok {
				record[kw] = v
			}
		}
		doc.Data = append(doc.Data, record)
	}

	f, err := os.Create(path)
	if err != nil {
		return ExportResult{}, fmt.Errorf("error creating export file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return ExportResult{}, fmt.Errorf("error encoding json export: %w", err)
	}

	return e.finishResult(path, filename, "json", len(series.Points))
}

func (e *Exporter) preparePath(keywords []string, extension, customName string) (string, string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("error creating export directory: %w", err)
	}

	filename := generateFilename("trends", keywords, extension, customName)
	return filepath.Join(e.dir, filename), filename, nil
}

func (e *Exporter) finishResult(path, filename, format string, points int) (ExportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ExportResult{}, fmt.Errorf("error reading export file size: %w", err)
	}

	e.log.Infof("exported %d data points to %s", points, filename)

	return ExportResult{
		Filename:  filename,
		Format:    format,
		SizeBytes: info.Size(),
		Path:      path,
	}, nil
}

// generateFilename builds <prefix>_<up to 3 keywords>_<timestamp>.<ext>,
// or normalizes a caller-supplied name to carry the right extension.
func generateFilename(prefix string, keywords []string, extension, customName string) string {
	if customName != "" {
		if !strings.HasSuffix(customName, "."+extension) {
			customName += "." + extension
		}
		return customName
	}

	head := keywords
	if len(head) > 3 {
		head = head[:3]
	}

	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", prefix, strings.Join(head, "_"), timestamp, extension)
}
