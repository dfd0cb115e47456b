// internal/adapter/export/sqlite.go

package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"trendwatch/internal/domain/trends"
)

// SQLTableResult describes a table materialized from an interest series.
type SQLTableResult struct {
	TableName    string   `json:"table_name"`
	RowsInserted int      `json:"rows_inserted"`
	Columns      []string `json:"columns"`
	DatabasePath string   `json:"database_path"`
}

// SQLiteExporter materializes interest series as SQLite tables, one
// database file per table.
type SQLiteExporter struct {
	dir string
	log *logrus.Logger
}

// NewSQLiteExporter creates an exporter writing database files under dir.
func NewSQLiteExporter(dir string, log *logrus.Logger) *SQLiteExporter {
	return &SQLiteExporter{dir: dir, log: log}
}

// CreateTable writes the series into a fresh table: trend_date first, one
// REAL column per keyword, is_partial last. An existing table with the
// same name is replaced.
func (s *SQLiteExporter) CreateTable(series trends.TimeSeries, tableName string) (SQLTableResult, error) {
	if series.IsEmpty() {
		return SQLTableResult{}, ErrNoData
	}

	if tableName == "" {
		head := series.Keywords
		if len(head) > 3 {
			head = head[:3]
		}
		joined := strings.ToLower(strings.ReplaceAll(strings.Join(head, "_"), " ", "_"))
		tableName = fmt.Sprintf("trends_%s_%s", joined, time.Now().Format("20060102_150405"))
	}
	tableName = sanitizeTableName(tableName)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return SQLTableResult{}, fmt.Errorf("error creating database directory: %w", err)
	}

	dbPath := filepath.Join(s.dir, tableName+".db")

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return SQLTableResult{}, fmt.Errorf("error opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(tableName))); err != nil {
		return SQLTableResult{}, fmt.Errorf("error dropping existing table: %w", err)
	}

	columnDefs := []string{`trend_date TEXT NOT NULL`}
	for _, kw := range series.Keywords {
		columnDefs = append(columnDefs, fmt.Sprintf(`%s REAL`, quoteIdent(kw)))
	}
	columnDefs = append(columnDefs, `is_partial INTEGER NOT NULL`)

	createStmt := fmt.Sprintf(`CREATE TABLE %s (%s)`, quoteIdent(tableName), strings.Join(columnDefs, ", "))
	if _, err := db.Exec(createStmt); err != nil {
		return SQLTableResult{}, fmt.Errorf("error creating table: %w", err)
	}

	if err := s.insertPoints(db, tableName, series); err != nil {
		return SQLTableResult{}, err
	}

	columns, err := tableColumns(db, tableName)
	if err != nil {
		return SQLTableResult{}, err
	}

	var rowCount int
	if err := db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdent(tableName))).Scan(&rowCount); err != nil {
		return SQLTableResult{}, fmt.Errorf("error counting rows: %w", err)
	}

	s.log.Infof("created sql table %s with %d rows", tableName, rowCount)

	return SQLTableResult{
		TableName:    tableName,
		RowsInserted: rowCount,
		Columns:      columns,
		DatabasePath: dbPath,
	}, nil
}

func (s *SQLiteExporter) insertPoints(db *sql.DB, tableName string, series trends.TimeSeries) error {
	placeholders := make([]string, len(series.Keywords)+2)
	for i := range placeholders {
		placeholders[i] = "?"
	}

	insertStmt := fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, quoteIdent(tableName), strings.Join(placeholders, ", "))

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	stmt, err := tx.Prepare(insertStmt)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, point := range series.Points {
		args := make([]interface{}, 0, len(series.Keywords)+2)
		args = append(args, point.Time.Format("2006-01-02 15:04:05"))
		for _, kw := range series.Keywords {
			if v, ok := point.Values[kw]; ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
		args = append(args, point.IsPartial)

		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("error inserting row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing inserts: %w", err)
	}

	return nil
}

func tableColumns(db *sql.DB, tableName string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdent(tableName)))
	if err != nil {
		return nil, fmt.Errorf("error reading table info: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("error scanning table info: %w", err)
		}
		columns = append(columns, name)
	}

	return columns, rows.Err()
}

// sanitizeTableName strips everything but letters, digits and
// underscores, and keeps the name from starting with a digit.
func sanitizeTableName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	out := b.String()
	if out == "" {
		return "trends_table"
	}

	if unicode.IsDigit([]rune(out)[0]) {
		out = "t_" + out
	}

	return out
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, ``) + `"`
}
