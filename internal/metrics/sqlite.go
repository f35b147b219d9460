package metrics

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ppiankov/inmueble/internal/model"
	"github.com/ppiankov/inmueble/internal/sqlitedb"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS fallback_metrics (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	record_id  TEXT NOT NULL,
	provider   TEXT NOT NULL,
	model      TEXT NOT NULL,
	tier       INTEGER NOT NULL,
	duration_s REAL NOT NULL,
	tokens     INTEGER NOT NULL,
	resolved   INTEGER NOT NULL,
	success    INTEGER NOT NULL,
	error      TEXT NOT NULL DEFAULT '',
	timestamp  TEXT NOT NULL
)`

const sqliteIndex = `CREATE INDEX IF NOT EXISTS idx_fallback_metrics_run ON fallback_metrics(run_id)`

// SQLiteRecorder inserts metrics into a SQLite table
type SQLiteRecorder struct {
	db *sql.DB
}

// OpenSQLiteRecorder opens the metrics table in the database at path
func OpenSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	db, err := sqlitedb.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewSQLiteRecorder(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// NewSQLiteRecorder uses an already open database
func NewSQLiteRecorder(db *sql.DB) (*SQLiteRecorder, error) {
	if err := sqlitedb.Migrate(db, sqliteSchema, sqliteIndex); err != nil {
		return nil, err
	}
	return &SQLiteRecorder{db: db}, nil
}

// Record inserts one row
func (r *SQLiteRecorder) Record(m model.Metric) error {
	_, err := r.db.Exec(
		`INSERT INTO fallback_metrics
		 (run_id, record_id, provider, model, tier, duration_s, tokens, resolved, success, error, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RunID, m.RecordID, m.Provider, m.Model, m.Tier, m.Duration.Seconds(),
		m.Tokens, m.Resolved, m.Success, m.Error, m.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting metric: %w", err)
	}
	return nil
}

// Summary aggregates the metrics of one run
type Summary struct {
	Calls    int
	Failures int
	Tokens   int
	Duration time.Duration
}

// Summarize aggregates the rows recorded for runID
func (r *SQLiteRecorder) Summarize(runID string) (Summary, error) {
	var s Summary
	var seconds float64
	err := r.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(1 - success), 0), COALESCE(SUM(tokens), 0), COALESCE(SUM(duration_s), 0)
		 FROM fallback_metrics WHERE run_id = ?`, runID,
	).Scan(&s.Calls, &s.Failures, &s.Tokens, &seconds)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing metrics: %w", err)
	}
	s.Duration = time.Duration(seconds * float64(time.Second))
	return s, nil
}

// Close closes the underlying database
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
