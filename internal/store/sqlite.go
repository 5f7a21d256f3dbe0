package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DBFile is the database file name inside the output directory.
const DBFile = "tauspread.db"

// RunRecord describes one stored integration run.
type RunRecord struct {
	ID        string    `json:"id"`
	Variant   string    `json:"variant"`
	CreatedAt time.Time `json:"created_at"`
	Nodes     int       `json:"nodes"`
	Steps     int       `json:"steps"`
	TMax      float64   `json:"tmax"`
	Dt        float64   `json:"dt"`
	Config    any       `json:"config"`
}

// CurvePoint is one sample of a stored summary curve.
type CurvePoint struct {
	Step  int     `json:"step"`
	T     float64 `json:"t"`
	Value float64 `json:"value"`
}

// RunStore persists runs and summary curves in a SQLite database.
type RunStore struct {
	db   *sql.DB
	path string
}

// Open creates or opens the run database inside dir.
func Open(dir string) (*RunStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: create output directory: %w", err)
	}

	path := filepath.Join(dir, DBFile)
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	return &RunStore{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *RunStore) Path() string { return s.path }

// Close closes the underlying database.
func (s *RunStore) Close() error { return s.db.Close() }

// SaveRun stores a run record and its summary curves in one transaction.
// When rec.ID is empty, an ID is derived from the configuration and creation
// time. The stored record (with the assigned ID) is returned.
func (s *RunStore) SaveRun(ctx context.Context, rec RunRecord, curves map[string][]CurvePoint) (RunRecord, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	cfgJSON, err := json.Marshal(rec.Config)
	if err != nil {
		return rec, fmt.Errorf("store: marshal config: %w", err)
	}
	if rec.ID == "" {
		rec.ID = runID(rec.Variant, cfgJSON, rec.CreatedAt)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rec, fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, variant, created_at, nodes, steps, tmax, dt, config)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Variant, rec.CreatedAt.Format(time.RFC3339Nano),
		rec.Nodes, rec.Steps, rec.TMax, rec.Dt, string(cfgJSON))
	if err != nil {
		return rec, fmt.Errorf("store: insert run %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO curves (run_id, series, step, t, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return rec, fmt.Errorf("store: prepare curve insert: %w", err)
	}
	defer stmt.Close()

	for series, points := range curves {
		for _, p := range points {
			if _, err := stmt.ExecContext(ctx, rec.ID, series, p.Step, p.T, p.Value); err != nil {
				return rec, fmt.Errorf("store: insert curve %s/%s step %d: %w", rec.ID, series, p.Step, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return rec, fmt.Errorf("store: commit run %s: %w", rec.ID, err)
	}
	return rec, nil
}

// ListRuns returns all stored runs, newest first. The Config field holds the
// raw JSON as a string.
func (s *RunStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, variant, created_at, nodes, steps, tmax, dt, config
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var created, cfg string
		if err := rows.Scan(&rec.ID, &rec.Variant, &created, &rec.Nodes, &rec.Steps, &rec.TMax, &rec.Dt, &cfg); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		rec.Config = cfg
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// Curve returns the samples of one series of a run in step order.
func (s *RunStore) Curve(ctx context.Context, runID, series string) ([]CurvePoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, t, value FROM curves WHERE run_id = ? AND series = ? ORDER BY step`,
		runID, series)
	if err != nil {
		return nil, fmt.Errorf("store: query curve %s/%s: %w", runID, series, err)
	}
	defer rows.Close()

	var points []CurvePoint
	for rows.Next() {
		var p CurvePoint
		if err := rows.Scan(&p.Step, &p.T, &p.Value); err != nil {
			return nil, fmt.Errorf("store: scan curve point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Series lists the stored series names of a run.
func (s *RunStore) Series(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT series FROM curves WHERE run_id = ? ORDER BY series`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: list series for %s: %w", runID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: scan series name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// runID derives a short stable identifier from the run content.
func runID(variant string, cfgJSON []byte, createdAt time.Time) string {
	h := sha256.New()
	h.Write([]byte(variant))
	h.Write(cfgJSON)
	h.Write([]byte(createdAt.Format(time.RFC3339Nano)))
	return hex.EncodeToString(h.Sum(nil))[:12]
}
