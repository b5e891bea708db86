package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"normscan/internal/audit"
	"normscan/internal/rule"
)

// SQLiteStore backs the run history with a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			fingerprint TEXT NOT NULL,
			rule_count INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			report JSON
		);`,
		`CREATE TABLE IF NOT EXISTS run_rules (
			run_id TEXT NOT NULL,
			rule_id TEXT NOT NULL,
			coord_key TEXT NOT NULL,
			category TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			PRIMARY KEY (run_id, rule_id)
		);`,
		`CREATE TABLE IF NOT EXISTS evidence (
			run_id TEXT NOT NULL,
			rule_id TEXT NOT NULL,
			doc TEXT NOT NULL,
			coord_key TEXT NOT NULL,
			line INTEGER NOT NULL,
			content_hash TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS baseline (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			run_id TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			promoted_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_evidence_run ON evidence(run_id);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, rec RunRecord, rules []audit.BaselineRule, evidence []rule.Evidence) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (run_id, fingerprint, rule_count, created_at, report) VALUES (?, ?, ?, ?, ?)`,
		rec.RunID, rec.Fingerprint, rec.RuleCount, rec.CreatedAt, rec.ReportJSON); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	for _, r := range rules {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO run_rules (run_id, rule_id, coord_key, category, content_hash) VALUES (?, ?, ?, ?, ?)`,
			rec.RunID, r.ID, r.CoordKey, r.Category, r.ContentHash); err != nil {
			return fmt.Errorf("save rule snapshot: %w", err)
		}
	}

	for _, e := range evidence {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO evidence (run_id, rule_id, doc, coord_key, line, content_hash) VALUES (?, ?, ?, ?, ?, ?)`,
			rec.RunID, e.RuleID, e.Coord.Doc, e.Coord.Key(), e.Coord.Line, e.ContentHash); err != nil {
			return fmt.Errorf("save evidence: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, fingerprint, rule_count, created_at FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.RunID, &rec.Fingerprint, &rec.RuleCount, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Baseline(ctx context.Context) (Baseline, bool, error) {
	var b Baseline
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, fingerprint, promoted_at FROM baseline WHERE id = 1`).
		Scan(&b.RunID, &b.Fingerprint, &b.PromotedAt)
	if err == sql.ErrNoRows {
		return Baseline{}, false, nil
	}
	if err != nil {
		return Baseline{}, false, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT rule_id, coord_key, category, content_hash FROM run_rules WHERE run_id = ? ORDER BY rule_id`, b.RunID)
	if err != nil {
		return Baseline{}, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var r audit.BaselineRule
		if err := rows.Scan(&r.ID, &r.CoordKey, &r.Category, &r.ContentHash); err != nil {
			return Baseline{}, false, err
		}
		b.Rules = append(b.Rules, r)
	}
	return b, true, rows.Err()
}

func (s *SQLiteStore) PromoteBaseline(ctx context.Context, runID string) error {
	var fingerprint string
	err := s.db.QueryRowContext(ctx, `SELECT fingerprint FROM runs WHERE run_id = ?`, runID).Scan(&fingerprint)
	if err == sql.ErrNoRows {
		return fmt.Errorf("unknown run %q", runID)
	}
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO baseline (id, run_id, fingerprint, promoted_at) VALUES (1, ?, ?, ?)`,
		runID, fingerprint, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("promote baseline: %w", err)
	}
	return nil
}
