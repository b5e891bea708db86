// Package storage persists run history, the evidence ledger and the
// last-known-good baseline. The engine itself only reads the baseline;
// promotion is an explicit operator action.
package storage

import (
	"context"

	"normscan/internal/audit"
	"normscan/internal/rule"
)

// RunRecord is one stored run.
type RunRecord struct {
	RunID       string
	Fingerprint string
	RuleCount   int
	CreatedAt   string
	ReportJSON  []byte
}

// Baseline is the promoted last-known-good snapshot.
type Baseline struct {
	RunID       string
	Fingerprint string
	PromotedAt  string
	Rules       []audit.BaselineRule
}

// Store defines the persistence operations the engine and CLI need.
type Store interface {
	// SaveRun records a finished run with its report and rule snapshots.
	SaveRun(ctx context.Context, rec RunRecord, rules []audit.BaselineRule, evidence []rule.Evidence) error

	// ListRuns returns stored runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// Baseline returns the promoted baseline, or ok=false when none exists.
	Baseline(ctx context.Context) (Baseline, bool, error)

	// PromoteBaseline marks a stored run as the last-known-good snapshot.
	PromoteBaseline(ctx context.Context, runID string) error

	Close() error
}
