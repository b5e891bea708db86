package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"normscan/internal/audit"
	"normscan/internal/rule"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "normscan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id, fingerprint, createdAt string) (RunRecord, []audit.BaselineRule, []rule.Evidence) {
	rec := RunRecord{
		RunID:       id,
		Fingerprint: fingerprint,
		RuleCount:   1,
		CreatedAt:   createdAt,
		ReportJSON:  []byte(`{"version":"v1"}`),
	}
	rules := []audit.BaselineRule{
		{ID: "R-001.000.0001-security-deadbeef", CoordKey: "auth.md/001.000.0001", Category: "security", ContentHash: "hash-a"},
	}
	evidence := []rule.Evidence{
		{RuleID: rules[0].ID, Coord: rule.Coordinate{Doc: "auth.md", Major: 1, Local: 1, Line: 5}, ContentHash: "hash-a"},
	}
	return rec, rules, evidence
}

func TestSaveRunAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	rec1, rules, evidence := sampleRun("run-1", "fp-1", "2026-08-01T00:00:00Z")
	require.NoError(t, s.SaveRun(ctx, rec1, rules, evidence))
	rec2, rules, evidence := sampleRun("run-2", "fp-2", "2026-08-02T00:00:00Z")
	require.NoError(t, s.SaveRun(ctx, rec2, rules, evidence))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].RunID, "newest first")
	assert.Equal(t, "run-1", runs[1].RunID)
}

func TestSaveRun_Idempotent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	rec, rules, evidence := sampleRun("run-1", "fp-1", "2026-08-01T00:00:00Z")
	require.NoError(t, s.SaveRun(ctx, rec, rules, evidence))
	require.NoError(t, s.SaveRun(ctx, rec, rules, evidence))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestBaselinePromotion(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, ok, err := s.Baseline(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "no baseline before promotion")

	rec, rules, evidence := sampleRun("run-1", "fp-1", "2026-08-01T00:00:00Z")
	require.NoError(t, s.SaveRun(ctx, rec, rules, evidence))
	require.NoError(t, s.PromoteBaseline(ctx, "run-1"))

	base, ok, err := s.Baseline(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-1", base.RunID)
	assert.Equal(t, "fp-1", base.Fingerprint)
	require.Len(t, base.Rules, 1)
	assert.Equal(t, rules[0], base.Rules[0])
}

func TestPromoteBaseline_UnknownRun(t *testing.T) {
	s := openStore(t)
	err := s.PromoteBaseline(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
