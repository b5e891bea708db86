// Package audit builds the machine-readable run report, compares runs
// against the last-known-good baseline and renders the operator scorecard.
package audit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"normscan/internal/rule"
)

// ReportName is the machine-readable report file.
const ReportName = "run_report.json"

// Fingerprint identifies one run's complete rule set.
type Fingerprint struct {
	AggregateHash string `json:"aggregate_hash"`
	RuleCount     int    `json:"rule_count"`
	GeneratedAt   string `json:"generated_at"`
}

// NewFingerprint computes the run fingerprint over a final ordered set.
func NewFingerprint(set *rule.Set) Fingerprint {
	return Fingerprint{
		AggregateHash: set.Fingerprint(),
		RuleCount:     len(set.Rules),
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

// StageMetric records timing and counters for one pipeline stage.
type StageMetric struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	DurationMS int64              `json:"duration_ms"`
	Counters   map[string]float64 `json:"counters,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// WarningEntry is one accumulated recoverable issue.
type WarningEntry struct {
	Kind    string `json:"kind"`
	Doc     string `json:"doc,omitempty"`
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// PriorityBreakdown counts rules per priority tier.
type PriorityBreakdown struct {
	Must   int `json:"must"`
	Should int `json:"should"`
	Could  int `json:"could"`
	Info   int `json:"info"`
}

// Report is the structured outcome of one run. It is produced even on
// partial failure so an operator always has something to inspect.
type Report struct {
	Version          string            `json:"version"`
	RunID            string            `json:"run_id"`
	Mode             string            `json:"mode"`
	RunFingerprint   string            `json:"run_fingerprint"`
	RuleCount        int               `json:"rule_count"`
	Priorities       PriorityBreakdown `json:"priority_breakdown"`
	ConsistencyCheck string            `json:"consistency_check"`
	Conflicts        []rule.Conflict   `json:"conflicts"`
	Warnings         []WarningEntry    `json:"warnings"`
	Stages           []StageMetric     `json:"stages"`
	BaselineDiff     *Diff             `json:"baseline_diff,omitempty"`
	GeneratedAt      string            `json:"generated_at"`
}

// NewReport starts an empty report for a run.
func NewReport(runID, mode string) *Report {
	return &Report{
		Version:     "v1",
		RunID:       runID,
		Mode:        mode,
		Conflicts:   []rule.Conflict{},
		Warnings:    []WarningEntry{},
		Stages:      []StageMetric{},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// SetRules fills the fingerprint and priority breakdown from the final set.
func (r *Report) SetRules(set *rule.Set, fp Fingerprint) {
	r.RunFingerprint = fp.AggregateHash
	r.RuleCount = fp.RuleCount
	counts := set.ByPriority()
	r.Priorities = PriorityBreakdown{
		Must:   counts[rule.PriorityMust],
		Should: counts[rule.PriorityShould],
		Could:  counts[rule.PriorityCould],
		Info:   counts[rule.PriorityInfo],
	}
}

// AddStage appends one stage metric.
func (r *Report) AddStage(name, status string, d time.Duration, counters map[string]float64, err error) {
	m := StageMetric{
		Name:       name,
		Status:     status,
		DurationMS: d.Milliseconds(),
		Counters:   counters,
	}
	if err != nil {
		m.Error = err.Error()
		if m.Status == "" || m.Status == "ok" {
			m.Status = "error"
		}
	}
	if m.Status == "" {
		m.Status = "ok"
	}
	r.Stages = append(r.Stages, m)
}

// AddWarning accumulates a recoverable issue for batch surfacing.
func (r *Report) AddWarning(kind, doc string, line int, message string) {
	r.Warnings = append(r.Warnings, WarningEntry{Kind: kind, Doc: doc, Line: line, Message: message})
}

// Marshal renders the report as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal run report: %w", err)
	}
	return append(data, '\n'), nil
}

// ExitCode maps the report outcome to the operator contract: 0 clean,
// 1 clean with warnings or conflicts, 2 consistency failure.
func (r *Report) ExitCode() int {
	if !strings.EqualFold(r.ConsistencyCheck, "pass") {
		return 2
	}
	if len(r.Warnings) > 0 || len(r.Conflicts) > 0 {
		return 1
	}
	return 0
}
