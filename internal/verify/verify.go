// Package verify re-derives the rule ID set from each emitted artifact and
// asserts all five agree. It parses the emitted bytes, never the emitters'
// state, so a corrupted artifact is caught even after a successful run.
package verify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"normscan/internal/emit"
)

// ErrInconsistent is the fatal error for any cross-artifact mismatch.
// Callers map it to its own exit code: partial consistency is not a valid
// output state.
var ErrInconsistent = errors.New("artifacts describe different rule sets")

// Mismatch describes how one artifact deviates from the reference set.
type Mismatch struct {
	Artifact string
	Missing  []string
	Extra    []string
}

func (m Mismatch) String() string {
	var parts []string
	if len(m.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %v", m.Missing))
	}
	if len(m.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("extra %v", m.Extra))
	}
	return fmt.Sprintf("%s: %s", m.Artifact, strings.Join(parts, ", "))
}

// Result is the checker outcome.
type Result struct {
	Passed     bool
	RuleCount  int
	Mismatches []Mismatch
}

// Err converts a failed result into the fatal error, nil on pass.
func (r Result) Err() error {
	if r.Passed {
		return nil
	}
	descs := make([]string, 0, len(r.Mismatches))
	for _, m := range r.Mismatches {
		descs = append(descs, m.String())
	}
	return fmt.Errorf("%w: %s", ErrInconsistent, strings.Join(descs, "; "))
}

// Check verifies the five artifacts against the expected rule ID set.
func Check(artifacts []emit.Artifact, want []string) Result {
	res := Result{Passed: true, RuleCount: len(want)}
	byName := make(map[string][]byte, len(artifacts))
	for _, a := range artifacts {
		byName[a.Name] = a.Data
	}

	for _, name := range []string{emit.ContractName, emit.PolicyName, emit.ValidatorName, emit.TestsName, emit.CLIName} {
		data, ok := byName[name]
		if !ok {
			res.Passed = false
			res.Mismatches = append(res.Mismatches, Mismatch{Artifact: name, Missing: append([]string(nil), want...)})
			continue
		}
		got, err := ParseIDs(name, data)
		if err != nil {
			res.Passed = false
			res.Mismatches = append(res.Mismatches, Mismatch{Artifact: name, Missing: []string{"unparseable: " + err.Error()}})
			continue
		}
		if m, ok := diffSets(name, want, got); !ok {
			res.Passed = false
			res.Mismatches = append(res.Mismatches, m)
		}
	}
	return res
}

// CheckDir verifies already-written artifacts in an output directory. The
// contract artifact serves as the reference set; the other four must match
// it exactly.
func CheckDir(dir string) (Result, error) {
	contract, err := os.ReadFile(filepath.Join(dir, emit.ContractName))
	if err != nil {
		return Result{}, fmt.Errorf("read contract artifact: %w", err)
	}
	want, err := ParseIDs(emit.ContractName, contract)
	if err != nil {
		return Result{}, fmt.Errorf("parse contract artifact: %w", err)
	}

	artifacts := []emit.Artifact{{Name: emit.ContractName, Data: contract}}
	for _, name := range []string{emit.PolicyName, emit.ValidatorName, emit.TestsName, emit.CLIName} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return Result{}, fmt.Errorf("read artifact %s: %w", name, err)
		}
		artifacts = append(artifacts, emit.Artifact{Name: name, Data: data})
	}
	return Check(artifacts, want), nil
}

func diffSets(artifact string, want, got []string) (Mismatch, bool) {
	wantSet := toSet(want)
	gotSet := toSet(got)
	m := Mismatch{Artifact: artifact}
	for id := range wantSet {
		if !gotSet[id] {
			m.Missing = append(m.Missing, id)
		}
	}
	for id := range gotSet {
		if !wantSet[id] {
			m.Extra = append(m.Extra, id)
		}
	}
	sort.Strings(m.Missing)
	sort.Strings(m.Extra)
	return m, len(m.Missing) == 0 && len(m.Extra) == 0
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}
