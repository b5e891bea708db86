package audit

import "normscan/internal/rule"

// BaselineRule is the minimal snapshot of a rule stored with a promoted
// baseline, enough to classify changes on the next run.
type BaselineRule struct {
	ID          string
	CoordKey    string
	Category    string
	ContentHash string
}

// Diff classifies rule set changes relative to the baseline. A rule counts
// as modified when a baseline rule at the same coordinate and category now
// carries a different content hash (its ID changes with the hash, so the new
// ID is reported).
type Diff struct {
	BaselineFingerprint string   `json:"baseline_fingerprint"`
	Added               []string `json:"added"`
	Removed             []string `json:"removed"`
	Modified            []string `json:"modified"`
}

// Unchanged reports whether the run matches the baseline exactly.
func (d *Diff) Unchanged() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// SnapshotRules converts a final set into baseline snapshots.
func SnapshotRules(set *rule.Set) []BaselineRule {
	out := make([]BaselineRule, 0, len(set.Rules))
	for _, r := range set.Rules {
		out = append(out, BaselineRule{
			ID:          r.ID,
			CoordKey:    r.Coord.Doc + "/" + r.Coord.Key(),
			Category:    r.Category,
			ContentHash: r.ContentHash,
		})
	}
	return out
}

// CompareToBaseline diffs the current set against the stored baseline rules.
func CompareToBaseline(baselineFP string, baseline []BaselineRule, set *rule.Set) *Diff {
	d := &Diff{
		BaselineFingerprint: baselineFP,
		Added:               []string{},
		Removed:             []string{},
		Modified:            []string{},
	}

	prevByID := make(map[string]BaselineRule, len(baseline))
	prevBySlot := make(map[string]BaselineRule, len(baseline))
	for _, b := range baseline {
		prevByID[b.ID] = b
		prevBySlot[b.CoordKey+"|"+b.Category] = b
	}

	current := SnapshotRules(set)
	curByID := make(map[string]bool, len(current))
	matchedPrev := make(map[string]bool)

	for _, c := range current {
		curByID[c.ID] = true
		if _, ok := prevByID[c.ID]; ok {
			matchedPrev[c.ID] = true
			continue
		}
		if prev, ok := prevBySlot[c.CoordKey+"|"+c.Category]; ok && prev.ContentHash != c.ContentHash {
			d.Modified = append(d.Modified, c.ID)
			matchedPrev[prev.ID] = true
			continue
		}
		d.Added = append(d.Added, c.ID)
	}

	for _, b := range baseline {
		if !curByID[b.ID] && !matchedPrev[b.ID] {
			d.Removed = append(d.Removed, b.ID)
		}
	}
	return d
}
