// Package dedup merges candidate rules that describe the same normative
// statement and surfaces priority conflicts instead of silently resolving
// them.
package dedup

import (
	"regexp"
	"sort"
	"strings"

	"normscan/internal/rule"
)

// DefaultSimilarityThreshold is the word-overlap ratio above which two
// candidates in the same category neighborhood merge. Similarity is computed
// with normative markers stripped, so "X MUST be logged" and "X SHOULD be
// logged" compare as the same subject and surface as a conflict rather than
// as two rules.
const DefaultSimilarityThreshold = 0.9

// Conflict resolution policies.
const (
	PolicyMostRestrictive = "most-restrictive"
	PolicyFirstSeen       = "first-seen"
)

var markerStripRe = regexp.MustCompile(`\b(MUST NOT|MUST|SHALL NOT|SHALL|SHOULD NOT|SHOULD|MAY|REQUIRED|OPTIONAL|NEVER)\b`)

// Merged is one deduplicated group, still prior to classification.
type Merged struct {
	NormalizedText string
	Category       string
	Tier           string
	Coord          rule.Coordinate
	Confidence     float64
	ExplicitMarker bool
	MatcherIDs     []string
	Members        []rule.Candidate

	// Distinct explicit priority hints in restrictiveness order. More than
	// one entry means the group is conflicted.
	Hints    []rule.Priority
	Resolved rule.Priority
	Policy   string
}

// Conflicted reports whether the group's candidates disagreed on priority.
func (m *Merged) Conflicted() bool {
	return len(m.Hints) > 1
}

// Deduplicator groups candidates by exact content hash, then by bounded
// semantic similarity.
type Deduplicator struct {
	threshold float64
	policy    string
}

// New creates a deduplicator. A zero threshold selects the default; an
// unknown policy falls back to most-restrictive-wins.
func New(threshold float64, policy string) *Deduplicator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	if policy != PolicyFirstSeen {
		policy = PolicyMostRestrictive
	}
	return &Deduplicator{threshold: threshold, policy: policy}
}

// Merge collapses candidates into groups. Candidates must already be in
// deterministic order; group order follows the first member of each group,
// so the result is deterministic too. Running Merge on the representatives
// of its own output produces no further merges.
func (d *Deduplicator) Merge(cands []rule.Candidate) []Merged {
	// Phase 1: exact duplicates by canonical text hash. Cheap and global.
	byHash := make(map[string]*Merged)
	var order []*Merged
	for _, c := range cands {
		h := rule.TextHash(c.NormalizedText)
		g, ok := byHash[h]
		if !ok {
			g = &Merged{}
			byHash[h] = g
			order = append(order, g)
		}
		g.Members = append(g.Members, c)
	}

	// Phase 2: near-duplicates, bounded to the same category neighborhood.
	byCategory := make(map[string][]*Merged)
	for _, g := range order {
		cat := g.Members[0].Category
		merged := false
		for _, prev := range byCategory[cat] {
			if similarity(prev.Members[0].NormalizedText, g.Members[0].NormalizedText) >= d.threshold {
				prev.Members = append(prev.Members, g.Members...)
				g.Members = nil
				merged = true
				break
			}
		}
		if !merged {
			byCategory[cat] = append(byCategory[cat], g)
		}
	}

	out := make([]Merged, 0, len(order))
	for _, g := range order {
		if len(g.Members) == 0 {
			continue
		}
		d.finalize(g)
		out = append(out, *g)
	}
	return out
}

// finalize derives the group-level fields from the members.
func (d *Deduplicator) finalize(g *Merged) {
	primary := g.Members[0]
	g.NormalizedText = primary.NormalizedText
	g.Category = primary.Category
	g.Coord = primary.Coord

	seenMatcher := make(map[string]bool)
	seenHint := make(map[rule.Priority]bool)
	g.Tier = primary.Tier
	for _, c := range g.Members {
		if c.Confidence > g.Confidence {
			g.Confidence = c.Confidence
		}
		if tierRank(c.Tier) < tierRank(g.Tier) {
			g.Tier = c.Tier
		}
		if !seenMatcher[c.MatcherID] {
			seenMatcher[c.MatcherID] = true
			g.MatcherIDs = append(g.MatcherIDs, c.MatcherID)
		}
		if c.ExplicitMarker && c.PriorityHint.Valid() && !seenHint[c.PriorityHint] {
			seenHint[c.PriorityHint] = true
			g.ExplicitMarker = true
			g.Hints = append(g.Hints, c.PriorityHint)
		}
	}
	sort.Strings(g.MatcherIDs)
	sort.Slice(g.Hints, func(i, j int) bool { return g.Hints[i].Rank() < g.Hints[j].Rank() })

	g.Policy = d.policy
	if len(g.Hints) > 0 {
		g.Resolved = g.Hints[0]
		if d.policy == PolicyFirstSeen {
			for _, c := range g.Members {
				if c.ExplicitMarker && c.PriorityHint.Valid() {
					g.Resolved = c.PriorityHint
					break
				}
			}
		}
	}
}

func tierRank(tier string) int {
	switch tier {
	case rule.TierStructural:
		return 0
	case rule.TierSemantic:
		return 1
	case rule.TierMeta:
		return 2
	default:
		return 3
	}
}

// similarity is the word-overlap ratio of the two texts with normative
// markers removed: |intersection| / |smaller set|.
func similarity(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	smaller := len(wa)
	if len(wb) < smaller {
		smaller = len(wb)
	}
	common := 0
	for w := range wa {
		if wb[w] {
			common++
		}
	}
	return float64(common) / float64(smaller)
}

func wordSet(s string) map[string]bool {
	s = markerStripRe.ReplaceAllString(s, " ")
	out := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, `.,;:"'()[]`)
		if w != "" {
			out[w] = true
		}
	}
	return out
}
