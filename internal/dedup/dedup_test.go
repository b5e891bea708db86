package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"normscan/internal/rule"
)

func cand(doc string, line int, text, category, tier, matcher string, conf float64) rule.Candidate {
	return rule.Candidate{
		Doc:            doc,
		Line:           line,
		NormalizedText: text,
		Category:       category,
		Tier:           tier,
		MatcherID:      matcher,
		Confidence:     conf,
		Coord:          rule.Coordinate{Doc: doc, Line: line},
	}
}

func TestMerge_ExactDuplicatesAcrossDocs(t *testing.T) {
	d := New(0, PolicyMostRestrictive)
	cands := []rule.Candidate{
		cand("a.md", 3, "Passwords MUST be hashed", "security", rule.TierSemantic, "normative-sentence", 0.85),
		cand("b.md", 9, "Passwords MUST be hashed", "security", rule.TierStructural, "requirement-heading", 0.9),
	}

	groups := d.Merge(cands)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Len(t, g.Members, 2)
	assert.Equal(t, "a.md", g.Coord.Doc, "primary coordinate follows the first member")
	assert.Equal(t, rule.TierStructural, g.Tier, "strongest tier wins")
	assert.InDelta(t, 0.9, g.Confidence, 1e-9, "highest confidence wins")
	assert.Equal(t, []string{"normative-sentence", "requirement-heading"}, g.MatcherIDs)
	assert.False(t, g.Conflicted())
}

func TestMerge_SimilarWithinCategoryOnly(t *testing.T) {
	d := New(0.9, PolicyMostRestrictive)
	cands := []rule.Candidate{
		cand("a.md", 1, "API errors MUST be wrapped with context", "api", rule.TierSemantic, "normative-sentence", 0.85),
		cand("a.md", 7, "API errors SHOULD be wrapped with context", "api", rule.TierSemantic, "normative-sentence", 0.85),
		cand("a.md", 9, "API errors MUST be wrapped with rich context", "security", rule.TierSemantic, "normative-sentence", 0.85),
	}

	groups := d.Merge(cands)
	// The security-categorized twin never merges with the api neighborhood.
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Members, 2)
	assert.Equal(t, "security", groups[1].Category)
}

func TestMerge_ConflictMostRestrictive(t *testing.T) {
	d := New(0, PolicyMostRestrictive)
	a := cand("a.md", 1, "Requests SHOULD be retried", "api", rule.TierSemantic, "normative-sentence", 0.85)
	a.ExplicitMarker = true
	a.PriorityHint = rule.PriorityShould
	b := cand("b.md", 4, "Requests MUST be retried", "api", rule.TierSemantic, "normative-sentence", 0.85)
	b.ExplicitMarker = true
	b.PriorityHint = rule.PriorityMust

	groups := d.Merge([]rule.Candidate{a, b})
	require.Len(t, groups, 1)

	g := groups[0]
	require.True(t, g.Conflicted())
	assert.Equal(t, []rule.Priority{rule.PriorityMust, rule.PriorityShould}, g.Hints)
	assert.Equal(t, rule.PriorityMust, g.Resolved)
	assert.Equal(t, PolicyMostRestrictive, g.Policy)
}

func TestMerge_ConflictFirstSeen(t *testing.T) {
	d := New(0, PolicyFirstSeen)
	a := cand("a.md", 1, "Requests SHOULD be retried", "api", rule.TierSemantic, "normative-sentence", 0.85)
	a.ExplicitMarker = true
	a.PriorityHint = rule.PriorityShould
	b := cand("b.md", 4, "Requests MUST be retried", "api", rule.TierSemantic, "normative-sentence", 0.85)
	b.ExplicitMarker = true
	b.PriorityHint = rule.PriorityMust

	groups := d.Merge([]rule.Candidate{a, b})
	require.Len(t, groups, 1)
	assert.Equal(t, rule.PriorityShould, groups[0].Resolved)
}

func TestMerge_Idempotent(t *testing.T) {
	d := New(0, PolicyMostRestrictive)
	cands := []rule.Candidate{
		cand("a.md", 1, "Logs MUST omit secrets", "logging", rule.TierSemantic, "normative-sentence", 0.85),
		cand("a.md", 5, "Logs MUST omit secrets", "logging", rule.TierSemantic, "prohibition", 0.9),
		cand("a.md", 8, "Backups MUST be encrypted", "storage", rule.TierSemantic, "normative-sentence", 0.85),
	}

	first := d.Merge(cands)
	require.Len(t, first, 2)

	reps := make([]rule.Candidate, 0, len(first))
	for _, g := range first {
		reps = append(reps, g.Members[0])
	}
	second := d.Merge(reps)
	assert.Len(t, second, len(first))
}

func TestSimilarity_MarkerInsensitive(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("Backups MUST be encrypted", "Backups SHOULD be encrypted"), 1e-9)
	assert.Less(t, similarity("Backups MUST be encrypted", "Responses MUST be logged"), 0.5)
}

func TestNew_ClampsInput(t *testing.T) {
	d := New(-1, "bogus")
	assert.InDelta(t, DefaultSimilarityThreshold, d.threshold, 1e-9)
	assert.Equal(t, PolicyMostRestrictive, d.policy)
}
