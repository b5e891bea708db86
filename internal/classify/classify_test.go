package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"normscan/internal/dedup"
	"normscan/internal/rule"
)

func TestPriority_ExplicitMarkerWins(t *testing.T) {
	g := dedup.Merged{Tier: rule.TierStructural, ExplicitMarker: true, Resolved: rule.PriorityCould}
	assert.Equal(t, rule.PriorityCould, Priority(g))
}

func TestPriority_TierDefaults(t *testing.T) {
	assert.Equal(t, rule.PriorityMust, Priority(dedup.Merged{Tier: rule.TierStructural}))
	assert.Equal(t, rule.PriorityShould, Priority(dedup.Merged{Tier: rule.TierSemantic}))
	assert.Equal(t, rule.PriorityInfo, Priority(dedup.Merged{Tier: rule.TierMeta}))
}

func TestPriority_InvalidResolvedFallsBack(t *testing.T) {
	g := dedup.Merged{Tier: rule.TierSemantic, ExplicitMarker: true}
	assert.Equal(t, rule.PriorityShould, Priority(g))
}
