// Package classify assigns each deduplicated rule exactly one of the four
// priority tiers. The decision procedure is a fixed two-level fallback, so
// identical input always classifies identically.
package classify

import (
	"normscan/internal/dedup"
	"normscan/internal/rule"
)

// Priority decides a group's priority. An explicit marker wins outright;
// without one the matcher tier supplies the default: structural schema
// matches are mandatory, free-text semantic matches are recommendations,
// meta-attribute matches are informational.
func Priority(g dedup.Merged) rule.Priority {
	if g.ExplicitMarker && g.Resolved.Valid() {
		return g.Resolved
	}
	switch g.Tier {
	case rule.TierStructural:
		return rule.PriorityMust
	case rule.TierSemantic:
		return rule.PriorityShould
	default:
		return rule.PriorityInfo
	}
}
