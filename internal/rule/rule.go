package rule

import (
	"fmt"
	"strings"
)

// Priority is the normative strength assigned to a rule.
type Priority string

const (
	PriorityMust   Priority = "MUST"
	PriorityShould Priority = "SHOULD"
	PriorityCould  Priority = "COULD"
	PriorityInfo   Priority = "INFO"
)

// Rank orders priorities by restrictiveness. Lower is more restrictive.
func (p Priority) Rank() int {
	switch p {
	case PriorityMust:
		return 0
	case PriorityShould:
		return 1
	case PriorityCould:
		return 2
	case PriorityInfo:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is one of the four terminal priorities.
func (p Priority) Valid() bool {
	return p.Rank() < 4
}

// ParsePriority maps a marker string to a Priority.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToUpper(strings.TrimSpace(s))) {
	case PriorityMust:
		return PriorityMust, true
	case PriorityShould:
		return PriorityShould, true
	case PriorityCould:
		return PriorityCould, true
	case PriorityInfo:
		return PriorityInfo, true
	}
	return "", false
}

// Matcher tiers. Candidates carry the tier of the matcher that produced them
// so the classifier can apply tier defaults without importing the bank.
const (
	TierStructural = "structural"
	TierSemantic   = "semantic"
	TierMeta       = "meta"
)

// Coordinate locates a rule inside the corpus sectioning scheme.
// When a document declares no sections, Major/Minor/Local stay zero and
// Doc+Line act as the fallback coordinate.
type Coordinate struct {
	Doc    string `json:"doc" yaml:"doc"`
	Major  int    `json:"major" yaml:"major"`
	Minor  int    `json:"minor" yaml:"minor"`
	Local  int    `json:"local" yaml:"local"`
	Line   int    `json:"line" yaml:"line"`
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// Key renders the coordinate zero-padded so lexical order equals numeric
// order. The suffix only appears after a collision was resolved.
func (c Coordinate) Key() string {
	k := fmt.Sprintf("%03d.%03d.%04d", c.Major, c.Minor, c.Local)
	if c.Suffix != "" {
		k += "-" + c.Suffix
	}
	return k
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%s:%s (line %d)", c.Doc, c.Key(), c.Line)
}

// Candidate is an ephemeral extraction result. Many candidates may collapse
// into one Rule during deduplication.
type Candidate struct {
	RawText        string
	NormalizedText string
	ContextWindow  string
	MatcherID      string
	Tier           string
	Category       string
	Doc            string
	Line           int
	Coord          Coordinate
	PriorityHint   Priority
	ExplicitMarker bool
	Confidence     float64
}

// Evidence links a rule back to one originating location. Append-only.
type Evidence struct {
	RuleID      string     `json:"rule_id" yaml:"rule_id"`
	Coord       Coordinate `json:"coordinate" yaml:"coordinate"`
	ContentHash string     `json:"content_hash" yaml:"content_hash"`
}

// Rule is the canonical deduplicated normative statement. Immutable once the
// classifier has run; downstream stages only read it.
type Rule struct {
	ID          string     `json:"id" yaml:"id"`
	Description string     `json:"description" yaml:"description"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	Category    string     `json:"category" yaml:"category"`
	Coord       Coordinate `json:"source_coordinate" yaml:"source_coordinate"`
	ContentHash string     `json:"content_hash" yaml:"content_hash"`
	Confidence  float64    `json:"confidence" yaml:"confidence"`
	MatcherIDs  []string   `json:"matcher_ids" yaml:"matcher_ids"`
	Evidence    []Evidence `json:"evidence" yaml:"evidence"`
}

// Conflict records a merge group whose candidates disagreed on priority.
type Conflict struct {
	RuleID     string     `json:"rule_id"`
	Subject    string     `json:"subject"`
	Priorities []Priority `json:"priorities"`
	Resolved   Priority   `json:"resolved"`
	Policy     string     `json:"policy"`
}

// Set is the deterministically ordered rule collection for one run.
type Set struct {
	Rules []Rule
}

// IDs returns the rule IDs in set order.
func (s *Set) IDs() []string {
	ids := make([]string, 0, len(s.Rules))
	for _, r := range s.Rules {
		ids = append(ids, r.ID)
	}
	return ids
}

// ByPriority counts rules per priority tier.
func (s *Set) ByPriority() map[Priority]int {
	out := make(map[Priority]int, 4)
	for _, r := range s.Rules {
		out[r.Priority]++
	}
	return out
}
