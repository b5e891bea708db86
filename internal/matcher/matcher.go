// Package matcher hosts the pattern recognizer bank: independent, pure
// matchers organized in three tiers. Matchers share no state; the bank unions
// their outputs and leaves reconciliation to the deduplicator.
package matcher

import (
	"strings"

	"normscan/internal/rule"
	"normscan/internal/token"
)

// Tier groups matchers by specificity.
type Tier string

const (
	TierStructural Tier = rule.TierStructural
	TierSemantic   Tier = rule.TierSemantic
	TierMeta       Tier = rule.TierMeta
)

// Run modes. Explicit mode runs only high-confidence matchers; comprehensive
// adds the lower-confidence semantic and meta matchers.
const (
	ModeExplicit      = "explicit"
	ModeComprehensive = "comprehensive"
)

// Context is the read-only view a matcher gets of one document.
type Context struct {
	Doc        string
	FormatHint string
	Tokens     []token.Token
}

// Window renders a few lines of surrounding context for the token at index i.
func (c Context) Window(i, radius int) string {
	lo, hi := i-radius, i+radius
	if lo < 0 {
		lo = 0
	}
	if hi >= len(c.Tokens) {
		hi = len(c.Tokens) - 1
	}
	var b strings.Builder
	for j := lo; j <= hi; j++ {
		if j > lo {
			b.WriteByte('\n')
		}
		b.WriteString(c.Tokens[j].Text)
	}
	return b.String()
}

// Matcher is one pure pattern recognizer. Match must not retain or mutate
// the context.
type Matcher interface {
	ID() string
	Tier() Tier
	Match(ctx Context) []rule.Candidate
}

type registration struct {
	m             Matcher
	lowConfidence bool
}

// Registry is the closed matcher bank, enumerated at startup.
type Registry struct {
	entries []registration
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a matcher. Low-confidence matchers only run in
// comprehensive mode.
func (r *Registry) Register(m Matcher, lowConfidence bool) {
	r.entries = append(r.entries, registration{m: m, lowConfidence: lowConfidence})
}

// ForMode returns the matchers active in the given mode, in registration
// order.
func (r *Registry) ForMode(mode string) []Matcher {
	out := make([]Matcher, 0, len(r.entries))
	for _, e := range r.entries {
		if e.lowConfidence && mode != ModeComprehensive {
			continue
		}
		out = append(out, e.m)
	}
	return out
}

// Default builds the full bank.
func Default() *Registry {
	r := NewRegistry()

	// Tier 1: structural.
	r.Register(&RequirementHeadingMatcher{}, false)
	r.Register(&FrontmatterRequirementsMatcher{}, false)
	r.Register(&BlockRequiredKeyMatcher{}, false)
	r.Register(&NormativeListItemMatcher{}, false)
	r.Register(&TableRowMatcher{}, false)
	r.Register(&CodeCommentMatcher{}, false)

	// Tier 2: semantic.
	r.Register(&NormativeSentenceMatcher{}, false)
	r.Register(&ProhibitionMatcher{}, false)
	r.Register(&BracketDirectiveMatcher{}, true)

	// Tier 3: meta-attribute extraction.
	r.Register(&VersionTagMatcher{}, true)
	r.Register(&ThresholdMatcher{}, true)
	r.Register(&ScopeMatcher{}, true)

	return r
}

// newCandidate fills the fields every matcher sets the same way.
func newCandidate(m Matcher, ctx Context, i int, text string, confidence float64) rule.Candidate {
	t := ctx.Tokens[i]
	c := rule.Candidate{
		RawText:       strings.TrimSpace(text),
		ContextWindow: ctx.Window(i, 2),
		MatcherID:     m.ID(),
		Tier:          string(m.Tier()),
		Category:      inferCategory(text),
		Doc:           ctx.Doc,
		Line:          t.Line,
		Confidence:    0.9,
	}
	if confidence > 0 {
		c.Confidence = confidence
	}
	if markers := token.Markers(text); len(markers) > 0 {
		c.ExplicitMarker = true
		c.PriorityHint = hintFor(markers)
	}
	return c
}

// hintFor picks the most restrictive priority among the markers present.
func hintFor(markers []string) rule.Priority {
	best := rule.Priority("")
	for _, m := range markers {
		if p, ok := markerPriority(m); ok {
			if best == "" || p.Rank() < best.Rank() {
				best = p
			}
		}
	}
	return best
}

func markerPriority(marker string) (rule.Priority, bool) {
	switch strings.ToUpper(strings.TrimSpace(marker)) {
	case "MUST", "MUST NOT", "SHALL", "SHALL NOT", "MUSS", "MUSS NICHT", "DARF", "DARF NICHT", "REQUIRED":
		return rule.PriorityMust, true
	case "SHOULD", "SHOULD NOT", "SOLL", "SOLL NICHT", "SOLLTE":
		return rule.PriorityShould, true
	case "MAY", "KANN", "OPTIONAL":
		return rule.PriorityCould, true
	}
	return "", false
}

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"security", []string{"password", "secret", "credential", "encrypt", "hash", "sha-256", "sha256", "tls", "auth", "token", "certificate"}},
	{"logging", []string{"log", "logged", "logging", "audit trail", "trace"}},
	{"storage", []string{"database", "storage", "persist", "backup", "retention", "archive"}},
	{"api", []string{"endpoint", "api", "request", "response", "http", "header"}},
	{"testing", []string{"test", "coverage", "fixture", "assert"}},
	{"process", []string{"review", "approve", "deploy", "release", "sign-off", "signoff"}},
}

// inferCategory assigns a coarse domain category from keyword presence.
func inferCategory(text string) string {
	lower := strings.ToLower(text)
	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if strings.Contains(lower, w) {
				return ck.category
			}
		}
	}
	return "general"
}
