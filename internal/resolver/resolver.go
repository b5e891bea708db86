// Package resolver normalizes candidate text before deduplication: normative
// synonyms across language registers collapse to canonical markers, and known
// variable placeholders are substituted from a static table.
package resolver

import (
	"regexp"
	"strings"

	"normscan/internal/rule"
)

// aliasTable maps normative-strength synonyms to their canonical marker.
// Multi-word (negated) forms come first so they win over their prefixes.
var aliasTable = []struct {
	from, to string
}{
	{"MUST NOT", "MUST NOT"},
	{"SHALL NOT", "MUST NOT"},
	{"DARF NICHT", "MUST NOT"},
	{"MUSS NICHT", "MUST NOT"},
	{"SOLL NICHT", "SHOULD NOT"},
	{"SHOULD NOT", "SHOULD NOT"},
	{"SHALL", "MUST"},
	{"MUSS", "MUST"},
	{"REQUIRED", "MUST"},
	{"SOLLTE", "SHOULD"},
	{"SOLL", "SHOULD"},
	{"KANN", "COULD"},
	{"MAY", "COULD"},
	{"OPTIONAL", "COULD"},
}

var placeholderRe = regexp.MustCompile(`\$\{([A-Za-z0-9_.-]+)\}`)

// Stats counts what one resolve pass did.
type Stats struct {
	Aliased     int
	Substituted int
	Unresolved  int
	Downgraded  int
}

// Warning flags an unresolved placeholder. The candidate is still emitted,
// only with downgraded confidence.
type Warning struct {
	Doc         string
	Line        int
	Placeholder string
}

// Resolver substitutes aliases and placeholders using static tables.
type Resolver struct {
	variables map[string]string
	aliasRes  []aliasRule
}

type aliasRule struct {
	re *regexp.Regexp
	to string
}

// New builds a resolver. The variables table may come from configuration;
// nil means no placeholder substitutions beyond the empty table.
func New(variables map[string]string) *Resolver {
	r := &Resolver{variables: variables}
	for _, a := range aliasTable {
		r.aliasRes = append(r.aliasRes, aliasRule{
			re: regexp.MustCompile(`\b` + regexp.QuoteMeta(a.from) + `\b`),
			to: a.to,
		})
	}
	return r
}

const unresolvedConfidencePenalty = 0.2

// Resolve normalizes a batch of candidates in place.
func (r *Resolver) Resolve(cands []rule.Candidate) (Stats, []Warning) {
	var stats Stats
	var warnings []Warning
	for i := range cands {
		text := cands[i].RawText

		for _, a := range r.aliasRes {
			if a.re.MatchString(text) {
				text = a.re.ReplaceAllString(text, a.to)
				stats.Aliased++
			}
		}

		text = placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
			name := placeholderRe.FindStringSubmatch(m)[1]
			if v, ok := r.variables[name]; ok {
				stats.Substituted++
				return v
			}
			// Left intact: a rule with an unresolved placeholder is still
			// a rule, just a less trustworthy one.
			stats.Unresolved++
			warnings = append(warnings, Warning{Doc: cands[i].Doc, Line: cands[i].Line, Placeholder: name})
			if cands[i].Confidence > unresolvedConfidencePenalty {
				cands[i].Confidence -= unresolvedConfidencePenalty
				stats.Downgraded++
			}
			return m
		})

		cands[i].NormalizedText = rule.Canonicalize(text)
	}
	return stats, warnings
}

// CanonicalMarker maps one raw marker word to its canonical form, or returns
// the input uppercased when no alias applies.
func CanonicalMarker(word string) string {
	w := strings.ToUpper(strings.TrimSpace(word))
	for _, a := range aliasTable {
		if a.from == w {
			return a.to
		}
	}
	return w
}

// MarkerPriority maps a canonical marker to its priority.
func MarkerPriority(marker string) (rule.Priority, bool) {
	switch CanonicalMarker(marker) {
	case "MUST", "MUST NOT":
		return rule.PriorityMust, true
	case "SHOULD", "SHOULD NOT":
		return rule.PriorityShould, true
	case "COULD":
		return rule.PriorityCould, true
	}
	return "", false
}
