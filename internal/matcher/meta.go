package matcher

import (
	"regexp"
	"strings"

	"normscan/internal/rule"
	"normscan/internal/token"
)

var (
	versionTagRe   = regexp.MustCompile(`(?i)\b(?:version|min version|api[- ]version|schema[- ]version)\s*[:=]?\s*v?(\d+(?:\.\d+){0,2})\b|\bv(\d+\.\d+(?:\.\d+)?)\b`)
	thresholdRe    = regexp.MustCompile(`(?i)\b(?:at (?:least|most)|no more than|maximum|minimum|max|min|within|less than|greater than|höchstens|mindestens)\b[^.,;]*?(\d+(?:\.\d+)?)\s*(%|ms|s|sec|seconds?|minutes?|hours?|days?|mb|gb|kb|bytes?|chars?|characters?|lines?|attempts?|retries)\b`)
	appliesToRe    = regexp.MustCompile(`(?im)^applies to:\s*(.+)$`)
	jurisdictionRe = regexp.MustCompile(`(?i)\b(?:jurisdiction|scope|gilt für|region)\s*[:=]\s*([A-Za-z0-9 ,_/-]+)`)
)

// VersionTagMatcher records version constraints as informational meta rules.
type VersionTagMatcher struct{}

func (m *VersionTagMatcher) ID() string { return "meta.version_tag" }
func (m *VersionTagMatcher) Tier() Tier { return TierMeta }

func (m *VersionTagMatcher) Match(ctx Context) []rule.Candidate {
	var out []rule.Candidate
	for i, t := range ctx.Tokens {
		if t.Kind == token.KindBlank || t.Kind == token.KindHeading {
			continue
		}
		sub := versionTagRe.FindStringSubmatch(t.Text)
		if sub == nil {
			continue
		}
		v := sub[1]
		if v == "" {
			v = sub[2]
		}
		c := newCandidate(m, ctx, i, "version constraint v"+v+" declared: "+rule.Canonicalize(t.Text), 0.6)
		c.Category = "meta"
		out = append(out, c)
	}
	return out
}

// ThresholdMatcher extracts numeric limits with units. A sentence like
// "retries MUST be at most 3 attempts" produces both a semantic candidate
// and this meta candidate; the deduplicator reconciles them.
type ThresholdMatcher struct{}

func (m *ThresholdMatcher) ID() string { return "meta.threshold" }
func (m *ThresholdMatcher) Tier() Tier { return TierMeta }

func (m *ThresholdMatcher) Match(ctx Context) []rule.Candidate {
	var out []rule.Candidate
	for i, t := range ctx.Tokens {
		switch t.Kind {
		case token.KindText, token.KindListItem, token.KindTableRow, token.KindBlockLine:
		default:
			continue
		}
		if !thresholdRe.MatchString(t.Text) {
			continue
		}
		c := newCandidate(m, ctx, i, rule.Canonicalize(t.Text), 0.65)
		if c.Category == "general" {
			c.Category = "meta"
		}
		out = append(out, c)
	}
	return out
}

// ScopeMatcher records applicability scopes ("Applies to:" patterns and
// jurisdiction declarations) as informational rules.
type ScopeMatcher struct{}

func (m *ScopeMatcher) ID() string { return "meta.scope" }
func (m *ScopeMatcher) Tier() Tier { return TierMeta }

func (m *ScopeMatcher) Match(ctx Context) []rule.Candidate {
	var out []rule.Candidate
	for i, t := range ctx.Tokens {
		if sub := appliesToRe.FindStringSubmatch(t.Text); sub != nil {
			c := newCandidate(m, ctx, i, "applies to "+strings.TrimSpace(sub[1]), 0.6)
			c.Category = "meta"
			out = append(out, c)
			continue
		}
		if sub := jurisdictionRe.FindStringSubmatch(t.Text); sub != nil {
			c := newCandidate(m, ctx, i, "scope "+rule.Canonicalize(strings.TrimSpace(sub[1])), 0.6)
			c.Category = "meta"
			out = append(out, c)
		}
	}
	return out
}
