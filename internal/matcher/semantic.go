package matcher

import (
	"regexp"
	"strings"

	"normscan/internal/rule"
	"normscan/internal/token"
)

var (
	// Normative sentences in the English and German registers. A sentence is
	// the shortest run up to a period or line end containing the marker.
	normativeSentenceRe = regexp.MustCompile(`[^.!?]*\b(?:MUST(?: NOT)?|SHALL(?: NOT)?|SHOULD(?: NOT)?|MAY|MUSS(?: NICHT)?|DARF(?: NICHT)?|SOLL(?: NICHT)?|SOLLTE|KANN)\b[^.!?]*(?:[.!?]|$)`)
	prohibitionRe       = regexp.MustCompile(`\b(?:MUST NOT|SHALL NOT|DARF NICHT|NEVER|NIEMALS)\b`)
	directiveBracketRe  = regexp.MustCompile(`^(?:directive|policy|rule|enforce)\s*:\s*(.+)$`)
)

// NormativeSentenceMatcher extracts individual normative sentences from free
// text, list items and comments. One line can yield several candidates when
// it contains several normative sentences.
type NormativeSentenceMatcher struct{}

func (m *NormativeSentenceMatcher) ID() string { return "semantic.normative_sentence" }
func (m *NormativeSentenceMatcher) Tier() Tier { return TierSemantic }

func (m *NormativeSentenceMatcher) Match(ctx Context) []rule.Candidate {
	var out []rule.Candidate
	for i, t := range ctx.Tokens {
		if !t.HasMarker {
			continue
		}
		switch t.Kind {
		case token.KindText, token.KindListItem, token.KindComment:
		default:
			continue
		}
		line := listItemStripRe.ReplaceAllString(t.Text, "")
		for _, s := range normativeSentenceRe.FindAllString(line, -1) {
			s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "."))
			if len(s) < 8 {
				continue
			}
			out = append(out, newCandidate(m, ctx, i, s, 0.85))
		}
	}
	return out
}

// ProhibitionMatcher emits candidates for explicit prohibitions. These are
// always mandatory; the dedicated matcher keeps them auditable separately
// from positive obligations.
type ProhibitionMatcher struct{}

func (m *ProhibitionMatcher) ID() string { return "semantic.prohibition" }
func (m *ProhibitionMatcher) Tier() Tier { return TierSemantic }

func (m *ProhibitionMatcher) Match(ctx Context) []rule.Candidate {
	var out []rule.Candidate
	for i, t := range ctx.Tokens {
		if !prohibitionRe.MatchString(t.Text) {
			continue
		}
		switch t.Kind {
		case token.KindText, token.KindListItem, token.KindComment, token.KindTableRow:
		default:
			continue
		}
		text := listItemStripRe.ReplaceAllString(t.Text, "")
		c := newCandidate(m, ctx, i, text, 0.9)
		c.PriorityHint = rule.PriorityMust
		c.ExplicitMarker = true
		out = append(out, c)
	}
	return out
}

// BracketDirectiveMatcher reads inline bracketed metadata of the form
// [directive: ...] or [policy: ...]. Lower confidence: bracketed asides are a
// weaker signal than sentences.
type BracketDirectiveMatcher struct{}

func (m *BracketDirectiveMatcher) ID() string { return "semantic.bracket_directive" }
func (m *BracketDirectiveMatcher) Tier() Tier { return TierSemantic }

func (m *BracketDirectiveMatcher) Match(ctx Context) []rule.Candidate {
	var out []rule.Candidate
	for i, t := range ctx.Tokens {
		for _, b := range t.Brackets {
			sub := directiveBracketRe.FindStringSubmatch(strings.ToLower(b))
			if sub == nil {
				continue
			}
			// Recover original casing from the raw bracket content.
			body := strings.TrimSpace(b[strings.Index(strings.ToLower(b), sub[1]):])
			out = append(out, newCandidate(m, ctx, i, body, 0.7))
		}
	}
	return out
}
