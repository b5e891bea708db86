package matcher

import (
	"regexp"
	"strings"

	"normscan/internal/rule"
	"normscan/internal/token"
)

var (
	requirementHeadingRe = regexp.MustCompile(`(?i)^#{2,6}\s+(?:requirement|rule|policy|vorgabe|anforderung):\s*(.+)$`)
	requirementsKeyRe    = regexp.MustCompile(`^\s*requirements?\s*:\s*$`)
	listEntryRe          = regexp.MustCompile(`^\s*-\s+(.\S.*)$`)
	requiredKeyRe        = regexp.MustCompile(`^(\s*)([\w.-]+)\s*:\s*$`)
	requiredTrueRe       = regexp.MustCompile(`^\s*required\s*:\s*(?:true|yes)\s*$`)
	listItemStripRe      = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	tableCellSplitRe     = regexp.MustCompile(`\s*\|\s*`)
)

// RequirementHeadingMatcher extracts rules declared with an explicit
// requirement heading, using the following paragraph as the rule body.
type RequirementHeadingMatcher struct{}

func (m *RequirementHeadingMatcher) ID() string { return "structural.requirement_heading" }
func (m *RequirementHeadingMatcher) Tier() Tier { return TierStructural }

func (m *RequirementHeadingMatcher) Match(ctx Context) []rule.Candidate {
	var out []rule.Candidate
	for i, t := range ctx.Tokens {
		if t.Kind != token.KindHeading {
			continue
		}
		sub := requirementHeadingRe.FindStringSubmatch(t.Text)
		if sub == nil {
			continue
		}
		name := strings.TrimSpace(sub[1])
		body := followingParagraph(ctx.Tokens, i)
		text := name
		if body != "" {
			text = name + ": " + body
		}
		out = append(out, newCandidate(m, ctx, i, text, 0.95))
	}
	return out
}

// followingParagraph collects the text lines after index i until the next
// blank line, heading or block boundary.
func followingParagraph(tokens []token.Token, i int) string {
	var parts []string
	for j := i + 1; j < len(tokens); j++ {
		t := tokens[j]
		switch t.Kind {
		case token.KindText, token.KindListItem:
			parts = append(parts, strings.TrimSpace(t.Text))
		case token.KindBlank:
			if len(parts) > 0 {
				return strings.Join(parts, " ")
			}
		default:
			return strings.Join(parts, " ")
		}
	}
	return strings.Join(parts, " ")
}

// FrontmatterRequirementsMatcher reads `requirements:` lists out of
// structured blocks (frontmatter or data fences). Every entry is a rule,
// mandatory by virtue of the declaring schema.
type FrontmatterRequirementsMatcher struct{}

func (m *FrontmatterRequirementsMatcher) ID() string { return "structural.frontmatter_requirements" }
func (m *FrontmatterRequirementsMatcher) Tier() Tier { return TierStructural }

func (m *FrontmatterRequirementsMatcher) Match(ctx Context) []rule.Candidate {
	var out []rule.Candidate
	inList := false
	for i, t := range ctx.Tokens {
		if t.Kind != token.KindBlockLine {
			inList = false
			continue
		}
		if requirementsKeyRe.MatchString(t.Text) {
			inList = true
			continue
		}
		if !inList {
			continue
		}
		sub := listEntryRe.FindStringSubmatch(t.Text)
		if sub == nil {
			inList = false
			continue
		}
		entry := strings.Trim(strings.TrimSpace(sub[1]), `"'`)
		if entry == "" {
			continue
		}
		c := newCandidate(m, ctx, i, entry, 0.92)
		// Schema-declared requirements are mandatory even without a marker.
		if !c.ExplicitMarker {
			c.PriorityHint = rule.PriorityMust
		}
		out = append(out, c)
	}
	return out
}

// BlockRequiredKeyMatcher finds structured-block keys flagged with
// `required: true` and emits a rule that the key must be present.
type BlockRequiredKeyMatcher struct{}

func (m *BlockRequiredKeyMatcher) ID() string { return "structural.block_required_key" }
func (m *BlockRequiredKeyMatcher) Tier() Tier { return TierStructural }

func (m *BlockRequiredKeyMatcher) Match(ctx Context) []rule.Candidate {
	var out []rule.Candidate
	for i, t := range ctx.Tokens {
		if t.Kind != token.KindBlockLine || !requiredTrueRe.MatchString(t.Text) {
			continue
		}
		key := enclosingBlockKey(ctx.Tokens, i)
		if key == "" {
			continue
		}
		c := newCandidate(m, ctx, i, "field "+key+" is required", 0.9)
		c.PriorityHint = rule.PriorityMust
		out = append(out, c)
	}
	return out
}

// enclosingBlockKey walks back to the nearest less-indented mapping key.
func enclosingBlockKey(tokens []token.Token, i int) string {
	col := tokens[i].Column
	for j := i - 1; j >= 0; j-- {
		t := tokens[j]
		if t.Kind != token.KindBlockLine {
			return ""
		}
		if t.Column >= col {
			continue
		}
		if sub := requiredKeyRe.FindStringSubmatch(t.Text); sub != nil {
			return sub[2]
		}
	}
	return ""
}

// NormativeListItemMatcher emits a candidate for every list item carrying a
// normative-strength marker.
type NormativeListItemMatcher struct{}

func (m *NormativeListItemMatcher) ID() string { return "structural.normative_list_item" }
func (m *NormativeListItemMatcher) Tier() Tier { return TierStructural }

func (m *NormativeListItemMatcher) Match(ctx Context) []rule.Candidate {
	var out []rule.Candidate
	for i, t := range ctx.Tokens {
		if t.Kind != token.KindListItem || !t.HasMarker {
			continue
		}
		text := listItemStripRe.ReplaceAllString(t.Text, "")
		out = append(out, newCandidate(m, ctx, i, text, 0.9))
	}
	return out
}

// TableRowMatcher extracts rules from table rows whose cells carry a
// normative marker. Header and separator rows never match because they carry
// no marker.
type TableRowMatcher struct{}

func (m *TableRowMatcher) ID() string { return "structural.table_row" }
func (m *TableRowMatcher) Tier() Tier { return TierStructural }

func (m *TableRowMatcher) Match(ctx Context) []rule.Candidate {
	var out []rule.Candidate
	for i, t := range ctx.Tokens {
		if t.Kind != token.KindTableRow || !t.HasMarker {
			continue
		}
		cells := tableCellSplitRe.Split(strings.Trim(strings.TrimSpace(t.Text), "|"), -1)
		var kept []string
		for _, c := range cells {
			if s := strings.TrimSpace(c); s != "" {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, newCandidate(m, ctx, i, strings.Join(kept, " "), 0.88))
	}
	return out
}
