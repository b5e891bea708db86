package pipeline

import (
	"sort"

	"normscan/internal/classify"
	"normscan/internal/dedup"
	"normscan/internal/rule"
)

// BuildRules turns deduplicated groups into the final canonical rules:
// priority, content hash, identifier, evidence ledger and conflict records.
// Identifier collisions are resolved by suffixing the coordinate with a
// longer content-hash fragment, never silently.
func BuildRules(groups []dedup.Merged) (*rule.Set, []rule.Conflict, []rule.Evidence) {
	set := &rule.Set{Rules: make([]rule.Rule, 0, len(groups))}
	var conflicts []rule.Conflict
	var evidence []rule.Evidence

	used := make(map[string]bool, len(groups))

	for _, g := range groups {
		priority := classify.Priority(g)
		hash := rule.ContentHash(g.NormalizedText, priority, g.Category)

		coord := g.Coord
		id := rule.NewID(coord, g.Category, hash)
		for frag := 8; used[id] && frag+8 <= len(hash); frag += 8 {
			coord.Suffix = hash[frag : frag+8]
			id = rule.NewID(coord, g.Category, hash)
		}
		used[id] = true

		r := rule.Rule{
			ID:          id,
			Description: g.NormalizedText,
			Priority:    priority,
			Category:    g.Category,
			Coord:       coord,
			ContentHash: hash,
			Confidence:  g.Confidence,
			MatcherIDs:  g.MatcherIDs,
		}

		seen := make(map[string]bool, len(g.Members))
		for _, m := range g.Members {
			key := m.Coord.Doc + "|" + m.Coord.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			e := rule.Evidence{RuleID: id, Coord: m.Coord, ContentHash: hash}
			r.Evidence = append(r.Evidence, e)
			evidence = append(evidence, e)
		}

		if g.Conflicted() {
			conflicts = append(conflicts, rule.Conflict{
				RuleID:     id,
				Subject:    g.NormalizedText,
				Priorities: g.Hints,
				Resolved:   priority,
				Policy:     g.Policy,
			})
		}

		set.Rules = append(set.Rules, r)
	}

	rule.SortRules(set.Rules)
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].RuleID < conflicts[j].RuleID })
	sort.Slice(evidence, func(i, j int) bool {
		if evidence[i].RuleID != evidence[j].RuleID {
			return evidence[i].RuleID < evidence[j].RuleID
		}
		if evidence[i].Coord.Doc != evidence[j].Coord.Doc {
			return evidence[i].Coord.Doc < evidence[j].Coord.Doc
		}
		return evidence[i].Coord.Line < evidence[j].Coord.Line
	})

	return set, conflicts, evidence
}
