package rule

import "sort"

// SortRules orders rules by the composite key (major, minor, local, id).
// Rule IDs are unique within a run, so the ordering is strictly total and
// repeated runs on identical input serialize byte-identically.
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i].Coord, rules[j].Coord
		if a.Major != b.Major {
			return a.Major < b.Major
		}
		if a.Minor != b.Minor {
			return a.Minor < b.Minor
		}
		if a.Local != b.Local {
			return a.Local < b.Local
		}
		return rules[i].ID < rules[j].ID
	})
}

// SortCandidates restores deterministic order after the parallel matcher
// fan-out: document, line, matcher ID, then raw text as a final tiebreak.
func SortCandidates(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Doc != cands[j].Doc {
			return cands[i].Doc < cands[j].Doc
		}
		if cands[i].Line != cands[j].Line {
			return cands[i].Line < cands[j].Line
		}
		if cands[i].MatcherID != cands[j].MatcherID {
			return cands[i].MatcherID < cands[j].MatcherID
		}
		return cands[i].RawText < cands[j].RawText
	})
}
