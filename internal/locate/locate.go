// Package locate maps candidates to stable {major, minor, local} coordinates
// derived from the corpus heading structure. Documents without headings fall
// back to the {document, line} coordinate.
package locate

import (
	"sort"

	"normscan/internal/rule"
	"normscan/internal/token"
)

type sectionMark struct {
	line  int
	major int
	minor int
}

// Index holds the sectioning scheme of one document.
type Index struct {
	doc   string
	marks []sectionMark
}

// BuildIndex derives the section index from a document's token stream.
// Level 1-2 headings open a new major section, deeper headings a minor one.
func BuildIndex(doc string, tokens []token.Token) *Index {
	idx := &Index{doc: doc}
	major, minor := 0, 0
	for _, t := range tokens {
		if t.Kind != token.KindHeading {
			continue
		}
		if t.Level <= 2 {
			major++
			minor = 0
		} else {
			minor++
		}
		idx.marks = append(idx.marks, sectionMark{line: t.Line, major: major, minor: minor})
	}
	return idx
}

// sectionAt returns the section containing the given line.
func (idx *Index) sectionAt(line int) (major, minor int) {
	i := sort.Search(len(idx.marks), func(i int) bool { return idx.marks[i].line > line })
	if i == 0 {
		return 0, 0
	}
	m := idx.marks[i-1]
	return m.major, m.minor
}

// Assign stamps coordinates onto candidates. Candidates must already be in
// deterministic order (doc, line); local indices are handed out in that
// order, so no two candidates of a document ever share a coordinate.
func Assign(cands []rule.Candidate, indexes map[string]*Index) {
	type neighborhood struct {
		doc          string
		major, minor int
	}
	local := make(map[neighborhood]int)

	for i := range cands {
		c := &cands[i]
		major, minor := 0, 0
		if idx, ok := indexes[c.Doc]; ok {
			major, minor = idx.sectionAt(c.Line)
		}
		n := neighborhood{doc: c.Doc, major: major, minor: minor}
		local[n]++
		c.Coord = rule.Coordinate{
			Doc:   c.Doc,
			Major: major,
			Minor: minor,
			Local: local[n],
			Line:  c.Line,
		}
	}
}
