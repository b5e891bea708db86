package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"normscan/internal/rule"
	"normscan/internal/token"
)

const sectioned = `# Storage

## Retention

Backups MUST be encrypted.

### Rotation

Keys SHOULD rotate monthly.

## Access

Reads MAY be cached.
`

func TestBuildIndex_SectionBoundaries(t *testing.T) {
	res := tokenize(t, "doc.md", sectioned)
	idx := BuildIndex("doc.md", res)

	cases := []struct {
		line         int
		major, minor int
	}{
		{2, 1, 0},  // between title and first section
		{5, 2, 0},  // under "Retention"
		{9, 2, 1},  // under "Rotation"
		{13, 3, 0}, // under "Access"
	}
	for _, c := range cases {
		major, minor := idx.sectionAt(c.line)
		assert.Equal(t, c.major, major, "line %d", c.line)
		assert.Equal(t, c.minor, minor, "line %d", c.line)
	}
}

func TestBuildIndex_NoHeadings(t *testing.T) {
	res := tokenize(t, "plain.md", "Requests MUST be logged.\n")
	idx := BuildIndex("plain.md", res)

	major, minor := idx.sectionAt(1)
	assert.Equal(t, 0, major)
	assert.Equal(t, 0, minor)
}

func TestAssign_LocalCounterPerNeighborhood(t *testing.T) {
	res := tokenize(t, "doc.md", sectioned)
	indexes := map[string]*Index{"doc.md": BuildIndex("doc.md", res)}

	cands := []rule.Candidate{
		{Doc: "doc.md", Line: 5},
		{Doc: "doc.md", Line: 9},
		{Doc: "doc.md", Line: 13},
		{Doc: "other.md", Line: 3}, // no index, falls back to {0,0}
	}
	Assign(cands, indexes)

	assert.Equal(t, rule.Coordinate{Doc: "doc.md", Major: 2, Minor: 0, Local: 1, Line: 5}, cands[0].Coord)
	assert.Equal(t, rule.Coordinate{Doc: "doc.md", Major: 2, Minor: 1, Local: 1, Line: 9}, cands[1].Coord)
	assert.Equal(t, rule.Coordinate{Doc: "doc.md", Major: 3, Minor: 0, Local: 1, Line: 13}, cands[2].Coord)
	assert.Equal(t, rule.Coordinate{Doc: "other.md", Major: 0, Minor: 0, Local: 1, Line: 3}, cands[3].Coord)
}

func TestAssign_SameSectionDistinctLocals(t *testing.T) {
	res := tokenize(t, "doc.md", "# One\n\nA MUST hold.\nB MUST hold.\n")
	indexes := map[string]*Index{"doc.md": BuildIndex("doc.md", res)}

	cands := []rule.Candidate{
		{Doc: "doc.md", Line: 3},
		{Doc: "doc.md", Line: 4},
	}
	Assign(cands, indexes)

	assert.Equal(t, 1, cands[0].Coord.Local)
	assert.Equal(t, 2, cands[1].Coord.Local)
	assert.NotEqual(t, cands[0].Coord.Key(), cands[1].Coord.Key())
}

// tokenize is a test helper wrapping the lexer.
func tokenize(t *testing.T, doc, content string) []token.Token {
	t.Helper()
	res := token.Tokenize(doc, content)
	require.Empty(t, res.Warnings)
	return res.Tokens
}
