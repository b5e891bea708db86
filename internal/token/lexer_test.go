package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Kind)
	}
	return out
}

func TestTokenize_HeadingsAndText(t *testing.T) {
	res := Tokenize("doc.md", "# Title\n\nSome text.\n## Sub\n- item one\n")
	require.Empty(t, res.Warnings)

	assert.Equal(t, []Kind{KindHeading, KindBlank, KindText, KindHeading, KindListItem, KindBlank}, kinds(res.Tokens))
	assert.Equal(t, 1, res.Tokens[0].Level)
	assert.Equal(t, 2, res.Tokens[3].Level)
	assert.Equal(t, 5, res.Tokens[4].Line)
	assert.Equal(t, "doc.md", res.Tokens[0].Doc)
}

func TestTokenize_Frontmatter(t *testing.T) {
	content := "---\ncategory: sop\nrequirements:\n  - always wrap errors\n---\nBody text.\n"
	res := Tokenize("doc.md", content)
	require.Empty(t, res.Warnings)

	assert.Equal(t, KindBlockStart, res.Tokens[0].Kind)
	assert.Equal(t, KindBlockLine, res.Tokens[1].Kind)
	assert.Equal(t, KindBlockEnd, res.Tokens[4].Kind)
	assert.Equal(t, KindText, res.Tokens[5].Kind)
}

func TestTokenize_MalformedBlockRecovers(t *testing.T) {
	// Opening fence without a closing one: content must survive as text.
	content := "Intro MUST stay.\n```yaml\nkey: value\n"
	res := Tokenize("doc.md", content)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "malformed_block", res.Warnings[0].Kind)
	assert.Equal(t, 2, res.Warnings[0].Line)

	// No content dropped: every input line produced a token.
	var texts []string
	for _, tok := range res.Tokens {
		texts = append(texts, tok.Text)
	}
	assert.Contains(t, texts, "Intro MUST stay.")
	assert.Contains(t, texts, "key: value")
}

func TestTokenize_GoFence(t *testing.T) {
	content := "```go\n// comments MUST explain invariants\nvar x = 1\n```\n"
	res := Tokenize("doc.md", content)
	require.Empty(t, res.Warnings)

	assert.Equal(t, KindFenceStart, res.Tokens[0].Kind)
	assert.Equal(t, "go", res.Tokens[0].Lang)
	assert.Equal(t, KindComment, res.Tokens[1].Kind)
	assert.True(t, res.Tokens[1].HasMarker)
	assert.Equal(t, KindCodeLine, res.Tokens[2].Kind)
	assert.Equal(t, KindFenceEnd, res.Tokens[3].Kind)
}

func TestTokenize_DataFenceBecomesBlock(t *testing.T) {
	content := "```yaml\nretention:\n  required: true\n```\n"
	res := Tokenize("doc.md", content)

	assert.Equal(t, KindBlockStart, res.Tokens[0].Kind)
	assert.Equal(t, KindBlockLine, res.Tokens[1].Kind)
	assert.Equal(t, KindBlockLine, res.Tokens[2].Kind)
	assert.Equal(t, KindBlockEnd, res.Tokens[3].Kind)
}

func TestTokenize_MarkerRegisters(t *testing.T) {
	res := Tokenize("doc.md", "Passwords MUST be hashed.\nLogs SOLLTE rotiert werden.\nNothing normative here.\n")

	assert.True(t, res.Tokens[0].HasMarker)
	assert.True(t, res.Tokens[1].HasMarker)
	assert.False(t, res.Tokens[2].HasMarker)
}

func TestTokenize_Attributes(t *testing.T) {
	res := Tokenize("doc.md", "See [policy: rotate keys] and config/app.yaml for details.\n")

	tok := res.Tokens[0]
	require.Len(t, tok.Brackets, 1)
	assert.Equal(t, "policy: rotate keys", tok.Brackets[0])
	require.NotEmpty(t, tok.Paths)
	assert.Equal(t, "config/app.yaml", tok.Paths[0])
}

func TestTokenize_TableRow(t *testing.T) {
	res := Tokenize("doc.md", "| Rule | Strength |\n|---|---|\n| backups | MUST run daily |\n")

	assert.Equal(t, KindTableRow, res.Tokens[0].Kind)
	assert.Equal(t, KindTableRow, res.Tokens[2].Kind)
	assert.True(t, res.Tokens[2].HasMarker)
}

func TestMarkers(t *testing.T) {
	assert.Equal(t, []string{"MUST NOT"}, Markers("secrets MUST NOT be logged"))
	assert.Equal(t, []string{"MUSS"}, Markers("Backups MUSS täglich laufen"))
	assert.Empty(t, Markers("must be lowercase is not a marker"))
}
