package matcher

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"normscan/internal/rule"
	"normscan/internal/token"
)

// CodeCommentMatcher mines normative statements out of comments inside
// fenced Go code blocks. The fence body is parsed with tree-sitter so only
// real comments match, never string literals that merely contain MUST.
type CodeCommentMatcher struct{}

func (m *CodeCommentMatcher) ID() string { return "structural.code_comment" }
func (m *CodeCommentMatcher) Tier() Tier { return TierStructural }

func (m *CodeCommentMatcher) Match(ctx Context) []rule.Candidate {
	var out []rule.Candidate
	for i := 0; i < len(ctx.Tokens); i++ {
		t := ctx.Tokens[i]
		if t.Kind != token.KindFenceStart || !isGoLang(t.Lang) {
			continue
		}
		body, endIdx := fenceBody(ctx.Tokens, i)
		if body == "" {
			i = endIdx
			continue
		}
		for _, cm := range goComments([]byte(body)) {
			text := strings.TrimSpace(stripCommentSyntax(cm.text))
			if len(token.Markers(text)) == 0 {
				continue
			}
			// Attribute the candidate to the real source line inside the
			// fence: fence start line + 1-based row offset.
			tokIdx := i + 1 + cm.row
			if tokIdx > endIdx {
				tokIdx = endIdx
			}
			out = append(out, newCandidate(m, ctx, tokIdx, text, 0.9))
		}
		i = endIdx
	}
	return out
}

type goComment struct {
	text string
	row  int
}

// goComments parses src as Go and returns all comment nodes via a
// tree-sitter query.
func goComments(src []byte) []goComment {
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil
	}
	query, err := sitter.NewQuery([]byte(`(comment) @comment`), golang.GetLanguage())
	if err != nil {
		return nil
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(query, tree.RootNode())

	var out []goComment
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			out = append(out, goComment{
				text: c.Node.Content(src),
				row:  int(c.Node.StartPoint().Row),
			})
		}
	}
	return out
}

// fenceBody joins the code lines of the fence starting at index i and
// returns the index of the closing fence token.
func fenceBody(tokens []token.Token, i int) (string, int) {
	var lines []string
	for j := i + 1; j < len(tokens); j++ {
		switch tokens[j].Kind {
		case token.KindFenceEnd:
			return strings.Join(lines, "\n"), j
		case token.KindCodeLine, token.KindComment:
			lines = append(lines, tokens[j].Text)
		default:
			return strings.Join(lines, "\n"), j
		}
	}
	return strings.Join(lines, "\n"), len(tokens) - 1
}

func stripCommentSyntax(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "//"):
		return strings.TrimSpace(strings.TrimPrefix(s, "//"))
	case strings.HasPrefix(s, "/*"):
		s = strings.TrimPrefix(s, "/*")
		s = strings.TrimSuffix(strings.TrimSpace(s), "*/")
		return strings.TrimSpace(s)
	}
	return s
}

func isGoLang(lang string) bool {
	return strings.EqualFold(lang, "go") || strings.EqualFold(lang, "golang")
}
