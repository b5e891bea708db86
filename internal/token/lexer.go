package token

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	listItemRe = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+\S`)
	tableRowRe = regexp.MustCompile(`^\s*\|.*\|\s*$`)
	fenceRe    = regexp.MustCompile("^```([A-Za-z0-9_+-]*)\\s*$")
	commentRe  = regexp.MustCompile(`^\s*(//|#(?:\s|$)|<!--)`)
	bracketRe  = regexp.MustCompile(`\[([A-Za-z0-9_-]+:\s*[^\]]+)\]`)
	pathLikeRe = regexp.MustCompile(`(?:^|[\s("'` + "`" + `])((?:\.{0,2}/)?[\w.-]+(?:/[\w.-]+)+(?:\.\w+)?|[\w-]+\.(?:go|md|ya?ml|json|txt|toml|sql))`)

	// Normative-strength keywords in the English and German registers.
	markerRe = regexp.MustCompile(`\b(MUST NOT|MUST|SHALL NOT|SHALL|SHOULD NOT|SHOULD|MAY|REQUIRED|OPTIONAL|MUSS NICHT|MUSS|DARF NICHT|DARF|SOLL NICHT|SOLL|SOLLTE|KANN)\b`)
)

// Tokenize lexes one document into a token stream. Structured regions
// (frontmatter, fenced blocks) are tracked so their interior lines keep their
// block context; an unterminated region is re-lexed as plain lines and
// recorded as a recoverable warning.
func Tokenize(docID, content string) Result {
	lines := strings.Split(content, "\n")
	res := Result{Tokens: make([]Token, 0, len(lines))}

	i := 0
	// YAML frontmatter only counts when the document opens with it.
	if len(lines) > 0 && strings.TrimRight(lines[0], "\r") == "---" {
		i = lexStructuredBlock(docID, lines, 0, "---", &res)
	}

	for i < len(lines) {
		line := strings.TrimRight(lines[i], "\r")

		if m := fenceRe.FindStringSubmatch(line); m != nil {
			i = lexFence(docID, lines, i, m[1], &res)
			continue
		}

		res.Tokens = append(res.Tokens, classifyLine(docID, line, i+1))
		i++
	}
	return res
}

// lexStructuredBlock consumes a delimiter-bounded data block starting at
// lines[start]. On a missing closing delimiter it falls back to line
// tokenization for the region instead of aborting.
func lexStructuredBlock(docID string, lines []string, start int, delim string, res *Result) int {
	end := -1
	for j := start + 1; j < len(lines); j++ {
		if strings.TrimRight(lines[j], "\r") == delim {
			end = j
			break
		}
	}
	if end == -1 {
		res.Warnings = append(res.Warnings, Warning{
			Kind:    "malformed_block",
			Doc:     docID,
			Line:    start + 1,
			Message: fmt.Sprintf("structured block opened at line %d has no closing %q, falling back to line tokenization", start+1, delim),
		})
		res.Tokens = append(res.Tokens, classifyLine(docID, strings.TrimRight(lines[start], "\r"), start+1))
		return start + 1
	}

	res.Tokens = append(res.Tokens, Token{Kind: KindBlockStart, Text: delim, Line: start + 1, Column: 1, Doc: docID})
	for j := start + 1; j < end; j++ {
		line := strings.TrimRight(lines[j], "\r")
		t := Token{Kind: KindBlockLine, Text: line, Line: j + 1, Column: indentColumn(line), Doc: docID}
		annotate(&t)
		res.Tokens = append(res.Tokens, t)
	}
	res.Tokens = append(res.Tokens, Token{Kind: KindBlockEnd, Text: delim, Line: end + 1, Column: 1, Doc: docID})
	return end + 1
}

// lexFence consumes a fenced code block. Same recovery contract as
// lexStructuredBlock. Data-format fences (yaml, json, toml) produce block
// tokens so structural matchers see them as structured data.
func lexFence(docID string, lines []string, start int, lang string, res *Result) int {
	end := -1
	for j := start + 1; j < len(lines); j++ {
		if strings.TrimRight(lines[j], "\r") == "```" {
			end = j
			break
		}
	}
	if end == -1 {
		res.Warnings = append(res.Warnings, Warning{
			Kind:    "malformed_block",
			Doc:     docID,
			Line:    start + 1,
			Message: fmt.Sprintf("code fence opened at line %d is never closed, falling back to line tokenization", start+1),
		})
		res.Tokens = append(res.Tokens, classifyLine(docID, strings.TrimRight(lines[start], "\r"), start+1))
		return start + 1
	}

	interior := KindCodeLine
	startKind, endKind := KindFenceStart, KindFenceEnd
	if isDataLang(lang) {
		interior = KindBlockLine
		startKind, endKind = KindBlockStart, KindBlockEnd
	}

	res.Tokens = append(res.Tokens, Token{Kind: startKind, Text: strings.TrimRight(lines[start], "\r"), Line: start + 1, Column: 1, Doc: docID, Lang: strings.ToLower(lang)})
	for j := start + 1; j < end; j++ {
		line := strings.TrimRight(lines[j], "\r")
		kind := interior
		if interior == KindCodeLine && commentRe.MatchString(line) {
			kind = KindComment
		}
		t := Token{Kind: kind, Text: line, Line: j + 1, Column: indentColumn(line), Doc: docID, Lang: strings.ToLower(lang)}
		annotate(&t)
		res.Tokens = append(res.Tokens, t)
	}
	res.Tokens = append(res.Tokens, Token{Kind: endKind, Text: "```", Line: end + 1, Column: 1, Doc: docID, Lang: strings.ToLower(lang)})
	return end + 1
}

func classifyLine(docID, line string, n int) Token {
	t := Token{Kind: KindText, Text: line, Line: n, Column: indentColumn(line), Doc: docID}

	switch {
	case strings.TrimSpace(line) == "":
		t.Kind = KindBlank
		return t
	case headingRe.MatchString(line):
		m := headingRe.FindStringSubmatch(line)
		t.Kind = KindHeading
		t.Level = len(m[1])
		t.Text = line
	case tableRowRe.MatchString(line):
		t.Kind = KindTableRow
	case listItemRe.MatchString(line):
		t.Kind = KindListItem
	case commentRe.MatchString(line):
		t.Kind = KindComment
	}

	annotate(&t)
	return t
}

// annotate attaches marker, bracket metadata and path-like attributes.
func annotate(t *Token) {
	t.HasMarker = markerRe.MatchString(t.Text)
	for _, m := range bracketRe.FindAllStringSubmatch(t.Text, -1) {
		t.Brackets = append(t.Brackets, m[1])
	}
	for _, m := range pathLikeRe.FindAllStringSubmatch(t.Text, -1) {
		t.Paths = append(t.Paths, m[1])
	}
}

func indentColumn(line string) int {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return i + 1
		}
	}
	return 1
}

func isDataLang(lang string) bool {
	switch strings.ToLower(lang) {
	case "yaml", "yml", "json", "toml":
		return true
	default:
		return false
	}
}

// Markers returns the normative keywords present in s, uppercased source
// forms, in order of appearance.
func Markers(s string) []string {
	return markerRe.FindAllString(s, -1)
}
