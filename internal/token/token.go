// Package token turns raw document text into a typed, line-oriented token
// stream. The tokenizer is deterministic for identical input and never drops
// content: malformed structured blocks degrade to plain text tokens plus a
// recoverable warning.
package token

// Kind classifies a token.
type Kind string

const (
	KindHeading    Kind = "heading"
	KindListItem   Kind = "list_item"
	KindTableRow   Kind = "table_row"
	KindBlockStart Kind = "block_start"
	KindBlockLine  Kind = "block_line"
	KindBlockEnd   Kind = "block_end"
	KindFenceStart Kind = "fence_start"
	KindCodeLine   Kind = "code_line"
	KindFenceEnd   Kind = "fence_end"
	KindComment    Kind = "comment"
	KindText       Kind = "text"
	KindBlank      Kind = "blank"
)

// Token is one lexed line with its classification and extracted attributes.
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
	Doc    string

	// Heading level (number of leading #) when Kind == KindHeading.
	Level int
	// Fence language tag when Kind == KindFenceStart.
	Lang string
	// HasMarker is set when the line contains a normative-strength keyword.
	HasMarker bool
	// Brackets holds inline [key: value] metadata found on the line.
	Brackets []string
	// Paths holds path-like strings found on the line.
	Paths []string
}

// Warning is a recoverable tokenizer issue. The surrounding content is still
// tokenized, only less precisely.
type Warning struct {
	Kind    string
	Doc     string
	Line    int
	Message string
}

// Result is the typed recoverable outcome of tokenizing one document.
type Result struct {
	Tokens   []Token
	Warnings []Warning
}
