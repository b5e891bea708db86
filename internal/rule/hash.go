package rule

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Canonicalize collapses whitespace so cosmetic formatting never changes a
// rule's identity.
func Canonicalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}

// ContentHash fingerprints a rule as sha256(text || priority || category).
// Any change to text, priority or category yields a different digest.
func ContentHash(normalizedText string, priority Priority, category string) string {
	fingerprint := strings.Join([]string{
		Canonicalize(normalizedText),
		string(priority),
		strings.TrimSpace(category),
	}, "|")
	sum := sha256.Sum256([]byte(fingerprint))
	return hex.EncodeToString(sum[:])
}

// TextHash fingerprints raw candidate text only, used for exact-duplicate
// grouping before a priority has been assigned.
func TextHash(text string) string {
	sum := sha256.Sum256([]byte(Canonicalize(text)))
	return hex.EncodeToString(sum[:])
}

// NewID derives the composite, human-legible rule identifier. Stable across
// runs for identical input: coordinate, category and content hash are all
// deterministic functions of the corpus.
func NewID(coord Coordinate, category, contentHash string) string {
	cat := sanitizeCategory(category)
	short := contentHash
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("R-%s-%s-%s", coord.Key(), cat, short)
}

func sanitizeCategory(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ' || r == '/':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "general"
	}
	return b.String()
}

// Fingerprint aggregates all content hashes in set order. Reordering or
// changing any single rule changes the aggregate.
func (s *Set) Fingerprint() string {
	h := sha256.New()
	for _, r := range s.Rules {
		h.Write([]byte(r.ContentHash))
	}
	return hex.EncodeToString(h.Sum(nil))
}
