// Package corpus loads the document set a run operates on. Documents are
// read once, content-hashed and immutable for the rest of the run.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Format hints tell matchers how much structure to expect.
const (
	FormatStructured = "structured"
	FormatFreeText   = "free-text"
	FormatMixed      = "mixed"
)

// SourceDocument is one identified, versioned unit of input text.
type SourceDocument struct {
	ID         string
	Path       string
	FormatHint string
	Content    string
	Hash       string
}

// Loader walks a corpus root and produces SourceDocuments.
type Loader struct {
	includes []string
	ignores  []string
}

// NewLoader creates a loader. Empty includes default to the common document
// and data extensions; ignores always cover VCS and dependency directories.
func NewLoader(includes, ignores []string) *Loader {
	if len(includes) == 0 {
		includes = []string{"**/*.md", "**/*.markdown", "**/*.txt", "**/*.yaml", "**/*.yml", "**/*.json"}
	}
	ignores = append([]string{"**/.git/**", "**/vendor/**", "**/node_modules/**"}, ignores...)
	return &Loader{includes: includes, ignores: ignores}
}

// Load reads every matching document under root, in deterministic path
// order. An unreadable file fails the load: the run cannot claim to have
// audited a corpus it could not read.
func (l *Loader) Load(root string) ([]SourceDocument, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if l.matches(l.ignores, rel) || !l.matches(l.includes, rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus %s: %w", root, err)
	}
	sort.Strings(paths)

	docs := make([]SourceDocument, 0, len(paths))
	for _, path := range paths {
		doc, err := ReadDocument(root, path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (l *Loader) matches(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// ReadDocument reads and hashes a single file into a SourceDocument.
func ReadDocument(root, path string) (SourceDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SourceDocument{}, fmt.Errorf("read document %s: %w", path, err)
	}
	rel := path
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil {
			rel = filepath.ToSlash(r)
		}
	}
	sum := sha256.Sum256(raw)
	return SourceDocument{
		ID:         rel,
		Path:       path,
		FormatHint: FormatHintFor(path),
		Content:    string(raw),
		Hash:       hex.EncodeToString(sum[:]),
	}, nil
}

// FormatHintFor maps a file extension to the declared format hint.
func FormatHintFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".toml":
		return FormatStructured
	case ".md", ".markdown":
		return FormatMixed
	default:
		return FormatFreeText
	}
}
