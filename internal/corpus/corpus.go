// Package corpus loads and builds the static document set used for local retrieval.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Separator joins documents inside a built documents file.
const Separator = "\n<<DOC_SEP>>\n"

// Document is an immutable unit of reference text, identified by its position in the corpus.
type Document struct {
	Index int
	Text  string
}

// Load reads a documents file. A missing file yields an empty corpus.
func Load(path string) ([]Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return Parse(string(raw)), nil
}

// Parse splits raw text on Separator, or on blank lines when no separator is present.
func Parse(raw string) []Document {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var parts []string
	if strings.Contains(raw, Separator) {
		parts = strings.Split(raw, Separator)
	} else {
		parts = Split(raw)
	}

	docs := make([]Document, 0, len(parts))
	for _, part := range parts {
		text := strings.TrimSpace(part)
		if text == "" {
			continue
		}
		docs = append(docs, Document{Index: len(docs), Text: text})
	}
	return docs
}

// Split breaks a knowledge file into paragraphs separated by blank lines.
func Split(markdown string) []string {
	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	paragraphs := make([]string, 0)
	for _, p := range strings.Split(markdown, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// Write stores docs joined by Separator.
func Write(path string, docs []string) error {
	if err := os.WriteFile(path, []byte(strings.Join(docs, Separator)), 0o644); err != nil {
		return fmt.Errorf("write corpus %s: %w", path, err)
	}
	return nil
}
