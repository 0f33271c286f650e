// Package retrieval scores the static corpus against a query by token overlap.
package retrieval

import (
	"sort"
	"strings"
	"unicode"

	"github.com/zhouzirui/bloomspace/backend/internal/corpus"
)

// MaxResults caps how many documents a query returns.
const MaxResults = 3

// Scored pairs a document with its overlap score.
type Scored struct {
	Document corpus.Document
	Score    int
}

// Lexical ranks documents by the size of the intersection between query and
// document token sets. Scores are not normalized by length or term frequency.
type Lexical struct {
	docs   []corpus.Document
	tokens []map[string]struct{}
}

// NewLexical tokenizes docs once; the retriever is immutable afterwards.
func NewLexical(docs []corpus.Document) *Lexical {
	l := &Lexical{
		docs:   append([]corpus.Document(nil), docs...),
		tokens: make([]map[string]struct{}, len(docs)),
	}
	for i, d := range l.docs {
		l.tokens[i] = Tokenize(d.Text)
	}
	return l
}

// Len reports the corpus size.
func (l *Lexical) Len() int { return len(l.docs) }

// Retrieve returns up to MaxResults documents ordered by descending score, ties in
// corpus order. Zero-overlap documents are excluded unless nothing overlaps, in
// which case the first documents of the corpus are returned.
func (l *Lexical) Retrieve(query string) []corpus.Document {
	scored := l.Rank(query)
	out := make([]corpus.Document, len(scored))
	for i, s := range scored {
		out[i] = s.Document
	}
	return out
}

// Rank is Retrieve with scores attached.
func (l *Lexical) Rank(query string) []Scored {
	if len(l.docs) == 0 {
		return nil
	}

	q := Tokenize(query)
	scored := make([]Scored, len(l.docs))
	for i, d := range l.docs {
		scored[i] = Scored{Document: d, Score: overlap(q, l.tokens[i])}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	top := make([]Scored, 0, MaxResults)
	for _, s := range scored {
		if s.Score == 0 || len(top) == MaxResults {
			break
		}
		top = append(top, s)
	}
	if len(top) > 0 {
		return top
	}

	n := min(MaxResults, len(l.docs))
	for i := 0; i < n; i++ {
		top = append(top, Scored{Document: l.docs[i]})
	}
	return top
}

// Retrieve is the stateless form of (*Lexical).Retrieve.
func Retrieve(query string, docs []corpus.Document) []corpus.Document {
	return NewLexical(docs).Retrieve(query)
}

// Join concatenates document texts separated by a blank line.
func Join(docs []corpus.Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Text
	}
	return strings.Join(parts, "\n\n")
}

// Tokenize lowercases text and splits it on anything that is not a letter or digit.
func Tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}
