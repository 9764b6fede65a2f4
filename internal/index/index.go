package index

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// MinTokenLength is the shortest token, in runes, kept in the index.
const MinTokenLength = 3

// Tokenize splits a name on whitespace and returns its distinct lowercase
// tokens of at least MinTokenLength runes, in order of first appearance.
func Tokenize(name string) []string {
	fields := strings.Fields(strings.ToLower(name))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTokenLength || slices.Contains(tokens, f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Build indexes the subject name of each record by position.
// Postings lists are ascending and hold each position at most once.
func Build(records []domain.NormalizedRecord) domain.InvertedIndex {
	idx := make(domain.InvertedIndex)
	for pos, r := range records {
		for _, tok := range Tokenize(r.SubjectName) {
			idx[tok] = append(idx[tok], pos)
		}
	}
	return idx
}
