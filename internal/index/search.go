package index

import (
	"sort"
	"strings"

	"github.com/custodia-labs/telemachus/internal/boolean"
	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// Searcher answers expressions against one snapshot.
// It is safe for concurrent use once created.
type Searcher struct {
	records  []domain.NormalizedRecord
	postings domain.InvertedIndex
	vocab    []string
}

// NewSearcher prepares a searcher over the snapshot's records and index.
func NewSearcher(snapshot *domain.IndexSnapshot) *Searcher {
	vocab := make([]string, 0, len(snapshot.InvertedIndex))
	for tok := range snapshot.InvertedIndex {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)

	return &Searcher{
		records:  snapshot.Records,
		postings: snapshot.InvertedIndex,
		vocab:    vocab,
	}
}

// Search returns the ascending positions of records whose subject name
// satisfies the expression.
func (s *Searcher) Search(e boolean.Expr) []int {
	var matched []int
	s.candidates(e).each(len(s.records), func(pos int) {
		if e.Match(s.records[pos].SubjectName) {
			matched = append(matched, pos)
		}
	})
	return matched
}

// Candidates returns a superset of the positions Search would return.
// The boolean is false when the expression cannot be narrowed and every
// record is a candidate.
func (s *Searcher) Candidates(e boolean.Expr) ([]int, bool) {
	c := s.candidates(e)
	return c.ids, !c.all
}

// Scan evaluates the expression against every record without the index.
func (s *Searcher) Scan(e boolean.Expr) []int {
	var matched []int
	for pos, r := range s.records {
		if e.Match(r.SubjectName) {
			matched = append(matched, pos)
		}
	}
	return matched
}

// candidateSet is either every record or an ascending list of positions.
type candidateSet struct {
	all bool
	ids []int
}

func (c candidateSet) each(n int, fn func(int)) {
	if c.all {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	for _, id := range c.ids {
		fn(id)
	}
}

func (s *Searcher) candidates(e boolean.Expr) candidateSet {
	switch v := e.(type) {
	case boolean.Literal:
		return s.literalCandidates(v.Text)
	case boolean.And:
		return intersectSets(s.candidates(v.Left), s.candidates(v.Right))
	case boolean.Or:
		return unionSets(s.candidates(v.Left), s.candidates(v.Right))
	}
	// NOT cannot be narrowed by positive postings.
	return candidateSet{all: true}
}

// literalCandidates intersects, over each query token, the union of postings
// of every indexed token containing it. A record containing the literal as a
// substring contains each of its whitespace-free tokens inside one of its own
// indexed tokens, so no match is lost.
func (s *Searcher) literalCandidates(text string) candidateSet {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return candidateSet{all: true}
	}

	var result candidateSet
	for i, q := range tokens {
		var ids []int
		for _, tok := range s.vocab {
			if strings.Contains(tok, q) {
				ids = union(ids, s.postings[tok])
			}
		}
		if i == 0 {
			result = candidateSet{ids: ids}
		} else {
			result.ids = intersect(result.ids, ids)
		}
		if len(result.ids) == 0 {
			break
		}
	}
	return result
}

func intersectSets(a, b candidateSet) candidateSet {
	switch {
	case a.all:
		return b
	case b.all:
		return a
	}
	return candidateSet{ids: intersect(a.ids, b.ids)}
}

func unionSets(a, b candidateSet) candidateSet {
	if a.all || b.all {
		return candidateSet{all: true}
	}
	return candidateSet{ids: union(a.ids, b.ids)}
}

// intersect merges two ascending lists.
func intersect(a, b []int) []int {
	var out []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// union merges two ascending lists without duplicates.
func union(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i == len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
