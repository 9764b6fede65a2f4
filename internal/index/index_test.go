package index

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/telemachus/internal/boolean"
	"github.com/custodia-labs/telemachus/internal/core/domain"
)

func records(names ...string) []domain.NormalizedRecord {
	out := make([]domain.NormalizedRecord, len(names))
	for i, n := range names {
		out[i] = domain.NormalizedRecord{SubjectName: n, Jurisdiction: domain.JurisdictionUK}
	}
	return out
}

func snapshotOf(recs []domain.NormalizedRecord) *domain.IndexSnapshot {
	return &domain.IndexSnapshot{Records: recs, InvertedIndex: Build(recs)}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"Google UK Limited", []string{"google", "limited"}},
		{"  BP  plc ", []string{"plc"}},
		{"Shell shell SHELL", []string{"shell"}},
		{"Zürich Versicherung AG", []string{"zürich", "versicherung"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.name))
		})
	}
}

func TestBuild(t *testing.T) {
	idx := Build(records("Google UK", "Google Ireland", "Amazon UK", "google google"))

	assert.Equal(t, []int{0, 1, 3}, idx["google"])
	assert.Equal(t, []int{1}, idx["ireland"])
	assert.Equal(t, []int{2}, idx["amazon"])
	_, ok := idx["uk"]
	assert.False(t, ok)
}

func TestSearch_Literal(t *testing.T) {
	s := NewSearcher(snapshotOf(records("Google UK", "Alphabet (Google)", "Googlers Ltd", "Amazon")))

	tests := []struct {
		query string
		want  []int
	}{
		{"google", []int{0, 1, 2}},
		{"oogle", []int{0, 1, 2}},
		{"google uk", []int{0}},
		{"(google)", []int{1}},
		{"uk", []int{0}},
		{"tesco", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			e := boolean.Literal{Text: tt.query}
			assert.Equal(t, tt.want, s.Search(e))
		})
	}
}

func TestCandidates_ShortTermFallsBackToScan(t *testing.T) {
	s := NewSearcher(snapshotOf(records("BP plc", "Shell")))

	_, narrowed := s.Candidates(boolean.Literal{Text: "bp"})
	assert.False(t, narrowed)

	ids, narrowed := s.Candidates(boolean.Literal{Text: "shell"})
	assert.True(t, narrowed)
	assert.Equal(t, []int{1}, ids)
}

func TestSearch_Compound(t *testing.T) {
	s := NewSearcher(snapshotOf(records("Shell UK", "BP International", "Meta Platforms", "Meta (formerly Facebook)")))

	tests := []struct {
		query string
		want  []int
	}{
		{"shell OR bp", []int{0, 1}},
		{"meta NOT facebook", []int{2}},
		{"meta AND platforms", []int{2}},
		{"NOT meta", []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			e, err := boolean.Parse(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Search(e))
		})
	}
}

func TestSearch_AgreesWithLinearScan(t *testing.T) {
	words := []string{"google", "amazon", "uk", "ltd", "limited", "bp", "shell", "energy",
		"meta", "platforms", "ireland", "plc", "the", "of", "association", "trust", "ag"}
	rng := rand.New(rand.NewSource(42))

	names := make([]string, 300)
	for i := range names {
		n := 1 + rng.Intn(4)
		name := ""
		for j := 0; j < n; j++ {
			if j > 0 {
				name += " "
			}
			name += words[rng.Intn(len(words))]
		}
		names[i] = name
	}
	s := NewSearcher(snapshotOf(records(names...)))

	queries := []string{"goo", "oogle", "ltd", "limited", "imit", "uk", "e", "amazon uk",
		"gle ama", "shell OR bp", "meta NOT platforms", "(trust OR plc) AND ire", "the association",
		"NOT ag", "energy ltd", "zzz"}
	for _, w := range words {
		queries = append(queries, w, w[:len(w)/2+1])
	}

	for _, q := range queries {
		t.Run(fmt.Sprintf("q=%s", q), func(t *testing.T) {
			e, err := boolean.Parse(q)
			require.NoError(t, err)
			assert.Equal(t, s.Scan(e), s.Search(e))
		})
	}
}

func TestIntersectUnion(t *testing.T) {
	assert.Equal(t, []int{2, 5}, intersect([]int{1, 2, 5, 9}, []int{2, 3, 5}))
	assert.Nil(t, intersect(nil, []int{1}))
	assert.Equal(t, []int{1, 2, 3, 5, 9}, union([]int{1, 2, 5, 9}, []int{2, 3, 5}))
	assert.Equal(t, []int{}, union(nil, nil))
}
