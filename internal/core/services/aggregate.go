package services

import (
	"sort"

	"github.com/custodia-labs/telemachus/internal/core/domain"
)

// Aggregate groups records by counterpart, department and year.
// Each list is sorted by count descending; ties keep first-seen order.
// Records without a parsable year are left out of the by-year list only.
func Aggregate(records []domain.TaggedRecord) domain.Aggregates {
	return domain.Aggregates{
		ByCounterpart: countBy(records, func(r domain.TaggedRecord) (string, bool) {
			return labelOrUnknown(r.CounterpartName), true
		}),
		ByDepartment: countBy(records, func(r domain.TaggedRecord) (string, bool) {
			return labelOrUnknown(r.Department), true
		}),
		ByYear: countBy(records, func(r domain.TaggedRecord) (string, bool) {
			return domain.Year(r.Date)
		}),
	}
}

func countBy(records []domain.TaggedRecord, key func(domain.TaggedRecord) (string, bool)) []domain.CountEntry {
	entries := []domain.CountEntry{}
	pos := make(map[string]int)
	for _, r := range records {
		k, ok := key(r)
		if !ok {
			continue
		}
		if i, seen := pos[k]; seen {
			entries[i].Count++
			continue
		}
		pos[k] = len(entries)
		entries = append(entries, domain.CountEntry{Key: k, Count: 1})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	return entries
}

func labelOrUnknown(s string) string {
	if s == "" {
		return domain.UnknownLabel
	}
	return s
}

// DateRange returns "YYYY-YYYY" spanning the records' years, a single year
// when they agree, or "" when no record has a year.
func DateRange(records []domain.TaggedRecord) string {
	var lo, hi string
	for _, r := range records {
		y, ok := domain.Year(r.Date)
		if !ok {
			continue
		}
		if lo == "" || y < lo {
			lo = y
		}
		if hi == "" || y > hi {
			hi = y
		}
	}
	switch {
	case lo == "":
		return ""
	case lo == hi:
		return lo
	default:
		return lo + "-" + hi
	}
}
