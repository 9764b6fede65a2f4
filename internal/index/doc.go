// Package index builds and queries the word-level inverted index over record
// subject names.
//
// The index narrows candidates only. Matching is substring based, so every
// candidate is re-verified against the query expression, and a query token
// selects the postings of every indexed token that contains it. Results are
// therefore identical to a linear scan of the records.
package index
