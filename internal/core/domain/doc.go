// Package domain defines the core business entities for Telemachus.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - NormalizedRecord: One disclosure event from a public register
//   - RawDocumentRef: A discovered, not yet downloaded, tabular document
//   - IndexSnapshot: One immutable build of records and their inverted index
//   - QueryResult: Matched records, per-term provenance and aggregates
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
