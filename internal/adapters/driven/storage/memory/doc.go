// Package memory provides in-memory implementations of the driven stores.
// They back service tests, and the CLI falls back to them when the SQLite
// database cannot be opened.
package memory
