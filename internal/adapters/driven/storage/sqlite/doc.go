// Package sqlite implements the persistent driven stores on a single SQLite
// database using modernc.org/sqlite (pure Go, no CGO):
//
//   - SchedulerStore: scheduled task state and execution history
//   - BuildRunStore: index build history shown by `telemachus status`
//   - ResultCache: live search results keyed by request hash, with expiry
//
// # Schema
//
// Versioned migrations live in migrations/ as NNN_name.up.sql and .down.sql
// pairs. Each applied version is recorded in schema_migrations.
//
// # Data Location
//
// By default the database is ~/.telemachus/data/telemachus.db.
package sqlite
