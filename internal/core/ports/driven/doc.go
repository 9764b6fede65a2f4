// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SourceAdapter: Discovers, fetches and live-searches one register
//   - RowNormaliser: Maps a raw tabular row onto a NormalizedRecord
//   - NormaliserRegistry: Selects the normaliser for a jurisdiction
//   - RecordProcessor: One stage of the record pipeline (dedupe, sorting)
//   - SnapshotStore: Local index snapshot persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SnapshotSource: Remote snapshot location. Without it only the local file is tried.
//   - SnapshotPublisher: Uploads snapshots. Without it publishing is unsupported.
//   - DocumentCache: On-disk cache of downloaded documents. Without it every fetch hits upstream.
//   - ResultCache: Live search result cache. Without it live searches are never reused.
//   - BuildRunStore: Build history. Without it runs are only logged.
//   - SchedulerStore: Scheduler state. Without it the scheduler keeps state in memory.
//   - ChangeWatcher: Signals new manually imported files.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
