// Package lobbyingie implements the source adapter for the Irish register
// of lobbying.
//
// lobbying.ie has no public API. Returns are exported by hand from the
// register's search page as CSV files and dropped into an import directory,
// which this adapter lists for discovery and scans for live searches. A
// Watcher reports new or changed exports so a rebuild can be scheduled.
package lobbyingie
