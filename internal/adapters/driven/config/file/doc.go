// Package file provides the TOML configuration store.
//
// The store lives at ~/.telemachus/config.toml unless a directory is given.
// Keys use dot notation and map to nested TOML tables.
package file
