// Package mcp provides an MCP (Model Context Protocol) server adapter for Telemachus.
// It lets AI assistants resolve lobbying queries and inspect the loaded index.
package mcp

import "errors"

// ErrMissingResolver is returned when the query resolver is not provided.
var ErrMissingResolver = errors.New("mcp: query resolver is required")
