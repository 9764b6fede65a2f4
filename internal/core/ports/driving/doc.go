// Package driving defines the ports that the CLI and the MCP server call
// into: query resolution, index building and loading, the adapter
// registry, settings and the scheduler.
//
// Implementations live in internal/core/services.
package driving
