// Package driving declares the operations the CLI, the HTTP API, the MCP
// server and the TUI call. internal/core/services implements them.
package driving
