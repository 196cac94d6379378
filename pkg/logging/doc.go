// Package logging provides a structured logging system for convoy with unified
// log handling and level filtering.
//
// This package is built on Go's standard slog package and tags every entry
// with a subsystem identifier so related log lines can be filtered together.
//
// # Usage
//
//	import "convoy/pkg/logging"
//
//	// Initialize once at startup; CLI commands log to stderr.
//	logging.InitForCLI(logging.LevelInfo, false)
//
//	// Log messages
//	logging.Info("Coordinator", "Starting release %s", releaseID)
//	logging.Debug("Config", "Loaded configuration from %s", configPath)
//	logging.Warn("Registry", "Retrying after truncated read")
//	logging.Error("Executor", err, "Deploy failed for %s", service)
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Coordinator**: release orchestration and batch execution
//   - **Graph**: dependency graph construction and planning
//   - **Registry**: release record persistence
//   - **Executor**: deployment and rollback command execution
//   - **Notes**: release notes generation
//   - **Config**: configuration and manifest loading
//   - **MCPServer**: MCP tool surface
//
// When serving MCP over stdio, pass silent=true to InitForCLI so protocol
// traffic on stdout is never mixed with log output.
package logging
