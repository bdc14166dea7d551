// Package ui provides helpers for formatting human-readable console output.
//
// ConsoleCommandEventLogger turns shell command lifecycle events into short
// messages for CLI users while structured telemetry keeps flowing through the
// executor's own logger.
package ui
