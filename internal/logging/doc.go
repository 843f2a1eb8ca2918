// Package logging constructs the application slog.Logger and provides the
// attribute helpers used throughout bello. Two output formats are supported:
// a compact console format for interactive use and JSON for log files and
// machine consumption.
package logging
