// Package logging builds slog loggers for the daemon and CLI.
//
// It maps config values to handler construction (console text or JSON),
// fans output out to stdout and an optional log file, and provides the
// attribute helpers the rest of the codebase uses so call sites stay terse.
package logging
