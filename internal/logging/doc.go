// Package logging constructs the slog loggers used across btroute and holds
// the shared attribute helpers and standardized field names.
//
// Console output favors a compact human-readable line per record; JSON output
// is stable and machine-parseable. Components obtain a tagged child logger via
// NewComponentLogger so every record carries its origin.
package logging
