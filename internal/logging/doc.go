// Package logging builds the slog loggers used by the launcher.
//
// New returns either the console handler, which prints a one-line header
// followed by indented fields, or a JSON handler. NewFromConfig adds the
// per-run log file. The standard field keys (component, app, stage,
// event_type, error_hint, impact) live in fields.go, and WarnWithContext
// makes sure every warning names a cause, an impact, and a next step.
// CleanupOldLogs prunes run logs older than the configured retention.
package logging
