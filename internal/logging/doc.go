// Package logging builds slog loggers from application configuration and
// provides the shared attribute helpers used by every component.
package logging
