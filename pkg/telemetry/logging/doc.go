// Package logging configures the process-wide slog logger and carries
// request-scoped fields through context.
package logging
