// Package logger configures the process-wide slog logger (JSON or tinted
// console output, leveled) and carries request-scoped loggers through
// context.Context.
package logger
