// Package logger provides structured logging for wirehttp.
//
// This package wraps log/slog behind a small Logger interface:
//
//   - logger.go: logger construction, level control, package-level helpers
//   - context.go: context propagation of the logger, connection and request IDs
//   - redact.go: masking of credential-bearing attributes and header values
//
// Features:
//
//   - JSON (default) and text output formats
//   - Runtime level changes through a shared slog.LevelVar
//   - Automatic redaction of Authorization, Cookie and similar values
package logger
