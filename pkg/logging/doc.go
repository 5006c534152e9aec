// Package logging configures log/slog for cookbook binaries.
//
// Records are JSON on stderr so command output on stdout stays parseable.
// Every record carries the module and version attributes; debug loggers
// also record the source location.
//
//	logging.SetDefaultStructuredLoggerWithLevel("cookbook", version, "debug")
//	slog.Info("cookbook loaded", "recipes", cb.Len())
//
// SetDefaultStructuredLogger reads the level from LOG_LEVEL (debug, info,
// warn or error; anything else means info). NewLogLogger adapts slog for
// APIs that want a *log.Logger, such as http.Server.ErrorLog.
//
// Libraries log at debug level. The CLI and the API server log lifecycle
// events at info.
package logging
