// Package logging provides structured JSON logging for tasker.
//
// It wraps log/slog so that every entry is one JSON object per line in
// debug.log, tagged with the session id and the component that wrote it.
// Logs are meant to be read back by the "tasker logs" command, which uses
// [AggregateLogs], [FilterLogs] and [ExportLogEntries].
//
// # Basic Usage
//
//	logger, err := logging.NewLoggerWithRotation(dir, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	log := logger.WithSession(id).WithComponent("autosave")
//	log.Info("tasks saved", "count", 3, "duration_ms", 2)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"tasks saved","session_id":"...","component":"autosave","count":3,"duration_ms":2}
//
// # Log Rotation
//
// With rotation enabled debug.log is renamed to debug.log.1 once it would
// exceed MaxSizeMB; older backups shift to .2, .3 and so on. At most
// MaxBackups rotated files are kept.
//
// # Testing
//
// Use [NopLogger] to discard output, or [NewWriterLogger] with a
// bytes.Buffer to assert on what was logged.
//
// All types in this package are safe for concurrent use. Child loggers
// share the parent's writer.
package logging
