package networking

// Logger defines the interface for client logging.
// The client uses structured logging with key-value pairs, so any of the
// popular structured loggers (slog, zap, logrus) can back it; see the
// logging package for ready-made adapters.
//
// The Logger interface uses variadic arguments in key-value pairs:
//
//	logger.Info("message", "key1", "value1", "key2", "value2")
type Logger interface {
	// Info logs an informational message with optional key-value pairs.
	Info(msg string, args ...any)

	// Error logs an error message with optional key-value pairs.
	Error(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs.
	// Failed calls are reported at this level.
	Warn(msg string, args ...any)

	// Debug logs a debug message with optional key-value pairs.
	// Every pipeline stage of a call is reported at this level.
	Debug(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger { return nopLogger{} }
