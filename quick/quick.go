// Package quick exposes a package-level default logger for hosts that do not
// want to construct and thread a *jogger.Logger themselves. The default
// instance is created lazily on first use; if creation fails once, further
// calls are dropped silently.
package quick

import (
	"io"
	"sync"

	"github.com/walkercase/jogger"
)

var (
	mu     sync.Mutex
	std    *jogger.Logger
	failed bool
)

// logger returns the default instance, creating it with defaults if needed.
// Returns nil when a previous creation attempt failed.
func logger() *jogger.Logger {
	mu.Lock()
	defer mu.Unlock()

	if std != nil {
		return std
	}
	if failed {
		return nil
	}

	l, err := jogger.New()
	if err != nil {
		failed = true
		return nil
	}
	std = l
	return std
}

// Log records a payload at the given severity.
func Log(severity jogger.Severity, payload any) {
	if l := logger(); l != nil {
		l.LogDepth(severity, payload, 1)
	}
}

// Debug logs a payload at debug severity.
func Debug(payload any) {
	if l := logger(); l != nil {
		l.LogDepth(jogger.LevelDebug, payload, 1)
	}
}

// Info logs a payload at info severity.
func Info(payload any) {
	if l := logger(); l != nil {
		l.LogDepth(jogger.LevelInfo, payload, 1)
	}
}

// Warn logs a payload at warning severity.
func Warn(payload any) {
	if l := logger(); l != nil {
		l.LogDepth(jogger.LevelWarn, payload, 1)
	}
}

// Error logs a payload at error severity.
func Error(payload any) {
	if l := logger(); l != nil {
		l.LogDepth(jogger.LevelError, payload, 1)
	}
}

// Exception records an exception with a forced flush and returns it unchanged.
func Exception(err error) error {
	if l := logger(); l != nil {
		return l.LogExceptionDepth(err, 1)
	}
	return err
}

// Flush moves all buffered entries to the active targets.
func Flush() {
	if l := logger(); l != nil {
		l.Flush()
	}
}

// CompressLogs compacts the active log file into a gzip artifact.
func CompressLogs() error {
	if l := logger(); l != nil {
		return l.CompressLogs()
	}
	return nil
}

// RemoveOldLogs sweeps the log directory by age and size.
func RemoveOldLogs(maxAgeDays int, maxSizeKB int64) error {
	if l := logger(); l != nil {
		return l.RemoveOldLogs(maxAgeDays, maxSizeKB)
	}
	return nil
}

// RedirectOutput swaps the flush destination of the default logger.
func RedirectOutput(w io.Writer, suppressFileLogging bool) {
	if l := logger(); l != nil {
		l.RedirectOutput(w, suppressFileLogging)
	}
}

// ActiveLogFile returns the current session path of the default logger.
func ActiveLogFile() (string, bool) {
	if l := logger(); l != nil {
		return l.ActiveLogFile()
	}
	return "", false
}

// Shutdown flushes and closes the default logger. A later call recreates it.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	if std != nil {
		_ = std.Shutdown()
		std = nil
	}
}
