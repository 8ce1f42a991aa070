package jogger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
)

// resolverBox and encoderBox wrap interface values for atomic.Value storage,
// which requires a consistent concrete type.
type resolverBox struct{ r CallSiteResolver }
type encoderBox struct{ e Encoder }
type handlerBox struct{ fn func(error) }

// Logger owns the pending-entry queue, the active file session, the flush
// timestamp and the redirect target. Hosts construct and hold an instance;
// multiple isolated instances can coexist.
type Logger struct {
	cfg   *Config
	queue *entryQueue

	resolver     atomic.Value // stores resolverBox
	encoder      atomic.Value // stores encoderBox
	errorHandler atomic.Value // stores handlerBox

	consoleMu sync.Mutex
	stdout    io.Writer
	stderr    io.Writer

	sessionMu sync.Mutex
	file      *os.File
	filePath  string
	fileSize  int64
	sweepOnce sync.Once

	flushMu   sync.Mutex
	lastFlush atomic.Int64 // epoch millis

	redirectMu   sync.Mutex
	redirect     io.Writer
	suppressFile bool

	droppedLogs atomic.Uint64
	loggedDrops atomic.Uint64

	done   chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
}

// New creates a logger with the provided configuration, running the retention
// sweep and opening the initial session file before returning. With no
// configuration, defaults are used.
func New(cfg ...*Config) (*Logger, error) {
	var userCfg *Config
	if len(cfg) > 0 {
		userCfg = cfg[0]
	}
	merged := mergeConfig(userCfg)
	if err := merged.validate(); err != nil {
		return nil, err
	}

	capacity := int(merged.QueueSize)
	if merged.QueueSize < 0 {
		capacity = 0
	}

	l := &Logger{
		cfg:    merged,
		queue:  newEntryQueue(capacity, merged.OverflowPolicy),
		stdout: os.Stdout,
		stderr: os.Stderr,
		done:   make(chan struct{}),
	}
	l.resolver.Store(resolverBox{NewRuntimeResolver()})
	l.encoder.Store(encoderBox{jsonEncoder{}})
	l.errorHandler.Store(handlerBox{l.defaultErrorHandler})
	l.lastFlush.Store(time.Now().UnixMilli())

	if err := l.ensureSession(); err != nil {
		return nil, fmt.Errorf("failed to create initial log file: %w", err)
	}

	if merged.FlushIntervalMs > 0 {
		l.wg.Add(1)
		go l.run(time.Duration(merged.FlushIntervalMs) * time.Millisecond)
	}
	return l, nil
}

// Log formats and records the given payload at the given severity. The
// payload may be text, bytes, or any structured value, stringified first.
func (l *Logger) Log(severity Severity, payload any) {
	l.log(severity, payload, 1)
}

// LogDepth is Log with additional caller frames skipped, for wrapping layers.
func (l *Logger) LogDepth(severity Severity, payload any, skip int) {
	l.log(severity, payload, skip+1)
}

// Debug logs a payload at debug severity.
func (l *Logger) Debug(payload any) {
	l.log(LevelDebug, payload, 1)
}

// Info logs a payload at info severity.
func (l *Logger) Info(payload any) {
	l.log(LevelInfo, payload, 1)
}

// Warn logs a payload at warning severity.
func (l *Logger) Warn(payload any) {
	l.log(LevelWarn, payload, 1)
}

// Error logs a payload at error severity.
func (l *Logger) Error(payload any) {
	l.log(LevelError, payload, 1)
}

// RedirectOutput swaps in an alternate flush destination and toggles file
// suppression. The target persists until replaced; a nil writer detaches it.
// Replacement excludes flush writes in progress.
func (l *Logger) RedirectOutput(w io.Writer, suppressFileLogging bool) {
	l.redirectMu.Lock()
	l.redirect = w
	l.suppressFile = suppressFileLogging
	l.redirectMu.Unlock()
}

// ActiveLogFile returns the path of the current session file, or false when
// no session is open.
func (l *Logger) ActiveLogFile() (string, bool) {
	l.sessionMu.Lock()
	defer l.sessionMu.Unlock()
	return l.filePath, l.filePath != ""
}

// SetCallSiteResolver replaces the capability resolving caller identity.
// A nil resolver restores the runtime-based default.
func (l *Logger) SetCallSiteResolver(r CallSiteResolver) {
	if r == nil {
		r = NewRuntimeResolver()
	}
	l.resolver.Store(resolverBox{r})
}

// SetEncoder replaces the record serialization capability.
// A nil encoder restores the JSON default.
func (l *Logger) SetEncoder(e Encoder) {
	if e == nil {
		e = jsonEncoder{}
	}
	l.encoder.Store(encoderBox{e})
}

// SetErrorHandler replaces the channel through which the logger reports its
// own durability failures. A nil handler restores the default, a diagnostic
// line on the error stream.
func (l *Logger) SetErrorHandler(fn func(error)) {
	if fn == nil {
		fn = l.defaultErrorHandler
	}
	l.errorHandler.Store(handlerBox{fn})
}

// SetConsoleWriters replaces the console-style standard and error streams.
// Intended for embedding and tests; defaults are os.Stdout and os.Stderr.
func (l *Logger) SetConsoleWriters(stdout, stderr io.Writer) {
	l.consoleMu.Lock()
	if stdout != nil {
		l.stdout = stdout
	}
	if stderr != nil {
		l.stderr = stderr
	}
	l.consoleMu.Unlock()
}

// Shutdown stops the background flusher, flushes pending entries and closes
// the session file. It respects context cancellation for timeout control.
// Log calls after shutdown are dropped.
func (l *Logger) Shutdown(ctx ...context.Context) error {
	shutdownCtx := context.Background()
	if len(ctx) > 0 {
		shutdownCtx = ctx[0]
	}

	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(l.done)
	l.wg.Wait()

	if err := shutdownCtx.Err(); err != nil {
		return err
	}

	l.Flush()

	l.sessionMu.Lock()
	defer l.sessionMu.Unlock()

	var errs error
	if l.file != nil {
		if err := l.file.Sync(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to sync log file: %w", err))
		}
		if err := l.file.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to close log file: %w", err))
		}
		l.file = nil
		l.filePath = ""
		l.fileSize = 0
	}
	return errs
}

// DroppedEntries reports the number of entries lost to the overflow policy
// or to post-shutdown log calls.
func (l *Logger) DroppedEntries() uint64 {
	return l.droppedLogs.Load()
}

func (l *Logger) callSiteResolver() CallSiteResolver {
	return l.resolver.Load().(resolverBox).r
}

func (l *Logger) recordEncoder() Encoder {
	return l.encoder.Load().(encoderBox).e
}

// reportError routes an internal failure to the host without ever raising.
func (l *Logger) reportError(err error) {
	if err == nil {
		return
	}
	l.errorHandler.Load().(handlerBox).fn(err)
}

func (l *Logger) defaultErrorHandler(err error) {
	l.consoleMu.Lock()
	fmt.Fprintf(l.stderr, "jogger: %v\n", err)
	l.consoleMu.Unlock()
}
