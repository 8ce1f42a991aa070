package jogger

import (
	"fmt"
	"time"
)

// log builds an Entry for the payload, writes the console line, queues the
// entry and runs the best-effort flush-timer check. wrappers is the number of
// exported call frames between the host caller and this function.
func (l *Logger) log(severity Severity, payload any, wrappers int) {
	if l.closed.Load() {
		l.droppedLogs.Add(1)
		return
	}
	if severity < l.cfg.Level {
		return
	}

	now := time.Now()
	msg := stringifyPayload(payload)
	res := l.callSiteResolver()
	caller := res.Caller(wrappers + 1)
	chain := res.CallChain(wrappers + 1)

	// Console output is synchronous and independent of buffering
	l.writeConsole(severity, fmt.Sprintf("[%s] [%s] (%d) %s",
		levelToString(severity), caller.Function, now.UnixMilli(), msg))

	if err := l.ensureSession(); err != nil {
		l.reportError(fmt.Errorf("failed to create log file: %w", err))
	}

	l.reportDrops()

	entry := Entry{
		Message:      msg,
		Severity:     levelToString(severity),
		Date:         now.Format(dateLayout),
		SystemTime:   now.UnixMilli(),
		CallingClass: caller.Function,
		Stack:        chain,
	}
	if dropped := l.queue.append(entry); dropped > 0 {
		l.droppedLogs.Add(dropped)
	}

	// Best-effort check, racing callers may flush near-simultaneously or a
	// flush may land slightly past the threshold
	if now.UnixMilli()-l.lastFlush.Load() >= l.cfg.FlushAfterMs {
		l.Flush()
	}
}

// LogException records an exception-like value at error severity and forces
// an immediate flush, bypassing the flush timer, so the error entry is
// durably attempted before this call returns. A multi-line diagnostic with
// the deduplicated call chain goes to the error stream in addition to the raw
// error. Returns err unchanged so the caller can still propagate it; nil in,
// nil out.
func (l *Logger) LogException(err error) error {
	return l.logException(err, 1)
}

// LogExceptionDepth is LogException with additional caller frames skipped,
// for wrapping layers.
func (l *Logger) LogExceptionDepth(err error, skip int) error {
	return l.logException(err, skip+1)
}

func (l *Logger) logException(err error, wrappers int) error {
	if err == nil {
		return nil
	}
	if l.closed.Load() {
		l.droppedLogs.Add(1)
		return err
	}

	now := time.Now()
	msg := err.Error()
	if msg == "" {
		msg = "null"
	}
	res := l.callSiteResolver()
	caller := res.Caller(wrappers + 1)
	chain := res.CallChain(wrappers + 1)
	summary := dedupeChain(chain)

	l.consoleMu.Lock()
	fmt.Fprintf(l.stderr, "[%s] [%s] [%d] Found Error: %s\n%s\n",
		levelToString(LevelError), caller.Function, now.UnixMilli(), msg, summary)
	fmt.Fprintf(l.stderr, "%+v\n", err)
	l.consoleMu.Unlock()

	if serr := l.ensureSession(); serr != nil {
		l.reportError(fmt.Errorf("failed to create log file: %w", serr))
	}

	l.reportDrops()

	entry := Entry{
		Message:      msg,
		Severity:     levelToString(LevelError),
		Date:         now.Format(dateLayout),
		SystemTime:   now.UnixMilli(),
		CallingClass: caller.Function,
		Stack:        chain,
		Trace:        summary,
	}
	if dropped := l.queue.append(entry); dropped > 0 {
		l.droppedLogs.Add(dropped)
	}

	l.Flush()
	return err
}

// reportDrops queues a synthesized error entry when entries have been lost
// since the last report.
func (l *Logger) reportDrops() {
	drops := l.droppedLogs.Load()
	logged := l.loggedDrops.Load()
	if drops <= logged {
		return
	}
	// Update the reported counter first to avoid duplicate reports from
	// racing callers
	l.loggedDrops.Store(drops)

	now := time.Now()
	l.queue.append(Entry{
		Message:    fmt.Sprintf("dropped %d log entries (total %d)", drops-logged, drops),
		Severity:   levelToString(LevelError),
		Date:       now.Format(dateLayout),
		SystemTime: now.UnixMilli(),
	})
}

func (l *Logger) writeConsole(severity Severity, line string) {
	l.consoleMu.Lock()
	defer l.consoleMu.Unlock()
	if severity >= LevelError {
		fmt.Fprintln(l.stderr, line)
	} else {
		fmt.Fprintln(l.stdout, line)
	}
}
