package jogger

import (
	"fmt"
	"time"
)

// Flush drains the queue and writes each entry as one serialized line to
// every active target: the session file unless file logging is suppressed,
// and the redirect target if attached. A failed entry write is reported and
// skipped; the remaining entries are still written. Flush never propagates an
// I/O failure and performs zero writes on an empty queue.
func (l *Logger) Flush() {
	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	batch := l.queue.drainAll()
	if len(batch) == 0 {
		return
	}

	enc := l.recordEncoder()

	// The redirect target must not be replaced mid-write
	l.redirectMu.Lock()
	defer l.redirectMu.Unlock()

	toFile := !l.suppressFile
	if toFile {
		if err := l.ensureSession(); err != nil {
			l.reportError(fmt.Errorf("failed to create log file: %w", err))
			toFile = false
		}
	}

	l.sessionMu.Lock()
	defer l.sessionMu.Unlock()

	for _, e := range batch {
		data, err := enc.Marshal(e)
		if err != nil {
			l.reportError(fmt.Errorf("failed to encode log entry: %w", err))
			continue
		}
		data = append(data, '\n')

		if toFile && l.file != nil {
			if l.cfg.MaxSizeKB > 0 && l.fileSize+int64(len(data)) > l.cfg.MaxSizeKB*1024 {
				if err := l.rotateLocked(); err != nil {
					l.reportError(fmt.Errorf("failed to rotate log file: %w", err))
				}
			}
			if n, err := l.file.Write(data); err != nil {
				l.reportError(fmt.Errorf("failed to write log entry: %w", err))
			} else {
				l.fileSize += int64(n)
			}
		}

		if l.redirect != nil {
			if _, err := l.redirect.Write(data); err != nil {
				l.reportError(fmt.Errorf("failed to write to redirect target: %w", err))
			}
		}
	}

	l.lastFlush.Store(time.Now().UnixMilli())
}

// run is the background flusher loop, decoupling flush cadence from call
// volume. It also syncs the session file so buffered OS writes survive a
// crash between flushes.
func (l *Logger) run(interval time.Duration) {
	defer l.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Flush()
			l.syncSession()
		case <-l.done:
			return
		}
	}
}

func (l *Logger) syncSession() {
	l.sessionMu.Lock()
	defer l.sessionMu.Unlock()
	if l.file != nil {
		if err := l.file.Sync(); err != nil {
			l.reportError(fmt.Errorf("failed to sync log file: %w", err))
		}
	}
}
