package jogger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RemoveOldLogs deletes every file in the log directory older than maxAgeDays
// days or larger than maxSizeKB kibibytes. The sweep is non-recursive and
// never touches the active session file. A listing failure is returned;
// individual delete failures are reported through the error handler and the
// sweep continues.
//
// maxAgeDays of zero deletes any file with nonzero age, including files
// created moments ago. This matches the threshold comparison, not a bug.
func (l *Logger) RemoveOldLogs(maxAgeDays int, maxSizeKB int64) error {
	l.sessionMu.Lock()
	active := l.filePath
	l.sessionMu.Unlock()
	return l.removeOldLogs(int64(maxAgeDays), maxSizeKB, active)
}

func (l *Logger) removeOldLogs(maxAgeDays, maxSizeKB int64, skipPath string) error {
	entries, err := os.ReadDir(l.cfg.Directory)
	if err != nil {
		return fmt.Errorf("failed to list log directory: %w", err)
	}

	now := time.Now()
	maxAge := time.Duration(maxAgeDays) * 24 * time.Hour

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(l.cfg.Directory, entry.Name())
		if skipPath != "" && path == skipPath {
			continue
		}

		tooOld := now.Sub(info.ModTime()) > maxAge
		tooBig := info.Size() > maxSizeKB*1024
		if tooOld || tooBig {
			if err := os.Remove(path); err != nil {
				l.reportError(fmt.Errorf("failed to delete old log file %s: %w", entry.Name(), err))
			}
		}
	}
	return nil
}
