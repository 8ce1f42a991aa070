package jogger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// File extensions for active and compressed log files.
const (
	logExtension        = "log"
	compressedExtension = "clog"
)

// ensureSession opens a session file if none is active. The retention sweep
// runs exactly once, before the first file is created, so it can never delete
// the file about to be opened.
func (l *Logger) ensureSession() error {
	l.sessionMu.Lock()
	defer l.sessionMu.Unlock()
	return l.ensureSessionLocked()
}

func (l *Logger) ensureSessionLocked() error {
	if l.file != nil {
		return nil
	}

	l.sweepOnce.Do(func() {
		err := l.removeOldLogs(l.cfg.RetentionDays, l.cfg.RetentionSizeKB, "")
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			l.reportError(err)
		}
	})

	if err := os.MkdirAll(l.cfg.Directory, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, path, err := createLogFile(l.cfg.Directory, l.cfg.Name)
	if err != nil {
		return err
	}
	l.file = file
	l.filePath = path
	l.fileSize = 0
	return nil
}

// rotateLocked replaces the active file with a fresh one. The previous handle
// is always closed before the replacement takes effect. Caller holds sessionMu.
func (l *Logger) rotateLocked() error {
	newFile, newPath, err := createLogFile(l.cfg.Directory, l.cfg.Name)
	if err != nil {
		return err
	}

	if l.file != nil {
		if err := l.file.Close(); err != nil {
			newFile.Close()
			return fmt.Errorf("failed to close old log file: %w", err)
		}
	}

	l.file = newFile
	l.filePath = newPath
	l.fileSize = 0
	return nil
}

// createLogFile generates a unique file name and opens it in append mode.
func createLogFile(directory, baseName string) (*os.File, string, error) {
	filename, err := generateLogFileName(directory, baseName, time.Now())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate log filename: %w", err)
	}

	path := filepath.Join(directory, filename)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create log file: %w", err)
	}
	return file, path, nil
}

// generateLogFileName creates a unique log filename using timestamp with increasing precision.
// It ensures uniqueness by progressively adding more precise subsecond components,
// so rapid successive rotations never collide.
func generateLogFileName(directory, baseName string, timestamp time.Time) (string, error) {
	baseTimestamp := timestamp.Format("060102_150405")
	// Always include first decimal place (tenth of a second)
	tenths := (timestamp.UnixNano() % 1e9) / 1e8
	filename := fmt.Sprintf("%s_%s.%d.%s", baseName, baseTimestamp, tenths, logExtension)
	fullPath := filepath.Join(directory, filename)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return filename, nil
	}

	// If file exists, try additional precision
	for precision := 2; precision <= 9; precision++ {
		subseconds := timestamp.UnixNano() % 1e9 / pow10(9-precision)
		subsecFormat := fmt.Sprintf("%%0%dd", precision)
		filename = fmt.Sprintf("%s_%s_%s.%s",
			baseName,
			baseTimestamp,
			fmt.Sprintf(subsecFormat, subseconds),
			logExtension)

		fullPath = filepath.Join(directory, filename)
		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			return filename, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique log filename")
}

// pow10 calculates powers of 10 for subsecond precision in log filenames.
func pow10(n int) int64 {
	result := int64(1)
	for i := 0; i < n; i++ {
		result *= 10
	}
	return result
}
