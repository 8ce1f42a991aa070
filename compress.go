package jogger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/multierr"
)

// CompressLogs forces a flush, then converts the active session file into a
// gzip artifact with the .clog extension, deletes the original and resets the
// session to absent; the next log call opens a fresh file. The artifact is
// validated by full decompression before the original is touched, so a failed
// compression never destroys the only copy of flushed content. Returns nil
// when no session file exists.
func (l *Logger) CompressLogs() error {
	l.Flush()

	l.sessionMu.Lock()
	defer l.sessionMu.Unlock()

	if l.file == nil {
		return nil
	}

	src := l.filePath
	dst := strings.TrimSuffix(src, "."+logExtension) + "." + compressedExtension

	srcSize, err := compressFile(src, dst)
	if err != nil {
		os.Remove(dst)
		return fmt.Errorf("failed to compress log file: %w", err)
	}
	if err := verifyCompressed(dst, srcSize); err != nil {
		os.Remove(dst)
		return fmt.Errorf("compressed artifact failed validation: %w", err)
	}

	var errs error
	if err := l.file.Close(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to close log file: %w", err))
	}
	if err := os.Remove(src); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to delete original log file: %w", err))
	}
	l.file = nil
	l.filePath = ""
	l.fileSize = 0
	return errs
}

// compressFile writes a gzip copy of src to dst and returns the number of
// source bytes consumed.
func compressFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	gz := gzip.NewWriter(out)
	n, err := io.Copy(gz, in)
	if err != nil {
		gz.Close()
		out.Close()
		return 0, err
	}
	if err := gz.Close(); err != nil {
		out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}
	return n, nil
}

// verifyCompressed decompresses the artifact end to end and checks the byte
// count against the source size.
func verifyCompressed(path string, wantSize int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	n, err := io.Copy(io.Discard, gz)
	if err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	if n != wantSize {
		return fmt.Errorf("decompressed %d bytes, expected %d", n, wantSize)
	}
	return nil
}
