package jogger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLogger builds a logger on a temp directory with the background
// flusher disabled and console streams captured.
func newTestLogger(t *testing.T, mod func(*Config)) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	cfg := &Config{
		Directory:       t.TempDir(),
		FlushIntervalMs: -1,
	}
	if mod != nil {
		mod(cfg)
	}

	l, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Shutdown() })

	var stdout, stderr bytes.Buffer
	l.SetConsoleWriters(&stdout, &stderr)
	return l, &stdout, &stderr
}

// readRecords decodes the newline-delimited JSON records of a log file.
func readRecords(t *testing.T, path string) []Entry {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []Entry
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var e Entry
		require.NoError(t, json.Unmarshal([]byte(line), &e), "invalid record line: %s", line)
		out = append(out, e)
	}
	return out
}

func activePath(t *testing.T, l *Logger) string {
	t.Helper()
	path, ok := l.ActiveLogFile()
	require.True(t, ok, "no active session file")
	return path
}

func TestNew_CreatesSessionFile(t *testing.T) {
	l, _, _ := newTestLogger(t, nil)

	path := activePath(t, l)
	assert.Equal(t, "."+logExtension, filepath.Ext(path))
	assert.Regexp(t, `^log_\d{6}_\d{6}`, filepath.Base(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestLogThenFlush(t *testing.T) {
	l, _, _ := newTestLogger(t, nil)

	l.Log(LevelInfo, "hello")
	l.Flush()

	records := readRecords(t, activePath(t, l))
	require.Len(t, records, 1)
	assert.Equal(t, "hello", records[0].Message)
	assert.Equal(t, "INFO", records[0].Severity)
	assert.NotZero(t, records[0].SystemTime)
	assert.Equal(t, time.Now().Format(dateLayout), records[0].Date)
	assert.NotEmpty(t, records[0].CallingClass)
	assert.NotEmpty(t, records[0].Stack)
	assert.Empty(t, records[0].Trace, "regular entries carry no chain summary")
}

func TestFlush_EmptyQueueWritesNothing(t *testing.T) {
	l, _, _ := newTestLogger(t, nil)

	l.Flush()
	l.Flush()

	info, err := os.Stat(activePath(t, l))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestFlush_PreservesAppendOrder(t *testing.T) {
	l, _, _ := newTestLogger(t, nil)

	for i := 0; i < 20; i++ {
		l.Log(LevelInfo, fmt.Sprintf("m%d", i))
	}
	l.Flush()

	records := readRecords(t, activePath(t, l))
	require.Len(t, records, 20)
	for i, r := range records {
		assert.Equal(t, fmt.Sprintf("m%d", i), r.Message)
	}
}

func TestFlush_WritesAllActiveSinks(t *testing.T) {
	l, _, _ := newTestLogger(t, nil)

	var redirect bytes.Buffer
	l.RedirectOutput(&redirect, false)

	l.Log(LevelInfo, "one")
	l.Log(LevelWarn, "two")
	l.Flush()

	records := readRecords(t, activePath(t, l))
	require.Len(t, records, 2)

	lines := strings.Split(strings.TrimSpace(redirect.String()), "\n")
	require.Len(t, lines, 2, "every entry appears exactly once on the redirect target")
	assert.Contains(t, lines[0], `"one"`)
	assert.Contains(t, lines[1], `"two"`)
}

func TestConsoleLine(t *testing.T) {
	l, stdout, stderr := newTestLogger(t, nil)

	l.Log(LevelInfo, "hello")
	assert.Regexp(t, `^\[INFO\] \[[^\]]+\] \(\d+\) hello\n$`, stdout.String())
	assert.Empty(t, stderr.String())

	stdout.Reset()
	l.Log(LevelError, "boom")
	assert.Regexp(t, `^\[ERROR\] \[[^\]]+\] \(\d+\) boom\n$`, stderr.String())
	assert.Empty(t, stdout.String(), "error severity must go to the error stream")
}

func TestConsoleWriteIsImmediate(t *testing.T) {
	l, stdout, _ := newTestLogger(t, nil)

	l.Log(LevelInfo, "queued but printed")
	assert.Contains(t, stdout.String(), "queued but printed")

	// Nothing durable yet
	info, err := os.Stat(activePath(t, l))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestStructuredPayloads(t *testing.T) {
	l, _, _ := newTestLogger(t, nil)

	l.Log(LevelInfo, map[string]int{"requests": 42})
	l.Log(LevelInfo, []byte("raw bytes"))
	l.Log(LevelInfo, errors.New("an error payload"))
	l.Flush()

	records := readRecords(t, activePath(t, l))
	require.Len(t, records, 3)
	assert.Equal(t, `{"requests":42}`, records[0].Message)
	assert.Equal(t, "raw bytes", records[1].Message)
	assert.Equal(t, "an error payload", records[2].Message)
}

func TestTimerTriggeredFlush(t *testing.T) {
	l, _, _ := newTestLogger(t, func(cfg *Config) {
		cfg.FlushAfterMs = 300
	})

	l.Log(LevelInfo, "first")
	l.Log(LevelInfo, "second")
	assert.Empty(t, readRecords(t, activePath(t, l)), "nothing durable before the threshold elapses")

	time.Sleep(350 * time.Millisecond)
	l.Log(LevelInfo, "third")

	records := readRecords(t, activePath(t, l))
	require.Len(t, records, 3, "the late call flushes everything queued")
	assert.Equal(t, "third", records[2].Message)
}

func TestBackgroundFlusher(t *testing.T) {
	l, _, _ := newTestLogger(t, func(cfg *Config) {
		cfg.FlushAfterMs = 60000 // keep the caller-driven path out of the way
		cfg.FlushIntervalMs = 50
	})

	path := activePath(t, l)
	l.Log(LevelInfo, "ticked out")
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && bytes.Contains(data, []byte("ticked out"))
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRedirectSuppressesFileWrites(t *testing.T) {
	l, _, _ := newTestLogger(t, nil)
	path := activePath(t, l)

	var stream bytes.Buffer
	l.RedirectOutput(&stream, true)

	l.Log(LevelWarn, "x")
	l.Flush()

	assert.Contains(t, stream.String(), `"x"`)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size(), "no file write while suppressed, even with an open session")

	// Detaching resumes file logging
	l.RedirectOutput(nil, false)
	l.Log(LevelWarn, "y")
	l.Flush()
	records := readRecords(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, "y", records[0].Message)
}

func TestLogException(t *testing.T) {
	l, _, stderr := newTestLogger(t, nil)

	cause := errors.New("boom")
	got := l.LogException(cause)
	assert.Same(t, cause, got, "the exception comes back unchanged")
	assert.Zero(t, l.queue.len(), "forced flush empties the queue before returning")

	records := readRecords(t, activePath(t, l))
	require.Len(t, records, 1)
	assert.Equal(t, "boom", records[0].Message)
	assert.Equal(t, "ERROR", records[0].Severity)
	assert.NotEmpty(t, records[0].CallingClass)
	assert.NotEmpty(t, records[0].Stack)
	assert.NotEmpty(t, records[0].Trace, "exception entries carry the deduplicated chain summary")

	assert.Contains(t, stderr.String(), "Found Error: boom")
	assert.Contains(t, stderr.String(), records[0].Trace)
}

func TestLogException_Nil(t *testing.T) {
	l, _, stderr := newTestLogger(t, nil)

	assert.NoError(t, l.LogException(nil))
	assert.Empty(t, stderr.String())
	assert.Zero(t, l.queue.len())
}

func TestConcurrentLogging(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 50

	l, _, _ := newTestLogger(t, nil)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				l.Log(LevelInfo, fmt.Sprintf("g%d-%d", id, i))
			}
		}(g)
	}
	wg.Wait()
	l.Flush()

	records := readRecords(t, activePath(t, l))
	require.Len(t, records, goroutines*perGoroutine)

	seen := make(map[string]int, len(records))
	for _, r := range records {
		seen[r.Message]++
	}
	require.Len(t, seen, goroutines*perGoroutine)
	for msg, n := range seen {
		assert.Equal(t, 1, n, "duplicated entry %s", msg)
	}
	assert.Zero(t, l.DroppedEntries())
}

func TestOverflowDropsAndReports(t *testing.T) {
	l, _, _ := newTestLogger(t, func(cfg *Config) {
		cfg.QueueSize = 2
	})

	for i := 0; i < 5; i++ {
		l.Log(LevelInfo, fmt.Sprintf("m%d", i))
	}
	assert.EqualValues(t, 3, l.DroppedEntries())
	l.Flush()

	l.Log(LevelInfo, "after")
	l.Flush()

	records := readRecords(t, activePath(t, l))
	var dropReport bool
	for _, r := range records {
		if strings.Contains(r.Message, "log entries (total 3)") {
			dropReport = true
		}
	}
	assert.True(t, dropReport, "lost entries must be reported on the next append")
}

func TestMinimumLevel(t *testing.T) {
	l, stdout, _ := newTestLogger(t, func(cfg *Config) {
		cfg.Level = LevelWarn
	})

	l.Debug("too low")
	l.Info("too low as well")
	l.Warn("passes")
	l.Flush()

	records := readRecords(t, activePath(t, l))
	require.Len(t, records, 1)
	assert.Equal(t, "passes", records[0].Message)
	assert.NotContains(t, stdout.String(), "too low")
}

func TestShutdown(t *testing.T) {
	l, _, _ := newTestLogger(t, nil)
	path := activePath(t, l)

	l.Log(LevelInfo, "last words")
	require.NoError(t, l.Shutdown())

	records := readRecords(t, path)
	require.Len(t, records, 1, "shutdown flushes pending entries")

	_, ok := l.ActiveLogFile()
	assert.False(t, ok)

	require.NoError(t, l.Shutdown(), "second shutdown is a no-op")

	l.Log(LevelInfo, "into the void")
	assert.EqualValues(t, 1, l.DroppedEntries())
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(&Config{Directory: t.TempDir(), OverflowPolicy: "bounce"})
	assert.ErrorContains(t, err, "invalid overflow policy")
}
