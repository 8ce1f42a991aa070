package jogger

import (
	"encoding/json"
	"fmt"
)

// Severity constants match slog levels for consistency with applications that use it.
// These values are used to determine which logs to write based on minimum level configuration.
const (
	LevelDebug Severity = -4 // matches slog.LevelDebug
	LevelInfo  Severity = 0  // matches slog.LevelInfo
	LevelWarn  Severity = 4  // matches slog.LevelWarn
	LevelError Severity = 8  // matches slog.LevelError
)

// Severity classifies a log entry. ERROR entries go to the error console
// stream, everything else to the standard stream.
type Severity int64

// dateLayout is the calendar date label recorded on every entry, day granularity.
const dateLayout = "01_02_2006"

// Entry is a single immutable log record. One schema covers both the regular
// and the exception path; fields not set by a path are omitted from the
// serialized form. Content is fixed at construction, only the rendered
// representation differs between console and file.
type Entry struct {
	Message      string  `json:"message"`
	Severity     string  `json:"severity"`
	Date         string  `json:"date"`
	SystemTime   int64   `json:"systemtime"`
	CallingClass string  `json:"callingClass,omitempty"`
	Stack        []Frame `json:"stack,omitempty"`
	Trace        string  `json:"trace,omitempty"` // deduplicated chain summary, exception entries only
}

// Encoder converts an Entry to its durable serialized form. The logger treats
// the format as opaque; one encoded record is written per line.
type Encoder interface {
	Marshal(e Entry) ([]byte, error)
}

// jsonEncoder is the default Encoder, producing one compact JSON object per entry.
type jsonEncoder struct{}

func (jsonEncoder) Marshal(e Entry) ([]byte, error) {
	return json.Marshal(e)
}

// levelToString converts the numeric severity to the string written in records.
func levelToString(level Severity) string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN (%d)", int64(level))
	}
}

// stringifyPayload converts any payload to the message text stored on an
// entry. Structured values are serialized before use so the entry only ever
// carries text.
func stringifyPayload(payload any) string {
	switch m := payload.(type) {
	case string:
		return m
	case []byte:
		return string(m)
	case json.RawMessage:
		return string(m)
	case error:
		return m.Error()
	case fmt.Stringer:
		return m.String()
	default:
		if data, err := json.Marshal(m); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%+v", m)
	}
}
