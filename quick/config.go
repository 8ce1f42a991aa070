package quick

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/walkercase/jogger"
)

// Configure replaces the default logger with one built from "key=value"
// statements matching jogger.Config field tags, e.g.
// quick.Configure("directory=./logs", "flush_after_ms=1000").
// Any existing default instance is shut down first.
func Configure(args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("no config provided")
	}

	cfg, err := config(args...)
	if err != nil {
		return err
	}

	l, err := jogger.New(cfg)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if std != nil {
		_ = std.Shutdown()
	}
	std = l
	failed = false
	return nil
}

// config parses configuration strings into a jogger.Config.
// Each argument should be in "key=value" format where key matches Config toml tags.
func config(args ...string) (*jogger.Config, error) {
	cfg := &jogger.Config{}
	for _, arg := range args {
		key, value, err := parseKeyValue(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid config format: %s", arg)
		}

		if err := setValue(cfg, key, value); err != nil {
			return nil, fmt.Errorf("config error: %s", err)
		}
	}
	return cfg, nil
}

// parseKeyValue splits a configuration string into key and value parts.
// Input format must be "key=value". Leading and trailing spaces are removed.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(arg), "=")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid format")
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// setValue updates a Config field using reflection. Field matching is
// case-insensitive against the toml tags. Special handling is provided for
// the "level" field to accept severity names.
func setValue(cfg *jogger.Config, key, value string) error {
	key = strings.ToLower(key)

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if tag := field.Tag.Get("toml"); tag == key {
			f := v.Field(i)
			if !f.IsValid() {
				return fmt.Errorf("unknown config key: %s", key)
			}

			switch f.Kind() {
			case reflect.Int64:
				if key == "level" {
					level, err := parseLevel(value)
					if err != nil {
						return err
					}
					f.SetInt(level)
				} else {
					val, err := strconv.ParseInt(value, 10, 64)
					if err != nil {
						return fmt.Errorf("invalid int64 value for %s: %s", key, value)
					}
					f.SetInt(val)
				}

			case reflect.String:
				f.SetString(value)

			default:
				return fmt.Errorf("unsupported config type for %s", key)
			}

			return nil
		}
	}
	return fmt.Errorf("unknown config key: %s", key)
}

// parseLevel converts a severity name to its numeric constant.
func parseLevel(level string) (int64, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int64(jogger.LevelDebug), nil
	case "info":
		return int64(jogger.LevelInfo), nil
	case "warn":
		return int64(jogger.LevelWarn), nil
	case "error":
		return int64(jogger.LevelError), nil
	default:
		return 0, fmt.Errorf("invalid level: %s", level)
	}
}
