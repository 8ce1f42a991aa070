package quick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkercase/jogger"
)

func TestConfigParsing(t *testing.T) {
	cfg, err := config("directory=./testlogs", "flush_after_ms=1500", "level=warn")
	require.NoError(t, err)
	assert.Equal(t, "./testlogs", cfg.Directory)
	assert.EqualValues(t, 1500, cfg.FlushAfterMs)
	assert.Equal(t, jogger.LevelWarn, cfg.Level)
}

func TestConfigParsing_Invalid(t *testing.T) {
	_, err := config("no_equals_sign")
	assert.ErrorContains(t, err, "invalid config format")

	_, err = config("unknown_key=1")
	assert.ErrorContains(t, err, "unknown config key")

	_, err = config("flush_after_ms=soon")
	assert.ErrorContains(t, err, "invalid int64 value")

	_, err = config("level=catastrophic")
	assert.ErrorContains(t, err, "invalid level")
}

func TestParseKeyValue(t *testing.T) {
	k, v, err := parseKeyValue("  name = app ")
	require.NoError(t, err)
	assert.Equal(t, "name", k)
	assert.Equal(t, "app", v)

	_, _, err = parseKeyValue("a=b=c")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]jogger.Severity{
		"debug": jogger.LevelDebug,
		"INFO":  jogger.LevelInfo,
		"Warn":  jogger.LevelWarn,
		"error": jogger.LevelError,
	} {
		got, err := parseLevel(name)
		require.NoError(t, err)
		assert.EqualValues(t, want, got)
	}
}
