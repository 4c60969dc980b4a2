package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelInfo, &buf)

	l.Error("lookup failed", Fields{"athlete": "Kexin Liu"}, errors.New("boom"))

	var entry Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "ERROR", entry.Level)
	require.Equal(t, "lookup failed", entry.Message)
	require.Equal(t, "Kexin Liu", entry.Fields["athlete"])
	require.Equal(t, "boom", entry.Error)
	require.NotEmpty(t, entry.Timestamp)
}

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn, &buf)

	l.Debug("debug", nil)
	l.Info("info", nil)
	require.Zero(t, buf.Len())

	l.Warn("warn", nil)
	require.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":  LevelDebug,
		" WARN ": LevelWarn,
		"error":  LevelError,
		"":       LevelInfo,
		"chatty": LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestSetDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := defaultLogger
	t.Cleanup(func() { SetDefault(prev) })

	SetDefault(New(LevelDebug, &buf))
	Debug("hello", Fields{"n": 1})

	require.Contains(t, buf.String(), `"message":"hello"`)
}
