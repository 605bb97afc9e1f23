package standard

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStandardLogger(t *testing.T) {
	logger := NewStandardLogger()
	if logger == nil || logger.log == nil {
		t.Fatal("NewStandardLogger returned an uninitialised logger")
	}
	assert.Equal(t, "info", logger.Level())
}

func TestStandardLogger_LogMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug")

	logger.Debug("test debug", nil)
	logger.Info("test info with fields", map[string]interface{}{"user": "john"})
	logger.Warn("test warn", map[string]interface{}{"error": "something wrong"})
	logger.Error("test error", map[string]interface{}{"code": 500})

	out := buf.String()
	assert.Contains(t, out, "level=debug msg=\"test debug\"")
	assert.Contains(t, out, "msg=\"test info with fields\" user=john")
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "error=\"something wrong\"")
	assert.Contains(t, out, "level=error msg=\"test error\" code=500")
}

func TestStandardLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	assert.Empty(t, buf.String())

	logger.SetLevel("debug")
	logger.Debug("shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "debug",
		" WARN ":  "warning",
		"error":   "error",
		"":        "info",
		"verbose": "info",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in).String(), "level %q", in)
	}
}
