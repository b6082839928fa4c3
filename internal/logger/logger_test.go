package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_TextLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLogger(&Config{Level: WarnLevel, Output: &buf})

	l.Info("hidden")
	l.Warn("shown", "field", "POP2020")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "field=POP2020")
}

func TestNewLogger_JSONWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLogger(&Config{Level: DebugLevel, Output: &buf, JSON: true}).With("run", "abc")
	l.Debug("creating", "field", "X_norm")

	line := strings.TrimSpace(buf.String())
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &m))
	assert.Equal(t, "creating", m["msg"])
	assert.Equal(t, "abc", m["run"])
	assert.Equal(t, "X_norm", m["field"])
}

func TestLogLevel_UnknownDefaultsToInfo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewLogger(&Config{Level: "verbose", Output: &buf})
	l.Debug("debug-msg")
	l.Info("info-msg")
	assert.NotContains(t, buf.String(), "debug-msg")
	assert.Contains(t, buf.String(), "info-msg")
}

func TestSetupLogger_ReplacesDefault(t *testing.T) {
	var buf bytes.Buffer
	l := SetupLogger("warn", true, &buf)
	t.Cleanup(func() { Init(nil) })

	assert.Same(t, l, Default())
	l.Info("hidden")
	Default().Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &m))
	assert.Equal(t, "shown", m["msg"])
}
