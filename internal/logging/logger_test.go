package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  LevelDebug,
		Output: &buf,
		JSON:   true,
	}

	logger := New(cfg)
	require.NotNil(t, logger)

	t.Run("Levels", func(t *testing.T) {
		for _, msg := range []string{"debug msg", "info msg", "warn msg", "error msg"} {
			buf.Reset()
			switch msg {
			case "debug msg":
				logger.Debug(msg)
			case "info msg":
				logger.Info(msg)
			case "warn msg":
				logger.Warn(msg)
			case "error msg":
				logger.Error(msg)
			}
			assert.Contains(t, buf.String(), msg)
		}
	})

	t.Run("DynamicLevel", func(t *testing.T) {
		logger.SetLevel(LevelError)
		assert.Equal(t, LevelError, logger.GetLevel())

		buf.Reset()
		logger.Info("should not appear")
		assert.Zero(t, buf.Len(), "logged info message when level was error")

		logger.SetLevel(LevelDebug)
	})

	t.Run("WithComponent", func(t *testing.T) {
		buf.Reset()
		logger.WithComponent("reconcile").Info("msg")
		assert.Contains(t, buf.String(), "reconcile")
	})

	t.Run("WithFields", func(t *testing.T) {
		buf.Reset()
		logger.WithFields(map[string]any{"zone": "clients"}).Info("msg")
		assert.Contains(t, buf.String(), "zone")
		assert.Contains(t, buf.String(), "clients")
	})

	t.Run("AuditIgnoresLevel", func(t *testing.T) {
		logger.SetLevel(LevelError)
		defer logger.SetLevel(LevelDebug)

		buf.Reset()
		logger.Audit("delete-zone", "zone:clients", map[string]any{"dry_run": false})
		assert.Contains(t, buf.String(), "AUDIT")
		assert.Contains(t, buf.String(), "zone:clients")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf})

	l.WithComponent("FirewallD").Info("probe finished", "args", "--permanent --path-zone=dmz", "rc", 0)

	line := buf.String()
	assert.Contains(t, line, "converge[")
	assert.Contains(t, line, "[info] firewalld: probe finished")
	assert.Contains(t, line, `args="--permanent --path-zone=dmz"`)
	assert.Contains(t, line, "rc=0")
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.NotContains(t, line, "component=")
}

func TestDefaultLogger(t *testing.T) {
	require.NotNil(t, Default())

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Output = &buf
	cfg.Level = LevelDebug
	original := Default()
	SetDefault(New(cfg))
	defer SetDefault(original)

	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
	WithComponent("comp").Info("comp msg")

	out := buf.String()
	assert.Contains(t, out, "comp: comp msg")
	assert.Equal(t, 5, strings.Count(out, "\n"))
}

func TestJSONLogParsing(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf, JSON: true})

	l.Info("json test", "key", "value")

	var data map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))

	assert.Equal(t, "json test", data["msg"])
	assert.Equal(t, "value", data["key"])
	assert.Equal(t, "INFO", data["level"])
}
