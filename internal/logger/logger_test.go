package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" warn ", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Format: "json"}, &buf)

	log.Info("dropped")
	log.Warn("kept", "user_id", "u1")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "u1", rec["user_id"])
}

func TestInitWithConfig_File(t *testing.T) {
	prev := GetLogger()
	t.Cleanup(func() {
		globalLogger = prev
		slog.SetDefault(prev)
	})

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	require.NoError(t, InitWithConfig(Config{Level: LevelDebug, OutputPath: path, Format: "text"}))

	Infof("entry %d saved", 42)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "entry 42 saved")
}
