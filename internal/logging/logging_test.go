package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONByDefault(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf}).Info("hello", "user_id", "u1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "u1", line["user_id"])
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf, Format: "TEXT"}).Info("hello")
	assert.True(t, strings.Contains(buf.String(), "msg=hello"))
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf, Level: "warn"}).Info("dropped")
	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARNING "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
