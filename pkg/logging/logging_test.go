package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuild_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := build("info", "json", &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("explained", zap.Int("chunks", 3))
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "explained", entry["msg"])
	assert.Equal(t, float64(3), entry["chunks"])
}

func TestBuild_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := build("debug", "console", &buf)
	require.NoError(t, err)

	logger.Debug("chunk skipped", zap.String("code", "TIMEOUT"))
	require.NoError(t, logger.Sync())
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "chunk skipped")
}

func TestBuild_Invalid(t *testing.T) {
	_, err := build("loud", "json", &bytes.Buffer{})
	assert.Error(t, err)

	_, err = build("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	logger, err := New("warn", "")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
