package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSplitStreams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log := NewWriters(Options{Level: zapcore.InfoLevel}, &stdout, &stderr)
	log.Debug("hidden")
	log.Info("hello", zap.Int("epoch", 3))
	log.Error("broken")

	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "hello")
	assert.NotContains(t, stdout.String(), "broken")
	assert.Contains(t, stderr.String(), "broken")
	assert.NotContains(t, stderr.String(), "hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(stdout.String())), &entry))
	assert.Equal(t, float64(3), entry["epoch"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T`, entry["ts"])
}

func TestLevelAboveError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log := NewWriters(Options{Level: zapcore.DPanicLevel}, &stdout, &stderr)
	log.Error("quiet")
	assert.Empty(t, stderr.String())
}

func TestAttachFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	var stdout, stderr bytes.Buffer
	base := NewWriters(Options{Level: zapcore.InfoLevel}, &stdout, &stderr)

	require.NoError(t, fs.MkdirAll("/run", 0755))
	log, f, err := AttachFile(base, fs, "/run/experiment.log", zapcore.DebugLevel)
	require.NoError(t, err)
	log.Info("both")
	require.NoError(t, f.Close())

	data, err := afero.ReadFile(fs, "/run/experiment.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), "both")
	assert.Contains(t, stdout.String(), "both")

	_, _, err = AttachFile(base, afero.NewReadOnlyFs(fs), "/run/other.log", zapcore.DebugLevel)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, l)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
