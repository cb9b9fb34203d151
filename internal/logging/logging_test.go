package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tormodhaugland/cim/internal/catalog"
)

func TestNewLevelPrecedence(t *testing.T) {
	t.Setenv(LevelEnv, "")
	logger, err := New("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	t.Setenv(LevelEnv, "error")
	logger, err = New("debug")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))

	t.Setenv(LevelEnv, "nonsense")
	logger, err = New("")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewFileCreatesDirectory(t *testing.T) {
	t.Setenv(LevelEnv, "")
	path := filepath.Join(t.TempDir(), "logs", "nested", "cim.log")

	logger, err := NewFile("info", path)
	require.NoError(t, err)
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"severity":"INFO"`)
}

func TestNotifierLogsAndForwards(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	var forwarded []string
	next := catalog.NotifierFunc(func(title, message string, severity catalog.Severity) {
		forwarded = append(forwarded, title+"|"+message+"|"+string(severity))
	})

	n := NewNotifier(zap.New(core), next)
	n.Notify("Import complete", "Imported 2 item(s).", catalog.SeveritySuccess)
	n.Notify("Load failed", "boom", catalog.SeverityError)

	assert.Equal(t, []string{
		"Import complete|Imported 2 item(s).|success",
		"Load failed|boom|error",
	}, forwarded)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["notification"])
}

func TestNotifierWithoutNext(t *testing.T) {
	n := NewNotifier(nil, nil)
	assert.NotPanics(t, func() {
		n.Notify("t", "m", catalog.SeverityInfo)
	})
}
