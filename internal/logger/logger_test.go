package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testLogConfig struct {
	level, output, file string
}

func (c testLogConfig) GetLevel() string  { return c.level }
func (c testLogConfig) GetOutput() string { return c.output }
func (c testLogConfig) GetFile() string   { return c.file }

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLogLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLogLevel("warning"))
	assert.Equal(t, ERROR, ParseLogLevel("error"))
	assert.Equal(t, INFO, ParseLogLevel("nonsense"))
}

func TestPrintfStyleMessages(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := defaultLogger
	SetDefaultLogger(NewWithCore(core))
	t.Cleanup(func() { defaultLogger = prev })

	Debug("hidden %d", 1)
	Info("settled cycle %d", 7)
	Warn("period fallback: %s", "timeout")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "settled cycle 7", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "period fallback: timeout", entries[1].Message)
}

func TestInitWithFileOutput(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { defaultLogger = prev })

	file := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init(testLogConfig{level: "debug", output: "file", file: file}))
	Info("written to %s", "file")
	Sync()
	assert.FileExists(t, file)
}
