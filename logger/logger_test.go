package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "debug", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	l.With(String("component", "test")).Debug("hello", Int("n", 1))
}

func TestCronLoggerForwardsKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cl := CronLogger(FromZap(zap.New(core)))

	cl.Info("schedule", "entry", 3, "dangling")
	cl.Error(errors.New("boom"), "job failed", "entry", 3)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "schedule", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()["entry"])
	assert.Contains(t, entries[0].ContextMap(), "dangling")
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
