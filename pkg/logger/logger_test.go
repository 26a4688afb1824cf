package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewAppliesLevel(t *testing.T) {
	l, err := New(Config{Level: "warn", Encoding: "console"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestInitReplacesGlobal(t *testing.T) {
	require.NoError(t, Init(Config{Level: "debug"}))
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init(Config{Level: "error"}))
	assert.False(t, Get().Core().Enabled(zapcore.WarnLevel))
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mu.Lock()
	prev := globalLogger
	globalLogger = zap.New(core)
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		globalLogger = prev
		mu.Unlock()
	})

	ctx := context.WithValue(context.Background(), ComponentKey, "tabula-cli")
	ctx = context.WithValue(ctx, DatasetKey, "sales")
	ctx = context.WithValue(ctx, FormatKey, "parquet")
	WithContext(ctx).Info("saved dataset")
	WithContext(context.Background()).Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]interface{}{
		"component": "tabula-cli",
		"dataset":   "sales",
		"format":    "parquet",
	}, entries[0].ContextMap())
	assert.Empty(t, entries[1].ContextMap())
}
