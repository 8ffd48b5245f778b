package tlog

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Level(tc.in), tc.in)
	}
}

func TestLevelEnvFallback(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	assert.Equal(t, slog.LevelDebug, Level(""))
	assert.Equal(t, slog.LevelError, Level("error"), "flag value wins over env")
}

func TestNew(t *testing.T) {
	logger := New("warn", false)

	ctx := context.Background()
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
}
