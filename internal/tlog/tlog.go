/*
Package tlog is a custom log package which uses github.com/lmittmann/tint.
*/
package tlog

import (
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// DefaultLevel is used when neither the flag value nor LOG_LEVEL selects a
// known level.
const DefaultLevel = "info"

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Level resolves the log level from the given flag value, falling back to
// the LOG_LEVEL environment variable, then to DefaultLevel.
func Level(level string) slog.Level {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	if lvl, ok := levels[strings.ToLower(level)]; ok {
		return lvl
	}

	return levels[DefaultLevel]
}

// New instantiates custom logger.
func New(level string, colorize bool) *slog.Logger {
	if os.Getenv("LOG_COLORIZE") != "" {
		colorize = true
	}

	opts := &tint.Options{
		Level:      Level(level),
		TimeFormat: "15:04:05",
		NoColor:    !colorize,
	}

	return slog.New(
		tint.NewHandler(os.Stderr, opts),
	)
}
