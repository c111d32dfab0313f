package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestSetupLevels(t *testing.T) {
	ctx := context.Background()

	logger := Setup("debug")
	if !logger.Enabled(ctx, slog.LevelDebug) {
		t.Error("debug level should enable debug records")
	}

	logger = Setup("error")
	if logger.Enabled(ctx, slog.LevelWarn) {
		t.Error("error level should suppress warn records")
	}

	// Case and surrounding space do not matter
	logger = Setup("  WARN ")
	if !logger.Enabled(ctx, slog.LevelWarn) {
		t.Error("warn level should enable warn records")
	}
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Error("warn level should suppress info records")
	}
}

func TestSetupDefaultsToInfo(t *testing.T) {
	ctx := context.Background()

	for _, level := range []string{"", "verbose", "trace"} {
		logger := Setup(level)
		if !logger.Enabled(ctx, slog.LevelInfo) {
			t.Errorf("level %q should enable info records", level)
		}
		if logger.Enabled(ctx, slog.LevelDebug) {
			t.Errorf("level %q should suppress debug records", level)
		}
	}
}
