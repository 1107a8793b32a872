package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestInitDefaultsToInfo(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	if got := Level(); got != slog.LevelInfo {
		t.Fatalf("initial level = %v, want %v", got, slog.LevelInfo)
	}

	// Re-initializing resets a raised level back to info.
	SetLevel(slog.LevelDebug)
	if err := Init(); err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
	if got := Level(); got != slog.LevelInfo {
		t.Fatalf("level after re-init = %v, want %v", got, slog.LevelInfo)
	}
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"  Debug  ", slog.LevelDebug},
	}
	for _, c := range cases {
		if err := SetLevelString(c.in); err != nil {
			t.Fatalf("SetLevelString(%q) failed: %v", c.in, err)
		}
		if got := Level(); got != c.want {
			t.Fatalf("SetLevelString(%q): level = %v, want %v", c.in, got, c.want)
		}
	}

	if err := SetLevelString("loud"); err == nil {
		t.Fatal("SetLevelString accepted an unknown level")
	}
}

func TestLevelFiltersHandler(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	// The tint handler reads the shared LevelVar, so raising the level takes
	// effect without re-initializing.
	SetLevel(slog.LevelError)
	if Level() != slog.LevelError {
		t.Fatalf("level = %v, want %v", Level(), slog.LevelError)
	}

	ctx := context.Background()
	logger := Get()
	logger.Debug(ctx, "suppressed at error level", String("k", "v"))
	logger.Error(ctx, "emitted at error level", Int("n", 1))

	SetLevel(slog.LevelInfo)
}

func TestLoggerFieldsAndNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	named := Named("synth")
	if named == nil {
		t.Fatal("named logger is nil")
	}

	ctx := context.Background()
	named.Info(ctx, "field helpers",
		String("s", "v"),
		Int("i", 2),
		Float64("f", 0.25),
		Any("a", []string{"x"}),
	)
}
