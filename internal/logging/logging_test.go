// ABOUTME: Tests for logging setup
// ABOUTME: Verifies console and file handlers receive records at the right level
package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func restoreDefault(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestConsoleAndFile(t *testing.T) {
	restoreDefault(t)

	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "volplay.log")

	logger, closer := Setup(Options{
		Level:         slog.LevelInfo,
		File:          path,
		Console:       true,
		ConsoleWriter: &console,
	})

	logger.Info("controller created", slog.Int("volume", 50))
	logger.Debug("hidden detail")

	if err := closer.Close(); err != nil {
		t.Fatalf("failed to close log file: %v", err)
	}

	if !strings.Contains(console.String(), "controller created") {
		t.Errorf("expected console output, got %q", console.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "controller created") || !strings.Contains(string(data), "volume=50") {
		t.Errorf("expected file record, got %q", data)
	}
	if strings.Contains(string(data), "hidden detail") {
		t.Error("expected debug record to be filtered")
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	restoreDefault(t)

	var console bytes.Buffer
	logger, closer := Setup(Options{Level: slog.LevelDebug, Console: true, ConsoleWriter: &console})
	defer closer.Close()

	if slog.Default() != logger {
		t.Error("expected logger to be installed as default")
	}

	slog.Debug("via default")
	if !strings.Contains(console.String(), "via default") {
		t.Errorf("expected default logger output, got %q", console.String())
	}
}

func TestNoOutputs(t *testing.T) {
	restoreDefault(t)

	logger, closer := Setup(Options{})
	defer closer.Close()

	// Discarding logger must still be usable
	logger.Info("nowhere")
}
