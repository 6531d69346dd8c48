package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/Phantom-VK/icrs/internal/config"
)

func TestNewFailsWithoutParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icrs", "icrs.log")
	if _, err := New(path, "info"); err == nil {
		t.Fatalf("expected error when the log directory does not exist")
	}
}

func TestNewWritesToFreshConfigDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icrs", "icrs.log")
	if err := config.EnsureDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}

	logger, err := New(path, "info")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("started")
	_ = logger.Sync()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected log output in %s", path)
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icrs.log")
	logger, err := New(path, "chatty")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info level to be enabled")
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should stay disabled on fallback")
	}
}
