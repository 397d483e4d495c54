package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/loupe/pkg/telemetry/logging"
)

func TestNewWatcher_RequiresPath(t *testing.T) {
	if _, err := NewWatcher("", 0, nil); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: normal\n")

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	var reloads atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() error {
			reloads.Add(1)
			return nil
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for reloads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
	_ = w.Stop()

	if got := reloads.Load(); got != 1 {
		t.Errorf("expected 1 debounced reload, got %d", got)
	}
}

func TestWatcher_StopWithoutWatch(t *testing.T) {
	w, err := NewWatcher(writeConfig(t, ""), 0, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestLevelReloader(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n")

	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Level: "normal", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}

	reload := LevelReloader(path, envMap(nil), logger)
	if err := reload(); err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if logger.Level() != slog.LevelDebug {
		t.Errorf("expected debug level after reload, got %v", logger.Level())
	}

	// The environment still wins over the file.
	reload = LevelReloader(path, envMap(map[string]string{"LOG_LEVEL": "critical"}), logger)
	if err := reload(); err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if logger.Level() != slog.LevelWarn {
		t.Errorf("expected warn level from env, got %v", logger.Level())
	}
}

func TestLevelReloader_InvalidLevel(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: loud\n")
	logger := logging.NewNop()
	before := logger.Level()

	if err := LevelReloader(path, envMap(nil), logger)(); err == nil {
		t.Error("expected error for invalid level")
	}
	if logger.Level() != before {
		t.Errorf("expected level unchanged, got %v", logger.Level())
	}
}

func TestDebouncer_CoalescesTriggers(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
	}

	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 call, got %d", got)
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("expected no calls after Stop, got %d", got)
	}
}
