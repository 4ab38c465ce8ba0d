package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// startWatcher runs Watch against dir and returns a channel of reloaded
// configs plus a stop function that waits for the watcher to exit.
func startWatcher(t *testing.T, dir string) (<-chan *Config, func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan *Config, 8)
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = Watch(ctx, dir, zerolog.Nop(), func(cfg *Config) {
			changes <- cfg
		})
	}()

	// Let the watcher register before the test writes anything.
	time.Sleep(100 * time.Millisecond)

	return changes, func() {
		cancel()
		<-done
	}
}

func TestWatch_ReloadsOnConfigWrite(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.LiveKit.RoomName = "before"
	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	changes, stop := startWatcher(t, dir)
	defer stop()

	cfg.LiveKit.RoomName = "after"
	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	select {
	case got := <-changes:
		if got.LiveKit.RoomName != "after" {
			t.Errorf("RoomName = %q, want %q", got.LiveKit.RoomName, "after")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("onChange not invoked after config write")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Save(DefaultConfig(), dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	changes, stop := startWatcher(t, dir)
	defer stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("unrelated"), 0o644); err != nil {
		t.Fatalf("write unrelated file: %v", err)
	}

	select {
	case <-changes:
		t.Error("onChange invoked for a file other than config.yaml")
	case <-time.After(debounceDelay + 500*time.Millisecond):
	}
}

func TestWatch_MalformedWriteKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.LiveKit.RoomName = "good"
	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	changes, stop := startWatcher(t, dir)
	defer stop()

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("livekit: [unclosed"), 0o644); err != nil {
		t.Fatalf("write malformed config: %v", err)
	}

	select {
	case <-changes:
		t.Error("onChange invoked for a config that failed to parse")
	case <-time.After(debounceDelay + 500*time.Millisecond):
	}

	// The file on disk is broken, but the running config was never replaced
	// and a corrected write recovers.
	if err := Save(cfg, dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	select {
	case got := <-changes:
		if got.LiveKit.RoomName != "good" {
			t.Errorf("RoomName = %q, want %q", got.LiveKit.RoomName, "good")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("onChange not invoked after corrected write")
	}
}
