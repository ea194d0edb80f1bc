package daemon_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"isccd/internal/daemon"
	"isccd/internal/logging"
	"isccd/internal/testsupport"
)

func TestRunOnceProcessesAssetsEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fake := testsupport.NewFakeOmero()
	fake.AddAsset(1, "img.tiff", time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC), []byte("pixel data"))

	d, err := daemon.New(cfg, fake, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	records := fake.Records(1, cfg.Service.Namespace)
	if len(records) != 1 {
		t.Fatalf("expected one annotation, got %d", len(records))
	}
	if records[0].Code == "" {
		t.Fatal("committed record has no code")
	}
	if _, err := os.Stat(cfg.JournalPath()); err != nil {
		t.Fatalf("journal database missing: %v", err)
	}
}

func TestSecondInstanceRefusesToStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	holder := flock.New(filepath.Join(cfg.Service.StateDir, "isccd.lock"))
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not take lock for test: locked=%v err=%v", locked, err)
	}
	defer holder.Unlock()

	d, err := daemon.New(cfg, testsupport.NewFakeOmero(), logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.RunOnce(context.Background()); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fake := testsupport.NewFakeOmero()

	d, err := daemon.New(cfg, fake, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
	if fake.Connected() {
		t.Fatal("connection left open after shutdown")
	}
}
