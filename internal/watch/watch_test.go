package watch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDetectsChangeInPollingMode(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(tmpFile, []byte("# Alpha\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(tmpFile,
		WithForcePoll(true),
		WithPollInterval(25*time.Millisecond),
		WithDebounce(10*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatalf("expected polling mode")
	}

	// Give the poller a tick to record its baseline before mutating.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(tmpFile, []byte("# Alpha\n\nbody grew\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changed():
	case <-time.After(3 * time.Second):
		t.Fatalf("change never delivered")
	}
}

func TestWatcherReportsRemoval(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(tmpFile, []byte("# Alpha\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(tmpFile,
		WithForcePoll(true),
		WithPollInterval(25*time.Millisecond),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.Remove(tmpFile); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-w.Errors():
		if !errors.Is(err, ErrFileRemoved) {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("removal never reported")
	}
}

func TestWatcherStartTwice(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(tmpFile, []byte("# Alpha\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(tmpFile, WithForcePoll(true))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start = %v, want ErrAlreadyStarted", err)
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(tmpFile, []byte("# Alpha\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(tmpFile, WithForcePoll(true))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()

	if w.IsPolling() != true {
		t.Fatalf("mode should survive Stop")
	}
}

func TestWatcherEnvForcesPolling(t *testing.T) {
	t.Setenv("TREEFOLD_FORCE_POLL", "1")

	tmpFile := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(tmpFile, []byte("# Alpha\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(tmpFile)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatalf("TREEFOLD_FORCE_POLL should force polling mode")
	}
}
