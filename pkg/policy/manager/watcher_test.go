package manager

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDebouncer_CollapsesBursts tests that rapid triggers produce a
// single callback.
func TestDebouncer_CollapsesBursts(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	fired := make(chan struct{}, 10)
	for i := 0; i < 5; i++ {
		d.Trigger(func() { fired <- struct{}{} })
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced callback never fired")
	}

	select {
	case <-fired:
		t.Error("burst of 5 triggers fired more than once")
	case <-time.After(200 * time.Millisecond):
	}
}

// TestDebouncer_StopCancelsPending tests that Stop prevents a queued
// callback from firing.
func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)

	fired := make(chan struct{}, 1)
	d.Trigger(func() { fired <- struct{}{} })
	d.Stop()

	select {
	case <-fired:
		t.Error("callback fired after Stop")
	case <-time.After(300 * time.Millisecond):
	}
}

// TestWatcher_ReloadOnChange tests the end-to-end path: writing a
// policy file under a watched directory triggers a debounced reload.
func TestWatcher_ReloadOnChange(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(&WatcherConfig{
		Path:             dir,
		DebounceInterval: 20 * time.Millisecond,
		Extensions:       []string{".yaml", ".yml"},
		SkipHidden:       true,
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	reloaded := make(chan struct{}, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() error {
			reloaded <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte(validPolicyYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("reload never triggered after policy file write")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

// TestWatcher_IgnoresOtherExtensions tests that non-policy files do not
// trigger reloads.
func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(&WatcherConfig{
		Path:             dir,
		DebounceInterval: 20 * time.Millisecond,
		Extensions:       []string{".yaml"},
		SkipHidden:       true,
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	reloaded := make(chan struct{}, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() error {
			reloaded <- struct{}{}
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
		t.Error("reload triggered by a non-policy file")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	<-done
}
