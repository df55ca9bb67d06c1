package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/278261631/t-gui/internal/watcher"
)

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "plugin.yaml")
	err := os.WriteFile(manifest, []byte("name: test\n"), 0644)
	require.NoError(t, err, "failed to create manifest")

	w, err := watcher.New(watcher.Config{
		Dirs:        []string{dir},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		err := os.WriteFile(manifest, []byte(fmt.Sprintf("name: test%d\n", i)), 0644)
		require.NoError(t, err, "failed to write file")
		time.Sleep(10 * time.Millisecond)
	}

	// Should receive exactly one notification
	select {
	case <-onChange:
		// Expected
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	// No second notification should come quickly
	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
		// Expected - no second notification
	}
}

func TestWatcher_IgnoresUnrelatedWrites(t *testing.T) {
	dir := t.TempDir()
	otherPath := filepath.Join(dir, "notes.txt")
	// Pre-create the file so writes to it are just Write events
	err := os.WriteFile(otherPath, []byte("initial"), 0644)
	require.NoError(t, err, "failed to create file")

	w, err := watcher.New(watcher.Config{
		Dirs:        []string{dir},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	err = os.WriteFile(otherPath, []byte("other content"), 0644)
	require.NoError(t, err, "failed to write file")

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(100 * time.Millisecond):
		// Expected - no notification for unrelated file
	}
}

func TestWatcher_NotifiesOnSharedObject(t *testing.T) {
	dir := t.TempDir()

	w, err := watcher.New(watcher.Config{
		Dirs:        []string{dir},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	err = os.WriteFile(filepath.Join(dir, "new.so"), []byte("object"), 0644)
	require.NoError(t, err, "failed to write .so file")

	select {
	case <-onChange:
		// Expected - new plugin object should trigger rediscovery
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification for .so file write")
	}
}

func TestWatcher_NotifiesOnNewPluginDirectory(t *testing.T) {
	dir := t.TempDir()

	w, err := watcher.New(watcher.Config{
		Dirs:        []string{dir},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	require.NoError(t, os.Mkdir(filepath.Join(dir, "new-plugin"), 0755))

	select {
	case <-onChange:
		// Expected
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification for new plugin directory")
	}
}

func TestWatcher_MultipleDirectories(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	w, err := watcher.New(watcher.Config{
		Dirs:        []string{dirA, dirB},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	err = os.WriteFile(filepath.Join(dirB, "plugin.yaml"), []byte("name: b\n"), 0644)
	require.NoError(t, err, "failed to write manifest")

	select {
	case <-onChange:
		// Expected - second directory is watched too
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification from second directory")
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()

	w, err := watcher.New(watcher.Config{
		Dirs:        []string{dir},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Stop should not hang or panic
	done := make(chan struct{})
	go func() {
		err := w.Stop()
		assert.NoError(t, err, "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
		// Expected - stop completed successfully
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/plugins/a", "/plugins/b")

	assert.Equal(t, []string{"/plugins/a", "/plugins/b"}, cfg.Dirs)
	assert.Equal(t, 1*time.Second, cfg.DebounceDur)
}
