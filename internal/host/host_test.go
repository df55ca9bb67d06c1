package host

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/278261631/t-gui/internal/action"
	"github.com/278261631/t-gui/internal/config"
	"github.com/278261631/t-gui/internal/events"
	"github.com/278261631/t-gui/internal/plugin"
)

func actionFixture() action.Action {
	return action.Action{ID: "test.noop", Title: "No-op", Enabled: true}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Plugins.Dirs = nil
	cfg.Plugins.AutoDiscover = false
	cfg.Plugins.AutoLoad = false
	return cfg
}

func writePluginDir(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	manifest := "name: " + name + "\nversion: 1.0.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugin.yaml"), []byte(manifest), 0o644))
	return dir
}

func TestNew_WiresComponents(t *testing.T) {
	h, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = h.Close(context.Background()) }()

	require.NotNil(t, h.Context)
	require.NotNil(t, h.Actions)
	require.NotNil(t, h.Plugins)

	// Action events land on the host context bus.
	var registered int
	h.Context.Events().Subscribe("action_registered", func(events.Event) { registered++ })
	h.Actions.Register(actionFixture())
	assert.Equal(t, 1, registered)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Appearance.Theme = "neon"

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestNew_AutoDiscover(t *testing.T) {
	root := t.TempDir()
	writePluginDir(t, root, "alpha")
	writePluginDir(t, root, "beta")

	cfg := testConfig(t)
	cfg.Plugins.Dirs = []string{root}
	cfg.Plugins.AutoDiscover = true

	h, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = h.Close(context.Background()) }()

	assert.Len(t, h.Plugins.Registry().All(), 2)
	assert.Empty(t, h.Plugins.Loaded())
}

func TestNew_MissingPluginDirSkipped(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plugins.Dirs = []string{filepath.Join(t.TempDir(), "absent")}
	cfg.Plugins.AutoDiscover = true

	h, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = h.Close(context.Background()) }()

	assert.Empty(t, h.Plugins.Registry().SearchPaths())
}

func TestHost_NewViewer(t *testing.T) {
	h, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = h.Close(context.Background()) }()

	v := h.NewViewer()
	assert.Same(t, v, h.Context.ActiveViewer())
}

func TestHost_CloseUnloadsPlugins(t *testing.T) {
	h, err := New(testConfig(t))
	require.NoError(t, err)

	h.Plugins.Registry().RegisterBuiltin("builtin", func() plugin.Plugin {
		return struct{}{}
	})
	require.True(t, h.Plugins.LoadPlugin("builtin"))

	require.NoError(t, h.Close(context.Background()))
	assert.Empty(t, h.Plugins.Loaded())

	// Idempotent.
	assert.NoError(t, h.Close(context.Background()))
}

func TestHost_WatchPluginsRediscovers(t *testing.T) {
	root := t.TempDir()
	writePluginDir(t, root, "first")

	cfg := testConfig(t)
	cfg.Plugins.Dirs = []string{root}
	cfg.Plugins.AutoDiscover = true

	h, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = h.Close(context.Background()) }()

	discovered := make(chan struct{}, 4)
	h.Context.Events().Subscribe(plugin.EventPluginsDiscovered, func(events.Event) {
		select {
		case discovered <- struct{}{}:
		default:
		}
	})

	require.NoError(t, h.WatchPlugins())

	writePluginDir(t, root, "second")

	select {
	case <-discovered:
	case <-time.After(3 * time.Second):
		t.Fatal("expected rediscovery after plugin dir change")
	}

	_, ok := h.Plugins.Registry().Get("second")
	assert.True(t, ok)
}

func TestHost_WatchPluginsTwiceFails(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(t)
	cfg.Plugins.Dirs = []string{root}

	h, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = h.Close(context.Background()) }()

	require.NoError(t, h.WatchPlugins())
	assert.Error(t, h.WatchPlugins())
}

func TestHost_WatchPluginsWithoutDirsFails(t *testing.T) {
	h, err := New(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = h.Close(context.Background()) }()

	assert.Error(t, h.WatchPlugins())
}
