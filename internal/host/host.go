// Package host assembles the application: configuration, tracing, the
// application context, the action registry, and the plugin manager, with
// optional plugin directory watching.
package host

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/278261631/t-gui/internal/action"
	"github.com/278261631/t-gui/internal/app"
	"github.com/278261631/t-gui/internal/config"
	"github.com/278261631/t-gui/internal/log"
	"github.com/278261631/t-gui/internal/plugin"
	"github.com/278261631/t-gui/internal/tracing"
	"github.com/278261631/t-gui/internal/viewer"
	"github.com/278261631/t-gui/internal/watcher"
)

// Host owns the application-scope objects. Create one per application; every
// viewer, action, and plugin hangs off it.
type Host struct {
	Config  config.Config
	Context *app.Context
	Actions *action.Registry
	Plugins *plugin.Manager

	tracer *tracing.Provider

	mu        sync.Mutex
	watch     *watcher.Watcher
	watchStop chan struct{}
	closed    bool
}

// New builds a host from the given configuration. Plugin discovery and
// loading follow the plugins config: directories are registered always,
// discovery and loading only when auto_discover/auto_load are set.
func New(cfg config.Config) (*Host, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	tcfg := cfg.Tracing
	if tcfg.Enabled && tcfg.Exporter == "file" && tcfg.FilePath == "" {
		tcfg.FilePath = config.DefaultTracesFilePath()
	}
	provider, err := tracing.NewProvider(tcfg)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	ctx := app.NewContext()
	actions := action.NewRegistry(ctx)
	plugins := plugin.NewManager(ctx, actions)

	for _, dir := range cfg.Plugins.Dirs {
		if _, err := os.Stat(dir); err != nil {
			log.Debug(log.CatHost, "skipping missing plugin dir", "dir", dir)
			continue
		}
		plugins.Registry().AddSearchPath(dir)
	}

	h := &Host{
		Config:  cfg,
		Context: ctx,
		Actions: actions,
		Plugins: plugins,
		tracer:  provider,
	}

	if cfg.Plugins.AutoDiscover {
		plugins.DiscoverPlugins()
	}
	if cfg.Plugins.AutoLoad {
		plugins.LoadAll()
	}

	log.Info(log.CatHost, "host initialized",
		"plugin_dirs", len(plugins.Registry().SearchPaths()),
		"tracing", provider.Enabled())
	return h, nil
}

// NewViewer creates a viewer registered with the host's application context.
func (h *Host) NewViewer(opts ...viewer.Option) *viewer.Viewer {
	return viewer.New(h.Context, opts...)
}

// WatchPlugins starts watching the registered plugin search paths and
// rediscovers plugins when their content changes. Calling it again while a
// watch is running is an error.
func (h *Host) WatchPlugins() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.watch != nil {
		return fmt.Errorf("plugin watch already running")
	}

	dirs := h.Plugins.Registry().SearchPaths()
	if len(dirs) == 0 {
		return fmt.Errorf("no plugin directories to watch")
	}

	w, err := watcher.New(watcher.DefaultConfig(dirs...))
	if err != nil {
		return fmt.Errorf("creating plugin watcher: %w", err)
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return fmt.Errorf("starting plugin watcher: %w", err)
	}

	stop := make(chan struct{})
	h.watch = w
	h.watchStop = stop

	go func() {
		for {
			select {
			case _, ok := <-changes:
				if !ok {
					return
				}
				log.Debug(log.CatWatcher, "plugin directory changed, rediscovering")
				h.Plugins.DiscoverPlugins()
			case <-stop:
				return
			}
		}
	}()

	log.Info(log.CatWatcher, "watching plugin directories", "count", len(dirs))
	return nil
}

// Close shuts the host down: the plugin watch stops, every loaded plugin is
// unloaded, and pending trace spans are flushed. Close is idempotent.
func (h *Host) Close(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	w := h.watch
	stop := h.watchStop
	h.watch = nil
	h.watchStop = nil
	h.mu.Unlock()

	if w != nil {
		close(stop)
		_ = w.Stop()
	}

	h.Plugins.UnloadAll()

	if err := h.tracer.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatHost, "tracing shutdown failed", err)
		return err
	}

	log.Info(log.CatHost, "host closed")
	return nil
}
