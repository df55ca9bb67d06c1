package plugin

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/278261631/t-gui/internal/action"
	"github.com/278261631/t-gui/internal/app"
	"github.com/278261631/t-gui/internal/events"
	"github.com/278261631/t-gui/internal/log"
)

// Events published on the application context bus. Contribution events carry
// the plugin name and the contribution list; action contributions are not
// republished, they go straight into the action registry.
const (
	EventPluginLoaded        = "plugin_loaded"
	EventPluginUnloaded      = "plugin_unloaded"
	EventPluginsDiscovered   = "plugins_discovered"
	EventWidgetContributions = "widget_contributions"
	EventMenuContributions   = "menu_contributions"
	EventReaderContributions = "reader_contributions"
	EventWriterContributions = "writer_contributions"
)

const tracerName = "t-gui/plugin"

// Manager orchestrates plugin load and unload against the registry. Each
// plugin moves Discovered -> Loaded -> Unloaded; hook failures are isolated
// per plugin and never leave the state machine stuck.
type Manager struct {
	mu       sync.Mutex
	registry *Registry
	bus      *events.Bus
	actions  *action.Registry
	loaded   map[string]Plugin
	order    []string
	tracer   trace.Tracer
}

// NewManager creates a manager with its own empty registry, emitting on
// ctx's bus and registering action contributions into actions.
func NewManager(ctx *app.Context, actions *action.Registry) *Manager {
	return &Manager{
		registry: NewRegistry(),
		bus:      ctx.Events(),
		actions:  actions,
		loaded:   make(map[string]Plugin),
		tracer:   otel.Tracer(tracerName),
	}
}

// Registry returns the manager's plugin registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// DiscoverPlugins scans the registry's search paths and emits
// plugins_discovered.
func (m *Manager) DiscoverPlugins() {
	m.registry.Discover()
	m.bus.Publish(EventPluginsDiscovered, nil)
}

// LoadPlugin loads a plugin by name. Loading an already-loaded plugin is a
// no-op success. Unknown names, disabled plugins, and module resolution
// failures return false; those are the only load failures. Hook failures
// during setup or contribution processing are reported and isolated, the
// plugin still counts as loaded.
func (m *Manager) LoadPlugin(name string) bool {
	m.mu.Lock()
	if _, already := m.loaded[name]; already {
		m.mu.Unlock()
		return true
	}
	m.mu.Unlock()

	info, ok := m.registry.Get(name)
	if !ok {
		log.Warn(log.CatPlugin, "load of unknown plugin", "name", name)
		return false
	}
	if !info.Enabled {
		log.Warn(log.CatPlugin, "load of disabled plugin", "name", name)
		return false
	}

	_, span := m.tracer.Start(context.Background(), "plugin.load",
		trace.WithAttributes(attribute.String("plugin.name", name)))
	defer span.End()

	p, ok := m.registry.LoadModule(name)
	if !ok {
		span.RecordError(fmt.Errorf("module resolution failed"))
		return false
	}

	m.mu.Lock()
	m.loaded[name] = p
	m.order = append(m.order, name)
	m.mu.Unlock()

	if hook, ok := p.(SetupHook); ok {
		if err := callHook(name, "setup", func() error { return hook.SetupPlugin(m) }); err != nil {
			span.RecordError(err)
		}
	}

	m.processContributions(name, p)

	log.Info(log.CatPlugin, "plugin loaded", "name", name, "version", info.Version)
	m.bus.Publish(EventPluginLoaded, events.Payload{"plugin_name": name})
	return true
}

// UnloadPlugin unloads a plugin by name. Unloading a plugin that is not
// loaded is a no-op success. A teardown failure is reported but the plugin
// is still unloaded.
func (m *Manager) UnloadPlugin(name string) bool {
	m.mu.Lock()
	p, ok := m.loaded[name]
	if !ok {
		m.mu.Unlock()
		return true
	}
	delete(m.loaded, name)
	for i, existing := range m.order {
		if existing == name {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	if hook, ok := p.(TeardownHook); ok {
		_ = callHook(name, "teardown", func() error { return hook.TeardownPlugin(m) })
	}

	// Drop the cached module so a reload resolves a fresh instance.
	m.registry.InvalidateModule(name)

	log.Info(log.CatPlugin, "plugin unloaded", "name", name)
	m.bus.Publish(EventPluginUnloaded, events.Payload{"plugin_name": name})
	return true
}

// LoadAll loads every enabled plugin in registration order. Individual
// failures are reported and do not stop the rest.
func (m *Manager) LoadAll() {
	for _, info := range m.registry.Enabled() {
		m.LoadPlugin(info.Name)
	}
}

// UnloadAll unloads every loaded plugin.
func (m *Manager) UnloadAll() {
	m.mu.Lock()
	names := append([]string(nil), m.order...)
	m.mu.Unlock()

	for _, name := range names {
		m.UnloadPlugin(name)
	}
}

// ReloadPlugin unloads then loads a plugin. If the load fails after a
// successful unload the plugin ends up unloaded, never stuck half-way.
func (m *Manager) ReloadPlugin(name string) bool {
	m.UnloadPlugin(name)
	return m.LoadPlugin(name)
}

// IsLoaded reports whether the named plugin is currently loaded.
func (m *Manager) IsLoaded(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.loaded[name]
	return ok
}

// Loaded returns the names of loaded plugins in load order.
func (m *Manager) Loaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// processContributions aggregates the plugin's declared contributions.
// Action contributions register directly with the action registry; the other
// kinds are republished as events tagged with the plugin name. Each hook is
// isolated: a failing hook is reported and the remaining hooks still run.
func (m *Manager) processContributions(name string, p Plugin) {
	if c, ok := p.(ActionContributor); ok {
		var contribs []ActionContribution
		err := callHook(name, "actions", func() error {
			contribs = c.ActionContributions()
			return nil
		})
		if err == nil {
			for _, contrib := range contribs {
				m.actions.Register(action.Action{
					ID:       contrib.ID,
					Title:    contrib.Title,
					Callback: contrib.Callback,
					Tooltip:  contrib.Tooltip,
					Icon:     contrib.Icon,
					Shortcut: contrib.Shortcut,
					Enabled:  !contrib.Disabled,
				})
			}
		}
	}

	if c, ok := p.(WidgetContributor); ok {
		var contribs []WidgetContribution
		if callHook(name, "widgets", func() error { contribs = c.WidgetContributions(); return nil }) == nil && len(contribs) > 0 {
			m.publishContributions(EventWidgetContributions, name, contribs)
		}
	}

	if c, ok := p.(MenuContributor); ok {
		var contribs []MenuContribution
		if callHook(name, "menus", func() error { contribs = c.MenuContributions(); return nil }) == nil && len(contribs) > 0 {
			m.publishContributions(EventMenuContributions, name, contribs)
		}
	}

	if c, ok := p.(ReaderContributor); ok {
		var contribs []ReaderContribution
		if callHook(name, "readers", func() error { contribs = c.ReaderContributions(); return nil }) == nil && len(contribs) > 0 {
			m.publishContributions(EventReaderContributions, name, contribs)
		}
	}

	if c, ok := p.(WriterContributor); ok {
		var contribs []WriterContribution
		if callHook(name, "writers", func() error { contribs = c.WriterContributions(); return nil }) == nil && len(contribs) > 0 {
			m.publishContributions(EventWriterContributions, name, contribs)
		}
	}
}

func (m *Manager) publishContributions(kind, name string, contribs any) {
	m.bus.Publish(kind, events.Payload{
		"plugin_name":   name,
		"contributions": contribs,
	})
}

// callHook invokes a plugin hook, converting panics to errors and logging
// any failure against the owning plugin.
func callHook(plugin, hook string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
			log.Error(log.CatPlugin, "plugin hook panicked",
				"plugin", plugin, "hook", hook, "panic", fmt.Sprintf("%v", r))
		}
	}()
	if err = fn(); err != nil {
		log.ErrorErr(log.CatPlugin, "plugin hook failed", err, "plugin", plugin, "hook", hook)
	}
	return err
}
