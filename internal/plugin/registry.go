package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	goplugin "plugin"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/spf13/viper"

	"github.com/278261631/t-gui/internal/log"
)

// Manifest file names recognized inside a plugin directory.
var manifestNames = []string{"plugin.yaml", "plugin.yml", "plugin.json"}

// Registry catalogs discoverable plugins and resolves their modules.
// Registration is independent of load state: a plugin can be listed,
// enabled, and disabled without ever being loaded.
type Registry struct {
	mu       sync.Mutex
	plugins  map[string]*Info
	order    []string
	paths    []string
	builtins map[string]Factory
	// modules caches resolved module handles so LoadModule is idempotent
	// per name. Entries never expire; unload invalidates explicitly.
	modules *cache.Cache
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins:  make(map[string]*Info),
		builtins: make(map[string]Factory),
		modules:  cache.New(cache.NoExpiration, 0),
	}
}

// AddSearchPath adds a directory to scan during Discover. Duplicate paths
// are ignored.
func (r *Registry) AddSearchPath(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.paths {
		if existing == path {
			return
		}
	}
	r.paths = append(r.paths, path)
}

// SearchPaths returns the registered search paths.
func (r *Registry) SearchPaths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// RegisterBuiltin registers an in-process plugin factory. Builtins are for
// embedders and tests; they resolve without touching the filesystem. When no
// Info is registered under the name yet a default one is created.
func (r *Registry) RegisterBuiltin(name string, factory Factory) {
	r.mu.Lock()
	r.builtins[name] = factory
	_, exists := r.plugins[name]
	r.mu.Unlock()

	if !exists {
		info := defaultInfo(name, "")
		r.Register(info)
	}
}

// Register adds or replaces plugin metadata.
func (r *Registry) Register(info Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.plugins[info.Name]; !exists {
		r.order = append(r.order, info.Name)
	}
	stored := info
	r.plugins[info.Name] = &stored
}

// Unregister removes plugin metadata and any cached module.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.plugins[name]; !exists {
		return
	}
	delete(r.plugins, name)
	delete(r.builtins, name)
	for i, existing := range r.order {
		if existing == name {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	r.modules.Delete(name)
}

// Get returns the metadata registered under name.
func (r *Registry) Get(name string) (Info, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.plugins[name]
	if !ok {
		return Info{}, false
	}
	return *info, true
}

// All returns every registered plugin in registration order.
func (r *Registry) All() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.plugins[name])
	}
	return out
}

// Enabled returns the enabled plugins in registration order.
func (r *Registry) Enabled() []Info {
	var out []Info
	for _, info := range r.All() {
		if info.Enabled {
			out = append(out, info)
		}
	}
	return out
}

// Enable marks a plugin enabled. Unknown names are ignored.
func (r *Registry) Enable(name string) {
	r.setEnabled(name, true)
}

// Disable marks a plugin disabled. A disabled plugin stays registered but
// refuses to load.
func (r *Registry) Disable(name string) {
	r.setEnabled(name, false)
}

func (r *Registry) setEnabled(name string, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.plugins[name]; ok {
		info.Enabled = enabled
	}
}

// Discover scans every search path for plugin candidates: a directory is a
// plugin package (metadata read from its manifest when present), a .so file
// a standalone plugin named after its stem. A failure on one candidate is
// logged and does not abort the rest of the scan.
func (r *Registry) Discover() {
	for _, root := range r.SearchPaths() {
		entries, err := os.ReadDir(root)
		if err != nil {
			log.Warn(log.CatPlugin, "skipping search path", "path", root, "error", err)
			continue
		}
		for _, entry := range entries {
			full := filepath.Join(root, entry.Name())
			if entry.IsDir() {
				if err := r.discoverDir(full); err != nil {
					log.ErrorErr(log.CatPlugin, "discovering plugin directory failed", err, "path", full)
				}
				continue
			}
			if strings.HasSuffix(entry.Name(), ".so") {
				stem := strings.TrimSuffix(entry.Name(), ".so")
				r.Register(defaultInfo(stem, full))
			}
		}
	}
}

// discoverDir registers a plugin from a package directory. Manifest fields
// override the defaults; a missing manifest yields a default Info named
// after the directory.
func (r *Registry) discoverDir(dir string) error {
	info := defaultInfo(filepath.Base(dir), dir)

	manifest := findManifest(dir)
	if manifest != "" {
		v := viper.New()
		v.SetConfigFile(manifest)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading manifest %s: %w", manifest, err)
		}
		// Unmarshal only touches keys present in the manifest; absent
		// fields keep their defaults, including enabled=true.
		if err := v.Unmarshal(&info); err != nil {
			return fmt.Errorf("parsing manifest %s: %w", manifest, err)
		}
		if info.Name == "" {
			info.Name = filepath.Base(dir)
		}
		if info.Version == "" {
			info.Version = DefaultVersion
		}
		if info.EntryPoint == "" {
			info.EntryPoint = DefaultEntryPoint
		}
		info.Path = dir
	}

	r.Register(info)
	log.Debug(log.CatPlugin, "discovered plugin", "name", info.Name, "path", dir)
	return nil
}

func findManifest(dir string) string {
	for _, name := range manifestNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadModule resolves the module for a registered plugin and returns its
// handle. Resolution is idempotent per name: repeated calls return the
// cached handle. Failure to resolve returns false rather than an error; the
// cause is logged.
func (r *Registry) LoadModule(name string) (Plugin, bool) {
	if cached, ok := r.modules.Get(name); ok {
		return cached.(Plugin), true
	}

	info, ok := r.Get(name)
	if !ok {
		return nil, false
	}

	r.mu.Lock()
	factory := r.builtins[name]
	r.mu.Unlock()

	if factory == nil {
		var err error
		factory, err = openShared(info)
		if err != nil {
			log.ErrorErr(log.CatPlugin, "resolving plugin module failed", err, "name", name)
			return nil, false
		}
	}

	p := factory()
	r.modules.Set(name, p, cache.NoExpiration)
	return p, true
}

// InvalidateModule drops the cached module handle so the next LoadModule
// resolves a fresh instance.
func (r *Registry) InvalidateModule(name string) {
	r.modules.Delete(name)
}

// openShared loads a shared-object plugin and returns its entry-point
// factory. For a directory path the object is expected at <dir>/<name>.so.
func openShared(info Info) (Factory, error) {
	path := info.Path
	if path == "" {
		return nil, fmt.Errorf("plugin %s has no load path", info.Name)
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, info.Name+".so")
	}

	mod, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	entry := info.EntryPoint
	if entry == "" {
		entry = DefaultEntryPoint
	}
	sym, err := mod.Lookup(entry)
	if err != nil {
		return nil, fmt.Errorf("looking up %s in %s: %w", entry, path, err)
	}

	switch f := sym.(type) {
	case Factory:
		return f, nil
	case func() Plugin:
		return f, nil
	default:
		return nil, fmt.Errorf("entry point %s in %s has type %T, want func() plugin.Plugin", entry, path, sym)
	}
}
