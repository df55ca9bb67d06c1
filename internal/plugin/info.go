package plugin

// DefaultEntryPoint is the exported symbol looked up in shared-object
// plugins when the manifest does not name one.
const DefaultEntryPoint = "NewPlugin"

// DefaultVersion is assumed for plugins whose manifest omits a version.
const DefaultVersion = "0.1.0"

// Info is the registered metadata for a discoverable plugin, independent of
// whether the plugin is loaded.
type Info struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Description string `mapstructure:"description"`
	Author      string `mapstructure:"author"`
	// Path is the load path: a plugin directory or a .so file. Empty for
	// builtin plugins.
	Path       string `mapstructure:"-"`
	EntryPoint string `mapstructure:"entry_point"`
	Enabled    bool   `mapstructure:"enabled"`
}

// defaultInfo returns an Info with discovery fallbacks applied: the plugin
// is named after its directory or file stem, version "0.1.0", enabled.
func defaultInfo(name, path string) Info {
	return Info{
		Name:       name,
		Version:    DefaultVersion,
		Path:       path,
		EntryPoint: DefaultEntryPoint,
		Enabled:    true,
	}
}
