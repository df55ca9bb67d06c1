// Package config provides configuration types and defaults for t-gui.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/278261631/t-gui/internal/log"
	"github.com/278261631/t-gui/internal/tracing"
)

// AppearanceConfig holds theme and font settings.
type AppearanceConfig struct {
	Theme      string `mapstructure:"theme"`       // "dark" (default) or "light"
	FontSize   int    `mapstructure:"font_size"`   // point size for UI text
	FontFamily string `mapstructure:"font_family"` // empty uses the system default
}

// ViewerConfig holds defaults applied to newly created viewers.
type ViewerConfig struct {
	BackgroundColor  string `mapstructure:"background_color"` // hex color e.g. "#000000"
	DefaultColormap  string `mapstructure:"default_colormap"` // colormap for new image layers
	Interpolation    string `mapstructure:"interpolation"`    // "nearest" (default) or "linear"
}

// PluginsConfig holds plugin discovery and loading settings.
type PluginsConfig struct {
	// AutoDiscover scans the plugin directories at startup.
	AutoDiscover bool `mapstructure:"auto_discover"`
	// AutoLoad loads every enabled discovered plugin at startup.
	AutoLoad bool `mapstructure:"auto_load"`
	// Dirs are the directories scanned for plugins.
	Dirs []string `mapstructure:"dirs"`
}

// PerformanceConfig holds resource limits and rendering knobs.
type PerformanceConfig struct {
	MaxLayers      int  `mapstructure:"max_layers"`
	CacheSizeMB    int  `mapstructure:"cache_size_mb"`
	AsyncRendering bool `mapstructure:"async_rendering"`
}

// Config holds all configuration options for t-gui.
type Config struct {
	Appearance  AppearanceConfig  `mapstructure:"appearance"`
	Viewer      ViewerConfig      `mapstructure:"viewer"`
	Plugins     PluginsConfig     `mapstructure:"plugins"`
	Performance PerformanceConfig `mapstructure:"performance"`
	Tracing     tracing.Config    `mapstructure:"tracing"`
}

// DefaultPluginDir returns ~/.t-gui/plugins, or empty string if the home
// directory is unavailable.
func DefaultPluginDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".t-gui", "plugins")
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/t-gui/traces/traces.jsonl or empty string if the home
// directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "t-gui", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	cfg := Config{
		Appearance: AppearanceConfig{
			Theme:    "dark",
			FontSize: 12,
		},
		Viewer: ViewerConfig{
			BackgroundColor: "#000000",
			DefaultColormap: "gray",
			Interpolation:   "nearest",
		},
		Plugins: PluginsConfig{
			AutoDiscover: true,
			AutoLoad:     false,
		},
		Performance: PerformanceConfig{
			MaxLayers:      100,
			CacheSizeMB:    512,
			AsyncRendering: false,
		},
		Tracing: tracing.DefaultConfig(),
	}
	if dir := DefaultPluginDir(); dir != "" {
		cfg.Plugins.Dirs = []string{dir}
	}
	return cfg
}

// Validate checks the configuration for errors. Empty values use defaults.
func Validate(cfg Config) error {
	switch cfg.Appearance.Theme {
	case "", "dark", "light":
	default:
		return fmt.Errorf("appearance.theme must be \"dark\" or \"light\", got %q", cfg.Appearance.Theme)
	}
	if cfg.Appearance.FontSize < 0 {
		return fmt.Errorf("appearance.font_size must not be negative, got %d", cfg.Appearance.FontSize)
	}

	switch cfg.Viewer.Interpolation {
	case "", "nearest", "linear":
	default:
		return fmt.Errorf("viewer.interpolation must be \"nearest\" or \"linear\", got %q", cfg.Viewer.Interpolation)
	}

	for i, dir := range cfg.Plugins.Dirs {
		if dir == "" {
			return fmt.Errorf("plugins.dirs[%d] must not be empty", i)
		}
	}

	if cfg.Performance.MaxLayers < 0 {
		return fmt.Errorf("performance.max_layers must not be negative, got %d", cfg.Performance.MaxLayers)
	}
	if cfg.Performance.CacheSizeMB < 0 {
		return fmt.Errorf("performance.cache_size_mb must not be negative, got %d", cfg.Performance.CacheSizeMB)
	}

	return tracing.Validate(cfg.Tracing)
}

// DefaultConfigTemplate returns the default config as a YAML string with
// comments.
func DefaultConfigTemplate() string {
	return `# T-GUI Configuration

# Appearance settings
appearance:
  theme: dark        # "dark" (default) or "light"
  font_size: 12
  # font_family: ""  # Empty uses the system default

# Defaults for newly created viewers
viewer:
  background_color: "#000000"
  default_colormap: gray
  interpolation: nearest   # "nearest" (default) or "linear"

# Plugin discovery and loading
plugins:
  auto_discover: true   # Scan plugin directories at startup
  auto_load: false      # Load every enabled discovered plugin at startup
  # Directories scanned for plugins (default: ~/.t-gui/plugins)
  # dirs:
  #   - /path/to/plugins

# Resource limits and rendering
performance:
  max_layers: 100
  cache_size_mb: 512
  async_rendering: false

# Tracing configuration
# Enables visibility into action execution and plugin load flows
# tracing:
#   enabled: false             # Enable/disable tracing (default: false)
#   exporter: file             # Export backend: none, file, stdout (default: file)
#   file_path: ~/.config/t-gui/traces/traces.jsonl
#   sample_rate: 1.0           # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
