// Package cmd implements the t-gui command line interface.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/278261631/t-gui/internal/config"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "t-gui",
	Short:   "An extensible application host with layers, actions, and plugins",
	Long:    `t-gui hosts viewers with layered content, a command/action registry, and a discoverable plugin system. Run without a subcommand to start the host.`,
	Version: version,
	RunE:    runHost,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/t-gui/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write debug logs (path from T_GUI_LOG, default debug.log)")
	rootCmd.PersistentFlags().StringArrayP("plugin-dir", "p", nil,
		"additional plugin directory (repeatable)")

	rootCmd.Flags().Bool("watch", false,
		"watch plugin directories and rediscover on changes")
	rootCmd.Flags().Bool("no-auto-load", false,
		"disable automatic plugin loading at startup")

	_ = viper.BindPFlag("plugins.dirs", rootCmd.PersistentFlags().Lookup("plugin-dir"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("appearance.theme", defaults.Appearance.Theme)
	viper.SetDefault("appearance.font_size", defaults.Appearance.FontSize)
	viper.SetDefault("viewer.background_color", defaults.Viewer.BackgroundColor)
	viper.SetDefault("viewer.default_colormap", defaults.Viewer.DefaultColormap)
	viper.SetDefault("viewer.interpolation", defaults.Viewer.Interpolation)
	viper.SetDefault("plugins.auto_discover", defaults.Plugins.AutoDiscover)
	viper.SetDefault("plugins.auto_load", defaults.Plugins.AutoLoad)
	viper.SetDefault("plugins.dirs", defaults.Plugins.Dirs)
	viper.SetDefault("performance.max_layers", defaults.Performance.MaxLayers)
	viper.SetDefault("performance.cache_size_mb", defaults.Performance.CacheSizeMB)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .t-gui/config.yaml (current directory)
		// 2. ~/.config/t-gui/config.yaml (user config)
		if _, err := os.Stat(".t-gui/config.yaml"); err == nil {
			viper.SetConfigFile(".t-gui/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "t-gui"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .t-gui/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".t-gui/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
