package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/278261631/t-gui/internal/plugin"
)

var pluginEnabledOnly bool

var (
	pluginHeaderStyle   = lipgloss.NewStyle().Bold(true)
	pluginEnabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pluginDisabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pluginDimStyle      = lipgloss.NewStyle().Faint(true)
)

var pluginListCmd = &cobra.Command{
	Use:   "plugin:list",
	Short: "List discoverable plugins",
	Long: `Scan the configured plugin directories and list every discoverable plugin
with its version, state, and source path.

Examples:
  # List all discovered plugins
  t-gui plugin:list

  # Include an extra directory in the scan
  t-gui plugin:list -p ./my-plugins

  # Only enabled plugins
  t-gui plugin:list --enabled`,
	RunE: func(_ *cobra.Command, _ []string) error {
		registry := plugin.NewRegistry()
		for _, dir := range cfg.Plugins.Dirs {
			if _, err := os.Stat(dir); err != nil {
				continue
			}
			registry.AddSearchPath(dir)
		}
		registry.Discover()

		infos := registry.All()
		if pluginEnabledOnly {
			infos = registry.Enabled()
		}
		if len(infos) == 0 {
			fmt.Println("No plugins found.")
			return nil
		}

		fmt.Println(pluginHeaderStyle.Render(fmt.Sprintf("%-24s %-10s %-9s %s", "NAME", "VERSION", "STATE", "PATH")))
		for _, info := range infos {
			// Pad before styling so ANSI codes don't skew column widths.
			state := pluginEnabledStyle.Render(fmt.Sprintf("%-9s", "enabled"))
			if !info.Enabled {
				state = pluginDisabledStyle.Render(fmt.Sprintf("%-9s", "disabled"))
			}
			path := info.Path
			if path == "" {
				path = pluginDimStyle.Render("(builtin)")
			}
			fmt.Printf("%-24s %-10s %s %s\n", info.Name, info.Version, state, path)
		}
		return nil
	},
}

func init() {
	pluginListCmd.Flags().BoolVar(&pluginEnabledOnly, "enabled", false, "only show enabled plugins")
	rootCmd.AddCommand(pluginListCmd)
}
