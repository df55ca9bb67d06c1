// Package plugin provides the plugin registry (discovery and metadata) and
// the plugin manager (load/unload lifecycle, hook invocation, contribution
// processing). A plugin is any value implementing some subset of the optional
// hook interfaces below; an unimplemented hook simply contributes nothing.
package plugin

import (
	"github.com/278261631/t-gui/internal/action"
)

// Plugin is the opaque module handle for a loaded plugin. Capabilities are
// discovered by asserting the optional hook interfaces against it.
type Plugin interface{}

// Factory constructs a plugin instance. Builtin plugins register a Factory;
// shared-object plugins export an entry-point symbol with this signature.
type Factory func() Plugin

// SetupHook is called once after the plugin is loaded.
type SetupHook interface {
	SetupPlugin(m *Manager) error
}

// TeardownHook is called when the plugin is unloaded. It should undo
// whatever SetupPlugin did.
type TeardownHook interface {
	TeardownPlugin(m *Manager) error
}

// ActionContributor declares actions to register with the action registry.
type ActionContributor interface {
	ActionContributions() []ActionContribution
}

// WidgetContributor declares widgets for the presentation layer to place.
type WidgetContributor interface {
	WidgetContributions() []WidgetContribution
}

// MenuContributor declares menu entries referencing registered actions.
type MenuContributor interface {
	MenuContributions() []MenuContribution
}

// ReaderContributor declares file readers keyed by glob patterns.
type ReaderContributor interface {
	ReaderContributions() []ReaderContribution
}

// WriterContributor declares file writers keyed by glob patterns.
type WriterContributor interface {
	WriterContributions() []WriterContribution
}

// ActionContribution describes one action a plugin offers. It is registered
// directly into the action registry at load time.
type ActionContribution struct {
	ID       string
	Title    string
	Callback action.Callback
	Tooltip  string
	Icon     string
	Shortcut string
	// Disabled registers the action initially disabled.
	Disabled bool
}

// WidgetContribution describes a widget and where the presenter should dock
// it. The widget value is opaque to the core.
type WidgetContribution struct {
	Widget any
	Name   string
	// Area is "left", "right", "bottom", or "floating".
	Area string
}

// MenuContribution describes a menu entry. Menu is a slash-separated path
// ("File/Open"); matching it against existing menus is a presenter concern.
type MenuContribution struct {
	Menu     string
	Action   string
	Shortcut string
}

// ReaderFunc reads a file into layer data.
type ReaderFunc func(path string) (any, error)

// WriterFunc writes layer data to a file.
type WriterFunc func(path string, data any) error

// ReaderContribution describes a file reader.
type ReaderContribution struct {
	Read     ReaderFunc
	Patterns []string
	Name     string
}

// WriterContribution describes a file writer.
type WriterContribution struct {
	Write    WriterFunc
	Patterns []string
	Name     string
}
