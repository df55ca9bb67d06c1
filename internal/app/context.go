// Package app provides the application context: the process-wide registry of
// open viewers, the active-viewer pointer, and a generic key/value blackboard
// shared across components. There is intentionally no package-level instance;
// the host constructs one context at startup and passes it down, which keeps
// tests free to run many independent contexts.
package app

import (
	"sync"

	"github.com/278261631/t-gui/internal/events"
	"github.com/278261631/t-gui/internal/log"
)

// Events published on the context bus.
const (
	EventViewerAdded         = "viewer_added"
	EventViewerRemoved       = "viewer_removed"
	EventActiveViewerChanged = "active_viewer_changed"
	EventContextChanged      = "context_changed"
	EventContextRemoved      = "context_removed"
	EventContextCleared      = "context_cleared"
)

// Viewer is the surface the context needs from a registered viewer. The
// concrete type lives in internal/viewer; the indirection keeps the
// dependency arrow pointing from viewer to app.
type Viewer interface {
	Title() string
}

// Context holds application-wide state and emits lifecycle events.
type Context struct {
	mu      sync.Mutex
	bus     *events.Bus
	data    map[string]any
	viewers []Viewer
	active  Viewer
}

// NewContext creates an empty application context.
func NewContext() *Context {
	c := &Context{
		data: make(map[string]any),
	}
	c.bus = events.NewBus(c)
	return c
}

// Events returns the context's event bus.
func (c *Context) Events() *events.Bus {
	return c.bus
}

// Set stores a blackboard value and emits context_changed with the previous
// value so consumers can audit or undo.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	old := c.data[key]
	c.data[key] = value
	c.mu.Unlock()

	c.bus.Publish(EventContextChanged, events.Payload{
		"key": key, "value": value, "old_value": old,
	})
}

// Get returns the blackboard value for key.
func (c *Context) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

// GetDefault returns the blackboard value for key, or def when absent.
func (c *Context) GetDefault(key string, def any) any {
	if v, ok := c.Get(key); ok {
		return v
	}
	return def
}

// Has reports whether key exists on the blackboard.
func (c *Context) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Remove deletes a blackboard value, returning the removed value. Removing
// an absent key is a no-op with no event.
func (c *Context) Remove(key string) any {
	c.mu.Lock()
	old, ok := c.data[key]
	if ok {
		delete(c.data, key)
	}
	c.mu.Unlock()

	if !ok {
		return nil
	}
	c.bus.Publish(EventContextRemoved, events.Payload{
		"key": key, "value": old,
	})
	return old
}

// Clear drops all blackboard data and emits context_cleared with the old
// contents. Viewers are unaffected.
func (c *Context) Clear() {
	c.mu.Lock()
	old := c.data
	c.data = make(map[string]any)
	c.mu.Unlock()

	c.bus.Publish(EventContextCleared, events.Payload{"old_data": old})
}

// AddViewer registers a viewer. Adding an already-present viewer is a no-op.
// The first viewer added becomes active without an active_viewer_changed
// event; only viewer_added is emitted.
func (c *Context) AddViewer(v Viewer) {
	c.mu.Lock()
	for _, existing := range c.viewers {
		if existing == v {
			c.mu.Unlock()
			return
		}
	}
	c.viewers = append(c.viewers, v)
	if c.active == nil {
		c.active = v
	}
	c.mu.Unlock()

	log.Debug(log.CatApp, "viewer added", "title", v.Title())
	c.bus.Publish(EventViewerAdded, events.Payload{"viewer": v})
}

// RemoveViewer unregisters a viewer. If it was active, the first remaining
// viewer in insertion order becomes active (or none). viewer_removed is
// emitted first, then active_viewer_changed if the active viewer changed.
func (c *Context) RemoveViewer(v Viewer) {
	c.mu.Lock()
	idx := -1
	for i, existing := range c.viewers {
		if existing == v {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	c.viewers = append(c.viewers[:idx:idx], c.viewers[idx+1:]...)

	activeChanged := false
	var newActive Viewer
	if c.active == v {
		if len(c.viewers) > 0 {
			newActive = c.viewers[0]
		}
		c.active = newActive
		activeChanged = true
	}
	c.mu.Unlock()

	log.Debug(log.CatApp, "viewer removed", "title", v.Title())
	c.bus.Publish(EventViewerRemoved, events.Payload{"viewer": v})
	if activeChanged {
		c.bus.Publish(EventActiveViewerChanged, events.Payload{
			"viewer": newActive, "old_viewer": v,
		})
	}
}

// Viewers returns the open viewers in insertion order.
func (c *Context) Viewers() []Viewer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Viewer(nil), c.viewers...)
}

// ActiveViewer returns the active viewer, or nil when none is open.
func (c *Context) ActiveViewer() Viewer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SetActiveViewer makes v the active viewer. Setting a viewer that is not
// registered is rejected with no event, as is re-activating the current one.
func (c *Context) SetActiveViewer(v Viewer) {
	c.mu.Lock()
	member := false
	for _, existing := range c.viewers {
		if existing == v {
			member = true
			break
		}
	}
	if !member || c.active == v {
		c.mu.Unlock()
		return
	}
	old := c.active
	c.active = v
	c.mu.Unlock()

	c.bus.Publish(EventActiveViewerChanged, events.Payload{
		"viewer": v, "old_viewer": old,
	})
}
