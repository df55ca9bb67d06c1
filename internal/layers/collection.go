package layers

import (
	"github.com/278261631/t-gui/internal/events"
	"github.com/278261631/t-gui/internal/log"
)

// Events published on the collection's bus.
const (
	EventLayerAdded             = "layer_added"
	EventLayerRemoved           = "layer_removed"
	EventLayerMoved             = "layer_moved"
	EventSelectionChanged       = "selection_changed"
	EventActiveLayerChanged     = "active_layer_changed"
	EventLayerVisibilityChanged = "layer_visibility_changed"
	EventLayerOpacityChanged    = "layer_opacity_changed"
)

// Collection is the ordered, ownership-holding layer stack of a viewer.
// Order is paint order: index 0 is painted first, the last layer on top.
// At most one layer is active; the active layer is always a member. A subset
// of members can additionally be selected.
type Collection struct {
	bus       *events.Bus
	layers    []*Layer
	active    *Layer
	selection []*Layer
}

// NewCollection creates a collection emitting on bus. Pass the owning
// viewer's bus so collection and viewer events share one subscription point;
// a nil bus gets the collection its own.
func NewCollection(bus *events.Bus) *Collection {
	c := &Collection{}
	if bus == nil {
		bus = events.NewBus(c)
	}
	c.bus = bus
	return c
}

// Events returns the bus this collection publishes on.
func (c *Collection) Events() *events.Bus {
	return c.bus
}

// Len returns the number of layers.
func (c *Collection) Len() int {
	return len(c.layers)
}

// Layers returns the layers in paint order.
func (c *Collection) Layers() []*Layer {
	return append([]*Layer(nil), c.layers...)
}

// IndexOf returns the index of l, or -1 if l is not a member.
func (c *Collection) IndexOf(l *Layer) int {
	for i, existing := range c.layers {
		if existing == l {
			return i
		}
	}
	return -1
}

// ByName returns the first layer with the given name, or nil.
func (c *Collection) ByName(name string) *Layer {
	for _, l := range c.layers {
		if l.Name() == name {
			return l
		}
	}
	return nil
}

// Active returns the active layer, or nil.
func (c *Collection) Active() *Layer {
	return c.active
}

// SetActive makes l the active layer. l must be nil or a member; setting a
// non-member is a no-op. Emits active_layer_changed.
func (c *Collection) SetActive(l *Layer) {
	if l != nil && c.IndexOf(l) < 0 {
		return
	}
	old := c.active
	c.active = l
	c.bus.Publish(EventActiveLayerChanged, events.Payload{
		"layer": l, "old_layer": old,
	})
}

// Add appends l at the end of the paint order (on top). The layer becomes
// active when makeActive is set or no layer is active yet. Emits layer_added.
func (c *Collection) Add(l *Layer, makeActive bool) *Layer {
	c.layers = append(c.layers, l)

	if makeActive || c.active == nil {
		c.SetActive(l)
	}

	log.Debug(log.CatLayer, "layer added", "name", l.Name(), "kind", l.Kind())
	c.bus.Publish(EventLayerAdded, events.Payload{"layer": l})
	return l
}

// Remove takes l out of the collection. If l was active, the new last layer
// becomes active (or none). If l was selected it is dropped from the
// selection. Emits layer_removed; removing a non-member is a no-op.
func (c *Collection) Remove(l *Layer) {
	idx := c.IndexOf(l)
	if idx < 0 {
		return
	}
	c.layers = append(c.layers[:idx:idx], c.layers[idx+1:]...)

	for i, sel := range c.selection {
		if sel == l {
			c.selection = append(c.selection[:i:i], c.selection[i+1:]...)
			break
		}
	}

	if c.active == l {
		var next *Layer
		if len(c.layers) > 0 {
			next = c.layers[len(c.layers)-1]
		}
		c.SetActive(next)
	}

	c.bus.Publish(EventLayerRemoved, events.Payload{"layer": l})
}

// MoveTo reorders l to index, clamped to the valid range. Emits layer_moved
// with the resulting index. Moving a non-member is a no-op.
func (c *Collection) MoveTo(l *Layer, index int) {
	cur := c.IndexOf(l)
	if cur < 0 {
		return
	}

	if index < 0 {
		index = 0
	}
	if index > len(c.layers)-1 {
		index = len(c.layers) - 1
	}

	c.layers = append(c.layers[:cur:cur], c.layers[cur+1:]...)
	c.layers = append(c.layers[:index:index], append([]*Layer{l}, c.layers[index:]...)...)

	c.bus.Publish(EventLayerMoved, events.Payload{"layer": l, "index": index})
}

// MoveUp moves l one position toward the bottom of the paint order.
func (c *Collection) MoveUp(l *Layer) {
	if idx := c.IndexOf(l); idx > 0 {
		c.MoveTo(l, idx-1)
	}
}

// MoveDown moves l one position toward the top of the paint order.
func (c *Collection) MoveDown(l *Layer) {
	if idx := c.IndexOf(l); idx >= 0 && idx < len(c.layers)-1 {
		c.MoveTo(l, idx+1)
	}
}

// Selection returns the selected layers in selection order.
func (c *Collection) Selection() []*Layer {
	return append([]*Layer(nil), c.selection...)
}

// IsSelected reports whether l is selected.
func (c *Collection) IsSelected(l *Layer) bool {
	for _, sel := range c.selection {
		if sel == l {
			return true
		}
	}
	return false
}

// Select adds l to the selection, replacing it unless extend is set.
// Selecting a non-member layer is a complete no-op. Emits selection_changed.
func (c *Collection) Select(l *Layer, extend bool) {
	if c.IndexOf(l) < 0 {
		return
	}
	if !extend {
		c.selection = c.selection[:0]
	}
	if !c.IsSelected(l) {
		c.selection = append(c.selection, l)
	}
	c.emitSelection()
}

// Deselect removes l from the selection; a no-op if l is not selected.
func (c *Collection) Deselect(l *Layer) {
	for i, sel := range c.selection {
		if sel == l {
			c.selection = append(c.selection[:i:i], c.selection[i+1:]...)
			c.emitSelection()
			return
		}
	}
}

// ClearSelection empties the selection. No event when already empty.
func (c *Collection) ClearSelection() {
	if len(c.selection) == 0 {
		return
	}
	c.selection = c.selection[:0]
	c.emitSelection()
}

// SelectAll selects every layer in paint order.
func (c *Collection) SelectAll() {
	c.selection = append(c.selection[:0], c.layers...)
	c.emitSelection()
}

// RemoveSelected removes every selected layer.
func (c *Collection) RemoveSelected() {
	for _, l := range c.Selection() {
		c.Remove(l)
	}
}

// Clear removes all layers, one at a time so the usual removal events fire.
func (c *Collection) Clear() {
	for _, l := range c.Layers() {
		c.Remove(l)
	}
}

// ToggleVisible flips l's visibility and emits layer_visibility_changed.
func (c *Collection) ToggleVisible(l *Layer) {
	l.SetVisible(!l.Visible())
	c.bus.Publish(EventLayerVisibilityChanged, events.Payload{
		"layer": l, "visible": l.Visible(),
	})
}

// SetOpacity sets l's opacity (clamped) and emits layer_opacity_changed.
func (c *Collection) SetOpacity(l *Layer, opacity float64) {
	l.SetOpacity(opacity)
	c.bus.Publish(EventLayerOpacityChanged, events.Payload{
		"layer": l, "opacity": l.Opacity(),
	})
}

func (c *Collection) emitSelection() {
	c.bus.Publish(EventSelectionChanged, events.Payload{
		"selection": c.Selection(),
	})
}
