// Package viewer provides the viewer component: a titled container owning one
// layer collection. A viewer registers itself with the application context on
// construction and unregisters on Close.
package viewer

import (
	"github.com/278261631/t-gui/internal/app"
	"github.com/278261631/t-gui/internal/events"
	"github.com/278261631/t-gui/internal/layers"
	"github.com/278261631/t-gui/internal/log"
)

// EventViewerClosed is published on the viewer's bus when it closes.
const EventViewerClosed = "viewer_closed"

// DefaultTitle is used when no title option is given.
const DefaultTitle = "T-GUI Viewer"

// Viewer owns a layer collection and an event bus shared with it.
type Viewer struct {
	bus    *events.Bus
	title  string
	layers *layers.Collection
	appctx *app.Context
	closed bool
}

// Option configures a viewer at construction.
type Option func(*Viewer)

// WithTitle sets the viewer title.
func WithTitle(title string) Option {
	return func(v *Viewer) { v.title = title }
}

// New creates a viewer and registers it with ctx. If it is the first viewer,
// it becomes the context's active viewer.
func New(ctx *app.Context, opts ...Option) *Viewer {
	v := &Viewer{
		title:  DefaultTitle,
		appctx: ctx,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.bus = events.NewBus(v)
	v.layers = layers.NewCollection(v.bus)

	ctx.AddViewer(v)
	log.Debug(log.CatViewer, "viewer created", "title", v.title)
	return v
}

// Title returns the viewer title.
func (v *Viewer) Title() string {
	return v.title
}

// Events returns the bus shared by the viewer and its layer collection.
func (v *Viewer) Events() *events.Bus {
	return v.bus
}

// Layers returns the viewer's layer collection.
func (v *Viewer) Layers() *layers.Collection {
	return v.layers
}

// AddLayer adds a prebuilt layer to the collection.
func (v *Viewer) AddLayer(l *layers.Layer, makeActive bool) *layers.Layer {
	return v.layers.Add(l, makeActive)
}

// AddImage builds an image layer from data and adds it as the active layer.
func (v *Viewer) AddImage(data any, opts ...layers.Option) *layers.Layer {
	return v.layers.Add(layers.NewImage(data, opts...), true)
}

// AddPoints builds a points layer from data and adds it as the active layer.
func (v *Viewer) AddPoints(data any, opts ...layers.Option) *layers.Layer {
	return v.layers.Add(layers.NewPoints(data, opts...), true)
}

// RemoveLayer removes a layer from the collection.
func (v *Viewer) RemoveLayer(l *layers.Layer) {
	v.layers.Remove(l)
}

// ClearLayers removes all layers.
func (v *Viewer) ClearLayers() {
	v.layers.Clear()
}

// LayerByName returns the first layer with the given name, or nil.
func (v *Viewer) LayerByName(name string) *layers.Layer {
	return v.layers.ByName(name)
}

// Close unregisters the viewer from the application context and emits
// viewer_closed. Closing a viewer that is not active leaves the context's
// active viewer untouched. Close is idempotent.
func (v *Viewer) Close() {
	if v.closed {
		return
	}
	v.closed = true

	v.appctx.RemoveViewer(v)
	log.Debug(log.CatViewer, "viewer closed", "title", v.title)
	v.bus.Publish(EventViewerClosed, nil)
}
