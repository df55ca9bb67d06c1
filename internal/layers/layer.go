// Package layers provides the layer data model and the ordered layer
// collection owned by each viewer. A layer is a tagged variant: a shared base
// record (name, visibility, opacity, metadata) plus a kind-specific payload;
// presentation collaborators switch on the kind.
package layers

import (
	"github.com/google/uuid"
)

// Kind tags the layer variant.
type Kind int

const (
	KindImage Kind = iota
	KindPoints
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPoints:
		return "points"
	default:
		return "unknown"
	}
}

// ImageData holds the image-specific payload.
type ImageData struct {
	Colormap string
	// ContrastLimits is nil when unset, otherwise [low, high].
	ContrastLimits []float64
}

// PointsData holds the points-specific payload.
type PointsData struct {
	Size      float64
	EdgeColor string
	FaceColor string
}

// Layer is a single visual/data unit within a viewer. The id is assigned at
// construction and never changes; a layer is owned by at most one collection
// at a time.
type Layer struct {
	id       uuid.UUID
	name     string
	visible  bool
	opacity  float64
	metadata map[string]any
	data     any

	kind   Kind
	image  *ImageData
	points *PointsData
}

// Option configures a layer at construction.
type Option func(*Layer)

// WithName sets the layer name.
func WithName(name string) Option {
	return func(l *Layer) { l.name = name }
}

// WithVisible sets initial visibility.
func WithVisible(visible bool) Option {
	return func(l *Layer) { l.visible = visible }
}

// WithOpacity sets initial opacity, clamped to [0, 1].
func WithOpacity(opacity float64) Option {
	return func(l *Layer) { l.opacity = clampUnit(opacity) }
}

// WithMetadata sets a metadata entry.
func WithMetadata(key string, value any) Option {
	return func(l *Layer) { l.metadata[key] = value }
}

// WithColormap sets the colormap of an image layer. Ignored for other kinds.
func WithColormap(colormap string) Option {
	return func(l *Layer) {
		if l.image != nil {
			l.image.Colormap = colormap
		}
	}
}

// WithContrastLimits sets the contrast limits of an image layer.
func WithContrastLimits(low, high float64) Option {
	return func(l *Layer) {
		if l.image != nil {
			l.image.ContrastLimits = []float64{low, high}
		}
	}
}

// WithSize sets the marker size of a points layer. Ignored for other kinds.
func WithSize(size float64) Option {
	return func(l *Layer) {
		if l.points != nil {
			l.points.Size = size
		}
	}
}

// WithEdgeColor sets the marker edge color of a points layer.
func WithEdgeColor(color string) Option {
	return func(l *Layer) {
		if l.points != nil {
			l.points.EdgeColor = color
		}
	}
}

// WithFaceColor sets the marker face color of a points layer.
func WithFaceColor(color string) Option {
	return func(l *Layer) {
		if l.points != nil {
			l.points.FaceColor = color
		}
	}
}

func newLayer(kind Kind, data any) *Layer {
	return &Layer{
		id:       uuid.New(),
		name:     "Layer",
		visible:  true,
		opacity:  1.0,
		metadata: make(map[string]any),
		data:     data,
		kind:     kind,
	}
}

// NewImage creates an image layer around data.
func NewImage(data any, opts ...Option) *Layer {
	l := newLayer(KindImage, data)
	l.image = &ImageData{Colormap: "gray"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewPoints creates a points layer around data.
func NewPoints(data any, opts ...Option) *Layer {
	l := newLayer(KindPoints, data)
	l.points = &PointsData{Size: 10, EdgeColor: "black", FaceColor: "white"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ID returns the layer's immutable identifier.
func (l *Layer) ID() uuid.UUID { return l.id }

// Name returns the layer name.
func (l *Layer) Name() string { return l.name }

// SetName renames the layer.
func (l *Layer) SetName(name string) { l.name = name }

// Visible reports layer visibility.
func (l *Layer) Visible() bool { return l.visible }

// SetVisible sets layer visibility.
func (l *Layer) SetVisible(visible bool) { l.visible = visible }

// Opacity returns the layer opacity in [0, 1].
func (l *Layer) Opacity() float64 { return l.opacity }

// SetOpacity sets the layer opacity, clamped to [0, 1].
func (l *Layer) SetOpacity(opacity float64) { l.opacity = clampUnit(opacity) }

// Kind returns the variant tag.
func (l *Layer) Kind() Kind { return l.kind }

// Data returns the layer's underlying data.
func (l *Layer) Data() any { return l.data }

// Image returns the image payload, or nil for non-image layers.
func (l *Layer) Image() *ImageData { return l.image }

// Points returns the points payload, or nil for non-points layers.
func (l *Layer) Points() *PointsData { return l.points }

// Metadata returns the metadata value for key.
func (l *Layer) Metadata(key string) (any, bool) {
	v, ok := l.metadata[key]
	return v, ok
}

// SetMetadata stores a metadata value.
func (l *Layer) SetMetadata(key string, value any) {
	l.metadata[key] = value
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
