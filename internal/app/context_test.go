package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/278261631/t-gui/internal/events"
)

type fakeViewer struct {
	title string
}

func (f *fakeViewer) Title() string { return f.title }

func recordEvents(c *Context, kinds ...string) *[]events.Event {
	var seen []events.Event
	for _, kind := range kinds {
		c.Events().Subscribe(kind, func(e events.Event) {
			seen = append(seen, e)
		})
	}
	return &seen
}

func TestContext_SetGet(t *testing.T) {
	c := NewContext()

	c.Set("theme", "dark")

	v, ok := c.Get("theme")
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, "fallback", c.GetDefault("missing", "fallback"))
	assert.True(t, c.Has("theme"))
}

func TestContext_SetEmitsOldValue(t *testing.T) {
	c := NewContext()
	seen := recordEvents(c, EventContextChanged)

	c.Set("count", 1)
	c.Set("count", 2)

	require.Len(t, *seen, 2)
	first := (*seen)[0].Payload
	assert.Equal(t, "count", first["key"])
	assert.Equal(t, 1, first["value"])
	assert.Nil(t, first["old_value"])

	second := (*seen)[1].Payload
	assert.Equal(t, 2, second["value"])
	assert.Equal(t, 1, second["old_value"])
}

func TestContext_RemoveAbsentKeyIsSilent(t *testing.T) {
	c := NewContext()
	seen := recordEvents(c, EventContextRemoved)

	assert.Nil(t, c.Remove("missing"))
	assert.Empty(t, *seen)

	c.Set("k", "v")
	removed := c.Remove("k")
	assert.Equal(t, "v", removed)
	require.Len(t, *seen, 1)
	assert.Equal(t, "k", (*seen)[0].Payload["key"])
}

func TestContext_ClearKeepsViewers(t *testing.T) {
	c := NewContext()
	v := &fakeViewer{title: "A"}
	c.AddViewer(v)
	c.Set("k", "v")

	seen := recordEvents(c, EventContextCleared)
	c.Clear()

	assert.False(t, c.Has("k"))
	assert.Len(t, c.Viewers(), 1)
	require.Len(t, *seen, 1)
	old := (*seen)[0].Payload["old_data"].(map[string]any)
	assert.Equal(t, "v", old["k"])
}

func TestContext_FirstViewerBecomesActiveSilently(t *testing.T) {
	c := NewContext()
	seen := recordEvents(c, EventViewerAdded, EventActiveViewerChanged)

	a := &fakeViewer{title: "A"}
	c.AddViewer(a)

	assert.Same(t, a, c.ActiveViewer())
	require.Len(t, *seen, 1)
	assert.Equal(t, EventViewerAdded, (*seen)[0].Kind)
}

func TestContext_AddViewerIdempotent(t *testing.T) {
	c := NewContext()
	a := &fakeViewer{title: "A"}

	c.AddViewer(a)
	seen := recordEvents(c, EventViewerAdded)
	c.AddViewer(a)

	assert.Len(t, c.Viewers(), 1)
	assert.Empty(t, *seen)
}

func TestContext_RemoveActiveViewerPromotesAndOrdersEvents(t *testing.T) {
	c := NewContext()
	a := &fakeViewer{title: "A"}
	b := &fakeViewer{title: "B"}

	var kinds []string
	for _, kind := range []string{EventViewerAdded, EventViewerRemoved, EventActiveViewerChanged} {
		c.Events().Subscribe(kind, func(e events.Event) { kinds = append(kinds, e.Kind) })
	}

	c.AddViewer(a)
	c.AddViewer(b)
	require.Same(t, a, c.ActiveViewer())

	c.RemoveViewer(a)

	assert.Same(t, b, c.ActiveViewer())
	assert.Equal(t, []string{
		EventViewerAdded,
		EventViewerAdded,
		EventViewerRemoved,
		EventActiveViewerChanged,
	}, kinds)
}

func TestContext_ActiveViewerChangedPayload(t *testing.T) {
	c := NewContext()
	a := &fakeViewer{title: "A"}
	b := &fakeViewer{title: "B"}
	c.AddViewer(a)
	c.AddViewer(b)

	var payload map[string]any
	c.Events().Subscribe(EventActiveViewerChanged, func(e events.Event) { payload = e.Payload })

	c.RemoveViewer(a)

	require.NotNil(t, payload)
	assert.Same(t, b, payload["viewer"])
	assert.Same(t, a, payload["old_viewer"])
}

func TestContext_RemoveLastViewerLeavesNoActive(t *testing.T) {
	c := NewContext()
	a := &fakeViewer{title: "A"}
	c.AddViewer(a)

	c.RemoveViewer(a)

	assert.Nil(t, c.ActiveViewer())
	assert.Empty(t, c.Viewers())
}

func TestContext_RemoveInactiveViewerKeepsActive(t *testing.T) {
	c := NewContext()
	a := &fakeViewer{title: "A"}
	b := &fakeViewer{title: "B"}
	c.AddViewer(a)
	c.AddViewer(b)

	seen := recordEvents(c, EventActiveViewerChanged)
	c.RemoveViewer(b)

	assert.Same(t, a, c.ActiveViewer())
	assert.Empty(t, *seen)
}

func TestContext_SetActiveViewerRejectsNonMember(t *testing.T) {
	c := NewContext()
	a := &fakeViewer{title: "A"}
	c.AddViewer(a)

	seen := recordEvents(c, EventActiveViewerChanged)

	c.SetActiveViewer(&fakeViewer{title: "stranger"})
	assert.Same(t, a, c.ActiveViewer())
	assert.Empty(t, *seen)

	// Re-activating the current viewer is also silent.
	c.SetActiveViewer(a)
	assert.Empty(t, *seen)
}

func TestContext_SetActiveViewer(t *testing.T) {
	c := NewContext()
	a := &fakeViewer{title: "A"}
	b := &fakeViewer{title: "B"}
	c.AddViewer(a)
	c.AddViewer(b)

	var payload map[string]any
	c.Events().Subscribe(EventActiveViewerChanged, func(e events.Event) { payload = e.Payload })

	c.SetActiveViewer(b)

	assert.Same(t, b, c.ActiveViewer())
	require.NotNil(t, payload)
	assert.Same(t, b, payload["viewer"])
	assert.Same(t, a, payload["old_viewer"])
}
