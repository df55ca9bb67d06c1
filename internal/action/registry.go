// Package action provides the action registry: stable identifiers mapped to
// executable commands with metadata, so menus, shortcuts, and plugins can
// trigger behavior without holding references to each other.
package action

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/278261631/t-gui/internal/app"
	"github.com/278261631/t-gui/internal/events"
	"github.com/278261631/t-gui/internal/log"
)

// Events published on the application context bus.
const (
	EventActionRegistered     = "action_registered"
	EventActionUnregistered   = "action_unregistered"
	EventActionExecuted       = "action_executed"
	EventActionError          = "action_error"
	EventActionEnabledChanged = "action_enabled_changed"
)

const tracerName = "t-gui/action"

// Callback is the function executed when an action is triggered. Callbacks
// are opaque to the registry; they are supplied by callers and plugins.
type Callback func(args ...any) error

// Action is a registered command with display metadata.
type Action struct {
	ID       string
	Title    string
	Callback Callback
	Tooltip  string
	Icon     string
	Shortcut string
	Enabled  bool
}

// Registry owns all registered actions and mediates their execution. Events
// are emitted on the application context bus, matching where consumers
// already listen for lifecycle events.
type Registry struct {
	mu      sync.Mutex
	bus     *events.Bus
	actions map[string]*Action
	order   []string
	tracer  trace.Tracer
}

// NewRegistry creates a registry emitting on ctx's bus.
func NewRegistry(ctx *app.Context) *Registry {
	return &Registry{
		bus:     ctx.Events(),
		actions: make(map[string]*Action),
		tracer:  otel.Tracer(tracerName),
	}
}

// Register adds an action. An existing action with the same id is overwritten
// (last writer wins) and keeps its position in listing order.
func (r *Registry) Register(a Action) {
	r.mu.Lock()
	if _, exists := r.actions[a.ID]; !exists {
		r.order = append(r.order, a.ID)
	}
	stored := a
	r.actions[a.ID] = &stored
	r.mu.Unlock()

	log.Debug(log.CatAction, "action registered", "id", a.ID)
	r.bus.Publish(EventActionRegistered, events.Payload{"action": a})
}

// Unregister removes an action by id. Unknown ids are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	a, ok := r.actions[id]
	if ok {
		delete(r.actions, id)
		for i, existing := range r.order {
			if existing == id {
				r.order = append(r.order[:i:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	r.bus.Publish(EventActionUnregistered, events.Payload{"action": *a})
}

// Get returns a copy of the action registered under id.
func (r *Registry) Get(id string) (Action, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actions[id]
	if !ok {
		return Action{}, false
	}
	return *a, true
}

// All returns every registered action in registration order.
func (r *Registry) All() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.actions[id])
	}
	return out
}

// SetEnabled enables or disables an action and emits action_enabled_changed.
// Unknown ids are ignored.
func (r *Registry) SetEnabled(id string, enabled bool) {
	r.mu.Lock()
	a, ok := r.actions[id]
	if ok {
		a.Enabled = enabled
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	r.bus.Publish(EventActionEnabledChanged, events.Payload{
		"action": *a, "enabled": enabled,
	})
}

// Execute runs the callback registered under id. An unknown or disabled id
// is a silent no-op. A callback failure (returned error or recovered panic)
// emits action_error and is returned to the caller; the caller initiated the
// command and needs to know it did not complete.
func (r *Registry) Execute(id string, args ...any) error {
	r.mu.Lock()
	a, ok := r.actions[id]
	if !ok || !a.Enabled {
		r.mu.Unlock()
		log.Debug(log.CatAction, "execute skipped", "id", id, "known", ok)
		return nil
	}
	snapshot := *a
	r.mu.Unlock()

	_, span := r.tracer.Start(context.Background(), "action.execute",
		trace.WithAttributes(attribute.String("action.id", id)))
	defer span.End()

	err := runCallback(snapshot.Callback, args...)
	if err != nil {
		span.RecordError(err)
		log.ErrorErr(log.CatAction, "action failed", err, "id", id)
		r.bus.Publish(EventActionError, events.Payload{
			"action": snapshot, "error": err,
		})
		return fmt.Errorf("action %s: %w", id, err)
	}

	r.bus.Publish(EventActionExecuted, events.Payload{"action": snapshot})
	return nil
}

// runCallback invokes cb, converting a panic into an error so a misbehaving
// callback cannot unwind through the registry.
func runCallback(cb Callback, args ...any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panicked: %v", r)
		}
	}()
	if cb == nil {
		return nil
	}
	return cb(args...)
}
