// Package events provides the synchronous publish/subscribe bus used by every
// stateful component in the host. Handlers run inline on the publishing
// goroutine in registration order; a failing handler never prevents delivery
// to the handlers behind it.
package events

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/278261631/t-gui/internal/log"
)

// Event is a single occurrence published on a Bus. Immutable once published.
type Event struct {
	// Kind names the event, e.g. "layer_added".
	Kind string
	// Source is the component that published the event.
	Source any
	// Payload carries event-specific fields keyed by name.
	Payload map[string]any
}

// Payload is a convenience alias for event payload literals at publish sites.
type Payload = map[string]any

// Handler receives events published on a Bus.
type Handler func(Event)

// Subscription identifies a registered handler so it can be removed later.
type Subscription struct {
	id   uuid.UUID
	kind string
}

// Lifetime is an explicit liveness flag for bound subscriptions. A component
// that subscribes with a Lifetime releases it when the component goes away;
// the bus then skips and reclaims the subscription on the next publish
// instead of invoking a handler whose owner is gone.
type Lifetime struct {
	mu    sync.Mutex
	alive bool
}

// NewLifetime returns a live Lifetime.
func NewLifetime() *Lifetime {
	return &Lifetime{alive: true}
}

// Release marks the lifetime dead. Safe to call more than once.
func (l *Lifetime) Release() {
	l.mu.Lock()
	l.alive = false
	l.mu.Unlock()
}

// Alive reports whether the owner is still reachable.
func (l *Lifetime) Alive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.alive
}

type subscriber struct {
	id      uuid.UUID
	handler Handler
	owner   *Lifetime // nil for strong subscriptions
}

func (s *subscriber) dead() bool {
	return s.owner != nil && !s.owner.Alive()
}

// Bus is a per-component event bus. The zero value is not usable; construct
// with NewBus.
type Bus struct {
	mu     sync.Mutex
	source any
	subs   map[string][]*subscriber
}

// NewBus creates a bus whose published events carry source as their origin.
func NewBus(source any) *Bus {
	return &Bus{
		source: source,
		subs:   make(map[string][]*subscriber),
	}
}

// Subscribe registers a strong subscription for kind. The handler is invoked
// on every publish of that kind until Unsubscribe is called with the returned
// subscription.
func (b *Bus) Subscribe(kind string, h Handler) Subscription {
	return b.add(kind, h, nil)
}

// SubscribeBound registers a lifetime-bound subscription. Once owner is
// released the handler is never invoked again and its slot is reclaimed on
// the next publish of kind.
func (b *Bus) SubscribeBound(kind string, owner *Lifetime, h Handler) Subscription {
	return b.add(kind, h, owner)
}

func (b *Bus) add(kind string, h Handler, owner *Lifetime) Subscription {
	sub := &subscriber{id: uuid.New(), handler: h, owner: owner}
	b.mu.Lock()
	b.subs[kind] = append(b.subs[kind], sub)
	b.mu.Unlock()
	return Subscription{id: sub.id, kind: kind}
}

// Unsubscribe removes a subscription. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[sub.kind]
	for i, s := range list {
		if s.id == sub.id {
			b.subs[sub.kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Publish delivers an event to every live subscriber of kind, in registration
// order. A handler panic is recovered, logged, and delivery continues with
// the next handler. Dead bound subscriptions are reclaimed before delivery.
func (b *Bus) Publish(kind string, payload map[string]any) {
	b.mu.Lock()
	live := b.prune(kind)
	b.mu.Unlock()

	if len(live) == 0 {
		return
	}

	event := Event{Kind: kind, Source: b.source, Payload: payload}
	for _, s := range live {
		if s.dead() {
			continue
		}
		invoke(s.handler, event)
	}
}

// prune drops dead subscribers for kind and returns a snapshot of the rest.
// Caller holds b.mu.
func (b *Bus) prune(kind string) []*subscriber {
	list := b.subs[kind]
	kept := list[:0]
	for _, s := range list {
		if !s.dead() {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		delete(b.subs, kind)
		return nil
	}
	b.subs[kind] = kept
	return append([]*subscriber(nil), kept...)
}

func invoke(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatBus, "event handler panicked",
				"kind", e.Kind, "panic", fmt.Sprintf("%v", r))
		}
	}()
	h(e)
}

// Clear removes all subscriptions for the given kinds, or every subscription
// when called with no arguments.
func (b *Bus) Clear(kinds ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(kinds) == 0 {
		b.subs = make(map[string][]*subscriber)
		return
	}
	for _, kind := range kinds {
		delete(b.subs, kind)
	}
}

// SubscriberCount returns the number of subscriptions for kind, dead bound
// subscriptions included until the next publish reclaims them.
func (b *Bus) SubscriberCount(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[kind])
}
