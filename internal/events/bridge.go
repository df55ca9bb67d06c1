package events

import (
	"github.com/278261631/t-gui/internal/pubsub"
)

// BusBridge forwards synchronous bus events onto an asynchronous pubsub
// broker. Presenters running on their own goroutine (a UI thread, a remote
// observer) subscribe to the broker instead of the bus, so handler work never
// blocks the core's execution context.
type BusBridge struct {
	bus    *Bus
	broker *pubsub.Broker[Event]
	subs   []Subscription
}

// NewBusBridge subscribes a strong forwarder for each of the given kinds and
// republishes matching events on broker. Close detaches the forwarders.
func NewBusBridge(bus *Bus, broker *pubsub.Broker[Event], kinds ...string) *BusBridge {
	br := &BusBridge{bus: bus, broker: broker}
	for _, kind := range kinds {
		sub := bus.Subscribe(kind, func(e Event) {
			broker.Publish(pubsub.EventType(e.Kind), e)
		})
		br.subs = append(br.subs, sub)
	}
	return br
}

// Close removes the bridge's bus subscriptions. The broker is left open; it
// belongs to the caller.
func (b *BusBridge) Close() {
	for _, sub := range b.subs {
		b.bus.Unsubscribe(sub)
	}
	b.subs = nil
}
