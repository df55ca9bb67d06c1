// Package pubsub provides a generic asynchronous publish/subscribe broker.
// It is the channel-based edge of the host: the synchronous core bus is
// bridged onto a broker when events must cross goroutines (log streaming,
// external presenters).
package pubsub

import (
	"context"
	"time"
)

// EventType names the type of event being published.
type EventType string

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
