package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/278261631/t-gui/internal/pubsub"
)

func TestBusBridge_ForwardsMatchingKinds(t *testing.T) {
	bus := NewBus("test")
	broker := pubsub.NewBroker[Event]()
	defer broker.Close()

	bridge := NewBusBridge(bus, broker, "layer_added")
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := broker.Subscribe(ctx)

	bus.Publish("layer_added", Payload{"name": "L1"})
	bus.Publish("layer_removed", nil)

	select {
	case e := <-ch:
		require.Equal(t, pubsub.EventType("layer_added"), e.Type)
		assert.Equal(t, "L1", e.Payload.Payload["name"])
	case <-time.After(time.Second):
		t.Fatal("expected forwarded event")
	}

	select {
	case e := <-ch:
		t.Fatalf("unexpected forwarded event %s", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusBridge_CloseStopsForwarding(t *testing.T) {
	bus := NewBus("test")
	broker := pubsub.NewBroker[Event]()
	defer broker.Close()

	bridge := NewBusBridge(bus, broker, "ping")
	require.Equal(t, 1, bus.SubscriberCount("ping"))

	bridge.Close()
	assert.Equal(t, 0, bus.SubscriberCount("ping"))
}
