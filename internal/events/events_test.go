package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus(t *testing.T) {
	t.Run("delivers to matching subscribers", func(t *testing.T) {
		bus := NewBus()
		var got []Event
		bus.Subscribe(EventBookingCreated, func(e Event) { got = append(got, e) })
		bus.Subscribe(EventBookingDeleted, func(e Event) { t.Error("wrong subscriber called") })

		err := bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: "b1", Date: "2026-09-02"})
		require.NoError(t, err)
		require.Len(t, got, 1)

		var payload BookingEventPayload
		require.NoError(t, json.Unmarshal(got[0].Payload, &payload))
		assert.Equal(t, "b1", payload.BookingID)
		assert.False(t, got[0].CreatedAt.IsZero())
	})

	t.Run("multiple handlers all fire", func(t *testing.T) {
		bus := NewBus()
		calls := 0
		bus.Subscribe(EventPlayerJoined, func(Event) { calls++ })
		bus.Subscribe(EventPlayerJoined, func(Event) { calls++ })

		bus.Publish(Event{Type: EventPlayerJoined})
		assert.Equal(t, 2, calls)
	})

	t.Run("publish without subscribers is safe", func(t *testing.T) {
		bus := NewBus()
		assert.NoError(t, bus.PublishJSON(EventPricingUpdated, map[string]string{"60": "20"}))
	})

	t.Run("nil bus is safe", func(t *testing.T) {
		var bus *Bus
		assert.NoError(t, bus.PublishJSON(EventBookingCreated, nil))
	})

	t.Run("unmarshalable payload errors", func(t *testing.T) {
		bus := NewBus()
		assert.Error(t, bus.PublishJSON(EventBookingCreated, make(chan int)))
	})
}
