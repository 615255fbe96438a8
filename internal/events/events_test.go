package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()

	var created, cancelled []Event
	bus.Subscribe(BookingCreated, func(e Event) error {
		created = append(created, e)
		return nil
	})
	bus.Subscribe(BookingCreated, func(e Event) error {
		created = append(created, e)
		return nil
	})
	bus.Subscribe(BookingCancelled, func(e Event) error {
		cancelled = append(cancelled, e)
		return nil
	})

	bus.Publish(Event{Type: BookingCreated, BookingID: "b1"})

	assert.Len(t, created, 2)
	assert.Empty(t, cancelled)
	assert.Equal(t, "b1", created[0].BookingID)
	assert.False(t, created[0].At.IsZero())
}

func TestBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	var reached bool
	bus.Subscribe(BookingCompleted, func(Event) error { return errors.New("boom") })
	bus.Subscribe(BookingCompleted, func(Event) error {
		reached = true
		return nil
	})

	bus.Publish(Event{Type: BookingCompleted, BookingID: "b1"})
	assert.True(t, reached)
}

func TestBusNoSubscribers(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() {
		bus.Publish(Event{Type: BookingCreated})
	})
}
