package audit

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type memoryWriter struct {
	mu     sync.Mutex
	events []Event
}

func (w *memoryWriter) Write(_ context.Context, ev Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, ev)
	return nil
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	w := &memoryWriter{}
	d := NewDispatcher(w, zap.NewNop())

	d.Dispatch(Event{ClubID: 1, Action: "booking_created", EntityID: Uint(10)})
	d.Dispatch(Event{ClubID: 1, Action: "booking_confirmed", EntityID: Uint(10)})
	d.Close()

	assert.Len(t, w.events, 2)
	assert.Equal(t, "booking_created", w.events[0].Action)
	assert.Equal(t, "booking_confirmed", w.events[1].Action)
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() {
		d.Dispatch(Event{Action: "x"})
		d.Close()
	})
}

func TestEventModelEncodesMetadata(t *testing.T) {
	m := Event{
		ClubID:   3,
		Action:   "hold_captured",
		Entity:   "booking",
		Metadata: map[string]string{"hold_ref": "123"},
	}.Model()

	assert.Equal(t, uint(3), m.ClubID)
	assert.JSONEq(t, `{"hold_ref":"123"}`, m.Metadata)
}
