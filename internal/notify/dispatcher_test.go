package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

type recorder struct {
	mu   sync.Mutex
	got  []Event
	fail bool
}

func (r *recorder) Notify(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, ev)
	if r.fail {
		return errors.New("broker down")
	}
	return nil
}

func TestDispatcherDelivers(t *testing.T) {
	r := &recorder{}
	d := NewDispatcher(r, zap.NewNop())

	b := &models.Booking{
		ID:         4,
		LessonDate: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Status:     "confirmed",
	}
	d.Send(FromBooking(BookingConfirmed, b, time.Now()))
	d.Close()

	require.Len(t, r.got, 1)
	assert.Equal(t, BookingConfirmed, r.got[0].Kind)
	assert.Equal(t, "2026-10-19", r.got[0].LessonDate)
}

func TestDispatcherSurvivesNotifierErrors(t *testing.T) {
	r := &recorder{fail: true}
	d := NewDispatcher(r, zap.NewNop())

	d.Send(Event{Kind: BookingRejected, BookingID: 1})
	d.Send(Event{Kind: BookingRejected, BookingID: 2})
	d.Close()

	assert.Len(t, r.got, 2)
}
