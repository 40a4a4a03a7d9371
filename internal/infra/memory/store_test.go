package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

var lessonDay = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func pending(start, end int, deadline time.Time) *models.Booking {
	return &models.Booking{
		ClubID:       1,
		TrainerID:    1,
		LessonDate:   lessonDay,
		StartMin:     start,
		EndMin:       end,
		DurationMin:  end - start,
		Status:       string(booking.StatusPending),
		AutoCancelAt: &deadline,
	}
}

func TestConcurrentCreateYieldsExactlyOneWinner(t *testing.T) {
	s := New()
	ctx := context.Background()
	deadline := time.Now().Add(time.Hour)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.CreateBooking(ctx, pending(540, 600, deadline))
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))
		conflicts++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}

func TestOverlapIsCheckedAgainstActiveBookingsOnly(t *testing.T) {
	s := New()
	ctx := context.Background()
	deadline := time.Now().Add(time.Hour)

	first := pending(540, 630, deadline)
	require.NoError(t, s.CreateBooking(ctx, first))

	// 10:00–11:00 cruza 09:00–10:30
	err := s.CreateBooking(ctx, pending(600, 660, deadline))
	assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))

	// adjacente
	require.NoError(t, s.CreateBooking(ctx, pending(630, 690, deadline)))

	_, ok, err := s.TransitionStatus(ctx, first.ID, booking.Transition{To: booking.StatusRejected, At: time.Now()})
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.CreateBooking(ctx, pending(540, 600, deadline)))
}

func TestTransitionOnTerminalReturnsCurrent(t *testing.T) {
	s := New()
	ctx := context.Background()
	b := pending(540, 600, time.Now().Add(time.Hour))
	require.NoError(t, s.CreateBooking(ctx, b))

	_, ok, err := s.TransitionStatus(ctx, b.ID, booking.Transition{To: booking.StatusConfirmed, At: time.Now()})
	require.NoError(t, err)
	require.True(t, ok)

	cur, ok, err := s.TransitionStatus(ctx, b.ID, booking.Transition{To: booking.StatusCancelled, At: time.Now()})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, string(booking.StatusConfirmed), cur.Status)
}

func TestExpireDueIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	due := pending(540, 600, now.Add(-time.Minute))
	later := pending(600, 660, now.Add(time.Hour))
	require.NoError(t, s.CreateBooking(ctx, due))
	require.NoError(t, s.CreateBooking(ctx, later))

	expired, err := s.ExpireDue(ctx, now, 100)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, due.ID, expired[0].ID)
	assert.Equal(t, string(booking.StatusExpired), expired[0].Status)
	assert.Nil(t, expired[0].AutoCancelAt)
	assert.Equal(t, booking.ReasonTimeout, expired[0].Reason)

	again, err := s.ExpireDue(ctx, now, 100)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestAdvanceHoldIsForwardOnly(t *testing.T) {
	s := New()
	ctx := context.Background()
	b := pending(540, 600, time.Now().Add(time.Hour))
	b.HoldStatus = string(booking.HoldAuthorizing)
	require.NoError(t, s.CreateBooking(ctx, b))

	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	ref := "mp-1"
	ok, err := s.AdvanceHold(ctx, b.ID, booking.HoldUpdate{To: booking.HoldHeld, Ref: &ref, At: at})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AdvanceHold(ctx, b.ID, booking.HoldUpdate{To: booking.HoldCaptured, At: at.Add(time.Minute)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AdvanceHold(ctx, b.ID, booking.HoldUpdate{To: booking.HoldReleased, At: at.Add(2 * time.Minute)})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := s.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(booking.HoldCaptured), got.HoldStatus)
	assert.Equal(t, "mp-1", *got.HoldRef)
	assert.Equal(t, at.Add(time.Minute), got.UpdatedAt)
}

func TestListBookingsUpdatedSince(t *testing.T) {
	s := New()
	ctx := context.Background()
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	old := pending(540, 600, at.Add(time.Hour))
	fresh := pending(600, 660, at.Add(time.Hour))
	require.NoError(t, s.CreateBooking(ctx, old))
	require.NoError(t, s.CreateBooking(ctx, fresh))

	_, _, err := s.TransitionStatus(ctx, old.ID, booking.Transition{To: booking.StatusCancelled, At: at})
	require.NoError(t, err)
	_, _, err = s.TransitionStatus(ctx, fresh.ID, booking.Transition{To: booking.StatusCancelled, At: at.Add(time.Minute)})
	require.NoError(t, err)

	got, err := s.ListBookings(ctx, booking.ListFilter{UpdatedSince: &at})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, fresh.ID, got[0].ID)
}

func TestExceptionUpsertAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	ex := &models.AvailabilityException{TrainerID: 1, Date: lessonDay}
	require.NoError(t, s.UpsertException(ctx, ex))
	firstID := ex.ID

	again := &models.AvailabilityException{TrainerID: 1, Date: lessonDay}
	require.NoError(t, s.UpsertException(ctx, again))
	assert.Equal(t, firstID, again.ID)

	list, err := s.ListExceptions(ctx, 1, lessonDay, lessonDay)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	deleted, err := s.DeleteException(ctx, 1, lessonDay)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteException(ctx, 1, lessonDay)
	require.NoError(t, err)
	assert.False(t, deleted)
}
