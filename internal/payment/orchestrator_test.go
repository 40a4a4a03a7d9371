package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
)

// ======================================================
// Gateway mock
// ======================================================

type gatewayMock struct {
	mock.Mock
}

func (m *gatewayMock) Authorize(_ context.Context, req AuthorizeRequest) (AuthorizeResult, error) {
	args := m.Called(req.SessionID)
	return args.Get(0).(AuthorizeResult), args.Error(1)
}

func (m *gatewayMock) Capture(_ context.Context, ref string) error {
	return m.Called(ref).Error(0)
}

func (m *gatewayMock) Cancel(_ context.Context, ref string) error {
	return m.Called(ref).Error(0)
}

func (m *gatewayMock) ResolveReferenceFromSession(_ context.Context, session string) (string, bool, error) {
	args := m.Called(session)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *gatewayMock) HoldState(_ context.Context, ref string) (HoldState, error) {
	args := m.Called(ref)
	return args.Get(0).(HoldState), args.Error(1)
}

func (m *gatewayMock) Lookup(_ context.Context, ref string) (Hold, error) {
	args := m.Called(ref)
	return args.Get(0).(Hold), args.Error(1)
}

type onceDeduper struct {
	seen map[string]bool
}

func (d *onceDeduper) Claim(_ context.Context, key string) (bool, error) {
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func (d *onceDeduper) Forget(_ context.Context, key string) error {
	delete(d.seen, key)
	return nil
}

// ======================================================
// Fixtures
// ======================================================

const session = "sess-1"

func setup(t *testing.T, hold booking.HoldStatus, ref string) (*memory.Store, *gatewayMock, *Orchestrator, *models.Booking) {
	t.Helper()

	store := memory.New()
	gw := &gatewayMock{}
	o := NewOrchestrator(store, gw, nil, nil, zap.NewNop(), WithRetry(3, time.Millisecond))

	deadline := time.Now().Add(time.Hour)
	s := session
	b := &models.Booking{
		ClubID:           1,
		TrainerID:        1,
		LessonDate:       time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		StartMin:         540,
		EndMin:           600,
		DurationMin:      60,
		Status:           string(booking.StatusPending),
		AutoCancelAt:     &deadline,
		PaymentMethod:    string(booking.PaymentHeldRemote),
		HoldStatus:       string(hold),
		PaymentSessionID: &s,
	}
	if ref != "" {
		b.HoldRef = &ref
	}
	require.NoError(t, store.CreateBooking(context.Background(), b))

	t.Cleanup(func() { gw.AssertExpectations(t) })
	return store, gw, o, b
}

func transition(t *testing.T, store *memory.Store, b *models.Booking, to booking.Status) {
	t.Helper()
	updated, ok, err := store.TransitionStatus(context.Background(), b.ID, booking.Transition{To: to, At: time.Now()})
	require.NoError(t, err)
	require.True(t, ok)
	*b = *updated
}

func reload(t *testing.T, store *memory.Store, id uint) *models.Booking {
	t.Helper()
	b, err := store.GetBooking(context.Background(), id)
	require.NoError(t, err)
	return b
}

// ======================================================
// Authorize
// ======================================================

func TestAuthorizeHoldsFunds(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldAuthorizing, "")
	gw.On("Authorize", session).Return(AuthorizeResult{Ref: "mp-9", State: StateAuthorized}, nil)

	outcome, err := o.Authorize(context.Background(), b, AuthorizeRequest{SessionID: session})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)

	got := reload(t, store, b.ID)
	assert.Equal(t, string(booking.HoldHeld), got.HoldStatus)
	assert.Equal(t, "mp-9", *got.HoldRef)
}

func TestAuthorizeDeclinedCancelsBooking(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldAuthorizing, "")
	gw.On("Authorize", session).Return(AuthorizeResult{}, ErrDeclined)

	_, err := o.Authorize(context.Background(), b, AuthorizeRequest{SessionID: session})
	assert.True(t, httperr.IsBusiness(err, "payment_declined"))

	got := reload(t, store, b.ID)
	assert.Equal(t, string(booking.StatusCancelled), got.Status)
	assert.Equal(t, string(booking.HoldReleased), got.HoldStatus)
	assert.Equal(t, "payment_declined", got.Reason)
}

func TestAuthorizeTransientLeavesAuthorizing(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldAuthorizing, "")
	gw.On("Authorize", session).Return(AuthorizeResult{}, ErrTransient)

	outcome, err := o.Authorize(context.Background(), b, AuthorizeRequest{SessionID: session})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	got := reload(t, store, b.ID)
	assert.Equal(t, string(booking.StatusPending), got.Status)
	assert.Equal(t, string(booking.HoldAuthorizing), got.HoldStatus)
}

// ======================================================
// Capture
// ======================================================

func TestConfirmHeldBookingCaptures(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldHeld, "mp-1")
	transition(t, store, b, booking.StatusConfirmed)
	gw.On("Capture", "mp-1").Return(nil).Once()

	outcome, err := o.Capture(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	assert.Equal(t, string(booking.HoldCaptured), reload(t, store, b.ID).HoldStatus)
}

func TestCaptureAlreadyCapturedSkipsGateway(t *testing.T) {
	_, _, o, b := setup(t, booking.HoldAuthorizing, "")
	b.HoldStatus = string(booking.HoldCaptured)

	outcome, err := o.Capture(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyDone, outcome)
}

func TestCaptureUnresolvedSessionIsSkipped(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldAuthorizing, "")
	transition(t, store, b, booking.StatusConfirmed)
	gw.On("ResolveReferenceFromSession", session).Return("", false, nil)

	outcome, err := o.Capture(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Equal(t, string(booking.HoldAuthorizing), reload(t, store, b.ID).HoldStatus)
}

func TestCaptureResolvesSessionFirst(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldAuthorizing, "")
	transition(t, store, b, booking.StatusConfirmed)
	gw.On("ResolveReferenceFromSession", session).Return("mp-5", true, nil)
	gw.On("Lookup", "mp-5").Return(Hold{Ref: "mp-5", SessionID: session, State: StateAuthorized}, nil)
	gw.On("Capture", "mp-5").Return(nil)

	outcome, err := o.Capture(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)

	got := reload(t, store, b.ID)
	assert.Equal(t, string(booking.HoldCaptured), got.HoldStatus)
	assert.Equal(t, "mp-5", *got.HoldRef)
}

func TestCaptureRetriesTransientWhileAuthorized(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldHeld, "mp-1")
	transition(t, store, b, booking.StatusConfirmed)
	gw.On("Capture", "mp-1").Return(ErrTransient).Once()
	gw.On("HoldState", "mp-1").Return(StateAuthorized, nil).Once()
	gw.On("Capture", "mp-1").Return(nil).Once()

	outcome, err := o.Capture(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	gw.AssertNumberOfCalls(t, "Capture", 2)
}

func TestCaptureErrorButGatewaySaysCaptured(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldHeld, "mp-1")
	transition(t, store, b, booking.StatusConfirmed)
	gw.On("Capture", "mp-1").Return(ErrTransient).Once()
	gw.On("HoldState", "mp-1").Return(StateCaptured, nil).Once()

	outcome, err := o.Capture(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	assert.Equal(t, string(booking.HoldCaptured), reload(t, store, b.ID).HoldStatus)
}

func TestCaptureHardFailureIsSurfaced(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldHeld, "mp-1")
	transition(t, store, b, booking.StatusConfirmed)
	gw.On("Capture", "mp-1").Return(assert.AnError).Once()
	gw.On("HoldState", "mp-1").Return(StateAuthorized, nil).Once()

	outcome, err := o.Capture(context.Background(), b)
	assert.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)

	got := reload(t, store, b.ID)
	assert.Equal(t, string(booking.StatusConfirmed), got.Status)
	assert.Equal(t, string(booking.HoldCaptureFailed), got.HoldStatus)
}

func TestCaptureResolvedDeclinedPaymentIsNotCharged(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldAuthorizing, "")
	transition(t, store, b, booking.StatusConfirmed)
	gw.On("ResolveReferenceFromSession", session).Return("mp-7", true, nil)
	gw.On("Lookup", "mp-7").Return(Hold{Ref: "mp-7", SessionID: session, State: StateDeclined}, nil)

	outcome, err := o.Capture(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	gw.AssertNotCalled(t, "Capture", mock.Anything)

	got := reload(t, store, b.ID)
	assert.Equal(t, string(booking.StatusConfirmed), got.Status)
	assert.Equal(t, string(booking.HoldReleased), got.HoldStatus)
}

// ======================================================
// Release
// ======================================================

func TestReleaseResolvedDeclinedPaymentEndsReleased(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldAuthorizing, "")
	transition(t, store, b, booking.StatusExpired)
	gw.On("ResolveReferenceFromSession", session).Return("mp-7", true, nil)
	gw.On("Lookup", "mp-7").Return(Hold{Ref: "mp-7", SessionID: session, State: StateDeclined}, nil)

	outcome, err := o.Release(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	gw.AssertNotCalled(t, "Cancel", mock.Anything)

	got := reload(t, store, b.ID)
	assert.Equal(t, string(booking.StatusExpired), got.Status)
	assert.Equal(t, string(booking.HoldReleased), got.HoldStatus)

	pending, err := store.ListHoldsToReconcile(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReleaseResolvedCancelledPaymentEndsReleased(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldAuthorizing, "")
	transition(t, store, b, booking.StatusRejected)
	gw.On("ResolveReferenceFromSession", session).Return("mp-8", true, nil)
	gw.On("Lookup", "mp-8").Return(Hold{Ref: "mp-8", SessionID: session, State: StateReleased}, nil)

	outcome, err := o.Release(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	gw.AssertNotCalled(t, "Cancel", mock.Anything)
	assert.Equal(t, string(booking.HoldReleased), reload(t, store, b.ID).HoldStatus)
}

func TestDrivePendingWithDeclinedPaymentCancelsBooking(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldAuthorizing, "")
	gw.On("ResolveReferenceFromSession", session).Return("mp-7", true, nil)
	gw.On("Lookup", "mp-7").Return(Hold{Ref: "mp-7", SessionID: session, State: StateDeclined}, nil)

	outcome, err := o.Drive(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)

	got := reload(t, store, b.ID)
	assert.Equal(t, string(booking.StatusCancelled), got.Status)
	assert.Equal(t, "payment_declined", got.Reason)
	assert.Equal(t, string(booking.HoldReleased), got.HoldStatus)
}

func TestAdvanceHoldStampsClockTime(t *testing.T) {
	store, gw, _, b := setup(t, booking.HoldHeld, "mp-1")
	transition(t, store, b, booking.StatusConfirmed)
	gw.On("Capture", "mp-1").Return(nil).Once()

	at := time.Date(2026, 10, 20, 9, 30, 0, 0, time.UTC)
	o := NewOrchestrator(store, gw, nil, nil, zap.NewNop(), WithClock(timezone.NewFixedClock(at)))

	_, err := o.Capture(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, at, reload(t, store, b.ID).UpdatedAt)
}

func TestRejectReleasesHold(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldHeld, "mp-1")
	transition(t, store, b, booking.StatusRejected)
	gw.On("Cancel", "mp-1").Return(nil).Once()

	outcome, err := o.Release(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	assert.Equal(t, string(booking.HoldReleased), reload(t, store, b.ID).HoldStatus)

	outcome, err = o.Release(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyDone, outcome)
}

func TestReleaseFailureKeepsHoldForReconciliation(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldHeld, "mp-1")
	transition(t, store, b, booking.StatusCancelled)
	gw.On("Cancel", "mp-1").Return(ErrTransient)

	outcome, err := o.Release(context.Background(), b)
	assert.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	gw.AssertNumberOfCalls(t, "Cancel", 4)

	assert.Equal(t, string(booking.HoldHeld), reload(t, store, b.ID).HoldStatus)

	pending, err := store.ListHoldsToReconcile(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)
}

// ======================================================
// Webhook
// ======================================================

func TestNotificationAttachesHoldAndCapturesConfirmed(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldAuthorizing, "")
	transition(t, store, b, booking.StatusConfirmed)

	gw.On("Lookup", "mp-7").Return(Hold{Ref: "mp-7", SessionID: session, State: StateAuthorized}, nil)
	gw.On("Capture", "mp-7").Return(nil)

	outcome, err := o.HandleNotification(context.Background(), Notification{ID: "n-1", Ref: "mp-7"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)

	got := reload(t, store, b.ID)
	assert.Equal(t, string(booking.HoldCaptured), got.HoldStatus)
	assert.Equal(t, "mp-7", *got.HoldRef)
}

func TestNotificationOnPendingMarksHeld(t *testing.T) {
	store, gw, o, b := setup(t, booking.HoldAuthorizing, "")
	gw.On("Lookup", "mp-7").Return(Hold{Ref: "mp-7", SessionID: session, State: StateAuthorized}, nil)

	outcome, err := o.HandleNotification(context.Background(), Notification{Ref: "mp-7"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDone, outcome)
	assert.Equal(t, string(booking.HoldHeld), reload(t, store, b.ID).HoldStatus)
}

func TestDuplicateNotificationIsIgnored(t *testing.T) {
	store := memory.New()
	gw := &gatewayMock{}
	o := NewOrchestrator(store, gw, nil, nil, zap.NewNop(), WithDeduper(&onceDeduper{seen: map[string]bool{}}))

	gw.On("Lookup", "mp-x").Return(Hold{Ref: "mp-x"}, nil).Once()

	outcome, err := o.HandleNotification(context.Background(), Notification{ID: "n-1", Ref: "mp-x"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)

	outcome, err = o.HandleNotification(context.Background(), Notification{ID: "n-1", Ref: "mp-x"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyDone, outcome)
	gw.AssertExpectations(t)
}

func TestInPersonBookingsBypassGateway(t *testing.T) {
	_, _, o, b := setup(t, booking.HoldNone, "")
	b.PaymentMethod = string(booking.PaymentInPerson)

	outcome, err := o.Drive(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
}
