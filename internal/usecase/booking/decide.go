package booking

import (
	"context"
	"strings"

	domain "github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

const (
	ActionConfirm = "confirm"
	ActionReject  = "reject"
)

type DecideBookingInput struct {
	Actor     Actor
	BookingID uint
	Action    string
	Reason    string
}

type DecideBooking struct {
	deps Deps
}

func NewDecideBooking(deps Deps) *DecideBooking {
	return &DecideBooking{deps: deps.normalized()}
}

// Execute confirma ou recusa uma reserva pending. Em estado final devolve a
// reserva atual junto com um conflito.
func (uc *DecideBooking) Execute(ctx context.Context, in DecideBookingInput) (*models.Booking, error) {
	d := uc.deps

	var t domain.Transition
	switch in.Action {
	case ActionConfirm:
		t.To = domain.StatusConfirmed
	case ActionReject:
		t.To = domain.StatusRejected
		t.Reason = strings.TrimSpace(in.Reason)
	default:
		return nil, httperr.ErrValidation("invalid_action")
	}

	current, err := d.Repo.GetBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if !in.Actor.CanActOn(current) {
		return nil, domain.ErrNotFound
	}

	now := d.Clock.Now()
	t.At = now
	if t.To == domain.StatusConfirmed {
		t.NotAfter = &now
	}

	b, ok, err := d.Repo.TransitionStatus(ctx, in.BookingID, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		return d.lost(ctx, b, now)
	}

	actor := in.Actor.TrainerID
	d.afterTransition(ctx, b, &actor)
	return b, nil
}
