package booking

import (
	"context"
	"crypto/subtle"
	"strings"

	domain "github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

type CancelBooking struct {
	deps Deps
}

func NewCancelBooking(deps Deps) *CancelBooking {
	return &CancelBooking{deps: deps.normalized()}
}

// ByActor cancela em nome do treinador ou do admin do clube.
func (uc *CancelBooking) ByActor(
	ctx context.Context,
	actor Actor,
	bookingID uint,
	reason string,
) (*models.Booking, error) {

	current, err := uc.deps.Repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(current) {
		return nil, domain.ErrNotFound
	}

	id := actor.TrainerID
	return uc.cancel(ctx, bookingID, strings.TrimSpace(reason), &id)
}

// ByToken cancela em nome do jogador, com o token recebido na criação.
func (uc *CancelBooking) ByToken(
	ctx context.Context,
	bookingID uint,
	token string,
) (*models.Booking, error) {

	current, err := uc.deps.Repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(current.CancelToken)) != 1 {
		return nil, domain.ErrNotFound
	}

	return uc.cancel(ctx, bookingID, domain.ReasonPlayerCancelled, nil)
}

func (uc *CancelBooking) cancel(
	ctx context.Context,
	bookingID uint,
	reason string,
	actor *uint,
) (*models.Booking, error) {

	d := uc.deps
	now := d.Clock.Now()

	b, ok, err := d.Repo.TransitionStatus(ctx, bookingID, domain.Transition{
		To:     domain.StatusCancelled,
		At:     now,
		Reason: reason,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return d.lost(ctx, b, now)
	}

	d.afterTransition(ctx, b, actor)
	return b, nil
}
