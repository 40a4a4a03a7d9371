package booking

import (
	"context"

	domain "github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
)

type ListBookingsInput struct {
	Actor  Actor
	Status string
	From   string
	To     string
}

type ListBookings struct {
	repo domain.Repository
}

func NewListBookings(repo domain.Repository) *ListBookings {
	return &ListBookings{repo: repo}
}

func (uc *ListBookings) Execute(ctx context.Context, in ListBookingsInput) ([]models.Booking, error) {
	f := domain.ListFilter{ClubID: in.Actor.ClubID}
	if in.Actor.Role != RoleAdmin {
		f.TrainerID = in.Actor.TrainerID
	}

	if in.Status != "" {
		s := domain.Status(in.Status)
		if !s.Valid() {
			return nil, httperr.ErrValidation("invalid_status")
		}
		f.Status = s
	}

	if in.From != "" {
		d, err := timezone.ParseDate(in.From)
		if err != nil {
			return nil, httperr.ErrValidation("invalid_date")
		}
		f.From = &d
	}
	if in.To != "" {
		d, err := timezone.ParseDate(in.To)
		if err != nil {
			return nil, httperr.ErrValidation("invalid_date")
		}
		f.To = &d
	}

	return uc.repo.ListBookings(ctx, f)
}
