package availability

import (
	"context"
	"fmt"

	"github.com/BruksfildServices01/lesson-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
)

// ======================================================
// UPSERT EXCEPTION
// ======================================================

type UpsertExceptionInput struct {
	ClubID      uint
	TrainerID   uint
	Date        string
	Morning     domain.MaybeWindow
	Afternoon   domain.MaybeWindow
	DurationMin int
}

type UpsertException struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewUpsertException(repo domain.Repository, audit *audit.Dispatcher) *UpsertException {
	return &UpsertException{repo: repo, audit: audit}
}

func (uc *UpsertException) Execute(ctx context.Context, in UpsertExceptionInput) (domain.Exception, error) {
	ex := domain.Exception{
		TrainerID:   in.TrainerID,
		Date:        in.Date,
		Morning:     in.Morning,
		Afternoon:   in.Afternoon,
		DurationMin: in.DurationMin,
	}
	if err := ex.Validate(); err != nil {
		return domain.Exception{}, err
	}

	row, err := ex.ToModel()
	if err != nil {
		return domain.Exception{}, httperr.ErrValidation("invalid_date")
	}
	if err := uc.repo.UpsertException(ctx, &row); err != nil {
		return domain.Exception{}, fmt.Errorf("upsert exception: %w", err)
	}

	trainerID := in.TrainerID
	uc.audit.Dispatch(audit.Event{
		ClubID:    in.ClubID,
		TrainerID: &trainerID,
		Action:    "availability_exception_upserted",
		Entity:    "availability_exception",
		EntityID:  audit.Uint(row.ID),
		Metadata:  map[string]any{"date": in.Date, "closed": ex.Closed()},
	})

	return ex, nil
}

// ======================================================
// DELETE EXCEPTION
// ======================================================

type DeleteException struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewDeleteException(repo domain.Repository, audit *audit.Dispatcher) *DeleteException {
	return &DeleteException{repo: repo, audit: audit}
}

// Execute remove a exceção; a regra semanal volta a valer na data.
func (uc *DeleteException) Execute(ctx context.Context, clubID, trainerID uint, date string) error {
	d, err := timezone.ParseDate(date)
	if err != nil {
		return httperr.ErrValidation("invalid_date")
	}

	deleted, err := uc.repo.DeleteException(ctx, trainerID, d)
	if err != nil {
		return fmt.Errorf("delete exception: %w", err)
	}
	if !deleted {
		return httperr.ErrNotFound("exception_not_found")
	}

	uc.audit.Dispatch(audit.Event{
		ClubID:    clubID,
		TrainerID: &trainerID,
		Action:    "availability_exception_deleted",
		Entity:    "availability_exception",
		Metadata:  map[string]string{"date": date},
	})
	return nil
}
