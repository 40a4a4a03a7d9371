package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

// Transition descreve uma escrita condicionada ao estado atual.
type Transition struct {
	To     Status
	At     time.Time
	Reason string

	// NotAfter exige auto_cancel_at > NotAfter (confirmação dentro do prazo).
	NotAfter *time.Time
}

// HoldUpdate descreve uma escrita de hold condicionada aos estados de origem.
type HoldUpdate struct {
	To  HoldStatus
	Ref *string
	At  time.Time
}

type ListFilter struct {
	ClubID    uint
	TrainerID uint
	Status    Status
	Hold      HoldStatus
	From      *time.Time
	To        *time.Time
	Limit     int

	// UpdatedSince filtra por updated_at > UpdatedSince.
	UpdatedSince *time.Time
}

type Repository interface {
	// -------- Club / Trainer (somente leitura) --------
	GetClubByID(
		ctx context.Context,
		id uint,
	) (*models.Club, error)

	GetTrainer(
		ctx context.Context,
		clubID uint,
		trainerID uint,
	) (*models.Trainer, error)

	// -------- Booking (create / conflict) --------

	// CreateBooking é um compare-and-insert: falha com conflito
	// slot_unavailable se existir reserva ativa sobreposta.
	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	GetBooking(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	GetBookingBySession(
		ctx context.Context,
		sessionID string,
	) (*models.Booking, error)

	ListBookings(
		ctx context.Context,
		f ListFilter,
	) ([]models.Booking, error)

	// ListActiveBookings devolve reservas pending/confirmed com data em [from, to].
	ListActiveBookings(
		ctx context.Context,
		trainerID uint,
		from time.Time,
		to time.Time,
	) ([]models.Booking, error)

	// -------- Booking (state change) --------

	// TransitionStatus só escreve se o status atual for pending.
	// Com ok=false devolve a reserva no estado atual.
	TransitionStatus(
		ctx context.Context,
		id uint,
		t Transition,
	) (b *models.Booking, ok bool, err error)

	// ExpireDue move para expired as reservas pending vencidas e as devolve.
	ExpireDue(
		ctx context.Context,
		now time.Time,
		limit int,
	) ([]models.Booking, error)

	// -------- Payment hold --------

	// AdvanceHold só escreve se o hold estiver num dos estados de origem.
	AdvanceHold(
		ctx context.Context,
		id uint,
		u HoldUpdate,
	) (ok bool, err error)

	// ListHoldsToReconcile devolve holds authorizing/held cujo estado
	// não corresponde ao status da reserva.
	ListHoldsToReconcile(
		ctx context.Context,
		limit int,
	) ([]models.Booking, error)
}
