package booking

import "github.com/BruksfildServices01/lesson-scheduler/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses ocupam a agenda do treinador.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusConfirmed, StatusRejected, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) Valid() bool {
	return s == StatusPending || s.IsTerminal()
}

// ===============================
// Validations
// ===============================

// CanTransition só permite sair de pending.
// Em estado final a tentativa é um conflito benigno, nunca um erro fatal.
func CanTransition(current Status, to Status) error {
	if current.IsTerminal() {
		return httperr.ErrConflict("booking_already_final")
	}
	if current != StatusPending || !to.IsTerminal() {
		return httperr.ErrValidation("invalid_transition")
	}
	return nil
}

func InitialStatus() Status {
	return StatusPending
}

// ===============================
// Payment method
// ===============================

type PaymentMethod string

const (
	PaymentInPerson   PaymentMethod = "in-person"
	PaymentHeldRemote PaymentMethod = "held-remote"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentInPerson || m == PaymentHeldRemote
}
