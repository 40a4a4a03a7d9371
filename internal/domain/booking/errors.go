package booking

import "github.com/BruksfildServices01/lesson-scheduler/internal/httperr"

var (
	ErrSlotUnavailable = httperr.ErrConflict("slot_unavailable")
	ErrAlreadyFinal    = httperr.ErrConflict("booking_already_final")
	ErrBookingExpired  = httperr.ErrConflict("booking_expired")

	ErrNotFound        = httperr.ErrNotFound("booking_not_found")
	ErrClubNotFound    = httperr.ErrNotFound("club_not_found")
	ErrTrainerNotFound = httperr.ErrNotFound("trainer_not_found")

	errDeadlinePassed = ErrBookingExpired
)

// Motivos gravados pelo sistema.
const (
	ReasonTimeout         = "response_timeout"
	ReasonPlayerCancelled = "cancelled_by_player"
)
