package booking

import (
	"time"

	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

// ===============================
// Domain helpers
// ===============================

func StatusOf(b *models.Booking) Status {
	return Status(b.Status)
}

func HoldOf(b *models.Booking) HoldStatus {
	return HoldStatus(b.HoldStatus)
}

func MethodOf(b *models.Booking) PaymentMethod {
	return PaymentMethod(b.PaymentMethod)
}

// Apply aplica a transição em memória, com as mesmas regras da escrita condicionada.
func Apply(b *models.Booking, t Transition) error {
	if err := CanTransition(StatusOf(b), t.To); err != nil {
		return err
	}
	if t.NotAfter != nil && (b.AutoCancelAt == nil || !b.AutoCancelAt.After(*t.NotAfter)) {
		return errDeadlinePassed
	}

	at := t.At
	b.Status = string(t.To)
	b.AutoCancelAt = nil
	b.DecidedAt = &at
	if t.Reason != "" {
		b.Reason = t.Reason
	}
	return nil
}

// Expired indica uma reserva pending cujo prazo de resposta já passou.
func Expired(b *models.Booking, now time.Time) bool {
	return StatusOf(b) == StatusPending && b.AutoCancelAt != nil && !b.AutoCancelAt.After(now)
}

// ResponseWindow resolve o prazo: treinador > clube > padrão.
func ResponseWindow(trainer *models.Trainer, club *models.Club, fallback time.Duration) time.Duration {
	if trainer != nil && trainer.ResponseWindowMinutes != nil && *trainer.ResponseWindowMinutes > 0 {
		return time.Duration(*trainer.ResponseWindowMinutes) * time.Minute
	}
	if club != nil && club.ResponseWindowMinutes > 0 {
		return time.Duration(club.ResponseWindowMinutes) * time.Minute
	}
	return fallback
}

// QuotePrice calcula o preço total da aula.
func QuotePrice(trainer *models.Trainer, durationMin int, participants int) float64 {
	total := trainer.HourlyRate * float64(durationMin) / 60
	if participants > 1 {
		total += trainer.ExtraParticipantRate * float64(participants-1)
	}
	return float64(int64(total*100+0.5)) / 100
}

// ToSlotRef projeta a reserva na grade.
func ToSlotRef(b models.Booking) slot.BookingRef {
	return slot.BookingRef{
		ID:     b.ID,
		Date:   b.LessonDate.Format(availability.DateLayout),
		Start:  availability.TimeOfDay(b.StartMin),
		End:    availability.TimeOfDay(b.EndMin),
		Status: slot.Status(b.Status),
	}
}
