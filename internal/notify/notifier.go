// Package notify avisa treinador e jogador sobre mudanças nas reservas.
// Falhas de entrega são registradas e nunca desfazem uma transição.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

type Kind string

const (
	BookingRequested Kind = "booking.requested"
	BookingConfirmed Kind = "booking.confirmed"
	BookingRejected  Kind = "booking.rejected"
	BookingExpired   Kind = "booking.expired"
	BookingCancelled Kind = "booking.cancelled"
	CaptureFailed    Kind = "payment.capture_failed"
)

type Event struct {
	Kind        Kind      `json:"event"`
	BookingID   uint      `json:"booking_id"`
	ClubID      uint      `json:"club_id"`
	TrainerID   uint      `json:"trainer_id"`
	LessonDate  string    `json:"lesson_date"`
	Start       int       `json:"start_min"`
	End         int       `json:"end_min"`
	Status      string    `json:"status"`
	HoldStatus  string    `json:"hold_status"`
	PlayerName  string    `json:"player_name"`
	PlayerEmail string    `json:"player_email"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// FromBooking monta o evento a partir do estado atual da reserva.
func FromBooking(kind Kind, b *models.Booking, at time.Time) Event {
	return Event{
		Kind:        kind,
		BookingID:   b.ID,
		ClubID:      b.ClubID,
		TrainerID:   b.TrainerID,
		LessonDate:  b.LessonDate.Format("2006-01-02"),
		Start:       b.StartMin,
		End:         b.EndMin,
		Status:      b.Status,
		HoldStatus:  b.HoldStatus,
		PlayerName:  b.PlayerName,
		PlayerEmail: b.PlayerEmail,
		Reason:      b.Reason,
		OccurredAt:  at,
	}
}

// Notifier é o canal de entrega (broker, e-mail, log).
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// LogNotifier só registra o evento.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, ev Event) error {
	n.logger.Info("notify",
		zap.String("event", string(ev.Kind)),
		zap.Uint("booking_id", ev.BookingID),
		zap.String("status", ev.Status),
		zap.String("hold_status", ev.HoldStatus),
	)
	return nil
}
