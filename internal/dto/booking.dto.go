package dto

import (
	"time"

	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

type BookingDTO struct {
	ID        uint `json:"id"`
	ClubID    uint `json:"club_id"`
	TrainerID uint `json:"trainer_id"`

	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	DurationMin int    `json:"duration_min"`

	Participants int     `json:"participants"`
	TotalPrice   float64 `json:"total_price"`
	Currency     string  `json:"currency"`

	PlayerName  string `json:"player_name"`
	PlayerEmail string `json:"player_email,omitempty"`
	PlayerPhone string `json:"player_phone,omitempty"`

	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
	HoldStatus    string `json:"hold_status"`
	Reason        string `json:"reason,omitempty"`

	AutoCancelAt *time.Time `json:"auto_cancel_at,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CreatedBookingDTO é a resposta da criação: único momento em que o
// jogador recebe o token de cancelamento.
type CreatedBookingDTO struct {
	BookingDTO
	CancelToken string `json:"cancel_token"`
}

func FromBooking(b *models.Booking) BookingDTO {
	return BookingDTO{
		ID:            b.ID,
		ClubID:        b.ClubID,
		TrainerID:     b.TrainerID,
		Date:          b.LessonDate.Format(availability.DateLayout),
		Start:         availability.TimeOfDay(b.StartMin).String(),
		End:           availability.TimeOfDay(b.EndMin).String(),
		DurationMin:   b.DurationMin,
		Participants:  b.Participants,
		TotalPrice:    b.TotalPrice,
		Currency:      b.Currency,
		PlayerName:    b.PlayerName,
		PlayerEmail:   b.PlayerEmail,
		PlayerPhone:   b.PlayerPhone,
		PaymentMethod: b.PaymentMethod,
		Status:        b.Status,
		HoldStatus:    b.HoldStatus,
		Reason:        b.Reason,
		AutoCancelAt:  b.AutoCancelAt,
		DecidedAt:     b.DecidedAt,
		CreatedAt:     b.CreatedAt,
	}
}

func FromBookings(list []models.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(list))
	for i := range list {
		out = append(out, FromBooking(&list[i]))
	}
	return out
}
