package models

import "time"

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClubID    uint `json:"club_id"`
	TrainerID uint `json:"trainer_id"`

	LessonDate  time.Time `gorm:"type:date" json:"lesson_date"`
	StartMin    int       `json:"start_min"`
	EndMin      int       `json:"end_min"`
	DurationMin int       `json:"duration_min"`

	Participants int     `json:"participants"`
	TotalPrice   float64 `json:"total_price"`
	Currency     string  `gorm:"size:3" json:"currency"`

	PlayerName  string `gorm:"size:100" json:"player_name"`
	PlayerEmail string `gorm:"size:100" json:"player_email"`
	PlayerPhone string `gorm:"size:20" json:"player_phone"`

	PaymentMethod string `gorm:"size:20" json:"payment_method"`
	Status        string `gorm:"size:20;default:'pending'" json:"status"`

	AutoCancelAt *time.Time `json:"auto_cancel_at"`
	DecidedAt    *time.Time `json:"decided_at"`
	Reason       string     `gorm:"size:255" json:"reason"`

	HoldStatus       string  `gorm:"size:20;default:'none'" json:"hold_status"`
	HoldRef          *string `gorm:"size:64" json:"hold_ref"`
	PaymentSessionID *string `gorm:"size:64" json:"payment_session_id"`

	CancelToken string `gorm:"size:64" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
