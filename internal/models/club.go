package models

import "time"

// Club e Trainer pertencem ao serviço de cadastro; aqui são somente leitura.
type Club struct {
	ID                    uint    `gorm:"primaryKey" json:"id"`
	Name                  string  `gorm:"size:100;not null" json:"name"`
	Timezone              string  `gorm:"size:64" json:"timezone"`
	Currency              string  `gorm:"size:3" json:"currency"`
	ResponseWindowMinutes int     `json:"response_window_minutes"`
	MinAdvanceMinutes     int     `json:"min_advance_minutes"`
	PlatformFeePercent    float64 `json:"platform_fee_percent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Trainer struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	ClubID uint `json:"club_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Email string `gorm:"size:100" json:"email"`

	HourlyRate           float64 `json:"hourly_rate"`
	ExtraParticipantRate float64 `json:"extra_participant_rate"`
	MaxParticipants      int     `json:"max_participants"`

	// sobrepõe a janela do clube quando preenchido
	ResponseWindowMinutes *int `json:"response_window_minutes"`

	PaymentDestination string `gorm:"size:100" json:"-"`
	Active             bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
