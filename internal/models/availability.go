package models

import "time"

type AvailabilityRule struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	TrainerID uint `gorm:"uniqueIndex:idx_rule_trainer_weekday" json:"trainer_id"`
	Weekday   int  `gorm:"uniqueIndex:idx_rule_trainer_weekday" json:"weekday"`

	MorningStart   *int `json:"morning_start"`
	MorningEnd     *int `json:"morning_end"`
	AfternoonStart *int `json:"afternoon_start"`
	AfternoonEnd   *int `json:"afternoon_end"`

	SlotDurationMin int  `json:"slot_duration_min"`
	Active          bool `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AvailabilityException struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TrainerID uint      `gorm:"uniqueIndex:idx_exception_trainer_date" json:"trainer_id"`
	Date      time.Time `gorm:"type:date;uniqueIndex:idx_exception_trainer_date" json:"date"`

	MorningStart   *int `json:"morning_start"`
	MorningEnd     *int `json:"morning_end"`
	AfternoonStart *int `json:"afternoon_start"`
	AfternoonEnd   *int `json:"afternoon_end"`

	SlotDurationMin *int `json:"slot_duration_min"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BlockingEvent é a ocupação de aulas em grupo, alimentada pela grade do clube.
type BlockingEvent struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	ClubID   uint      `json:"club_id"`
	Date     time.Time `gorm:"type:date" json:"date"`
	StartMin int       `json:"start_min"`
	EndMin   int       `json:"end_min"`
	Title    string    `gorm:"size:100" json:"title"`

	Trainers []Trainer `gorm:"many2many:blocking_event_trainers;" json:"-"`
}
