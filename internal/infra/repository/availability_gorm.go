package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

type AvailabilityGormRepository struct {
	db *gorm.DB
}

func NewAvailabilityGormRepository(db *gorm.DB) *AvailabilityGormRepository {
	return &AvailabilityGormRepository{db: db}
}

var windowColumns = []string{
	"morning_start", "morning_end",
	"afternoon_start", "afternoon_end",
	"slot_duration_min", "updated_at",
}

// --------------------------------------------------
// Rules
// --------------------------------------------------

func (r *AvailabilityGormRepository) ListRules(
	ctx context.Context,
	trainerID uint,
) ([]models.AvailabilityRule, error) {

	var rules []models.AvailabilityRule
	if err := r.db.WithContext(ctx).
		Where("trainer_id = ?", trainerID).
		Order("weekday ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// UpsertRule grava a regra do dia; existe no máximo uma por (treinador, dia).
func (r *AvailabilityGormRepository) UpsertRule(
	ctx context.Context,
	rule *models.AvailabilityRule,
) error {

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "trainer_id"}, {Name: "weekday"}},
			DoUpdates: clause.AssignmentColumns(append([]string{"active"}, windowColumns...)),
		}).
		Create(rule).Error
}

// --------------------------------------------------
// Exceptions
// --------------------------------------------------

func (r *AvailabilityGormRepository) ListExceptions(
	ctx context.Context,
	trainerID uint,
	from time.Time,
	to time.Time,
) ([]models.AvailabilityException, error) {

	var out []models.AvailabilityException
	if err := r.db.WithContext(ctx).
		Where("trainer_id = ? AND date BETWEEN ? AND ?", trainerID, from, to).
		Order("date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AvailabilityGormRepository) UpsertException(
	ctx context.Context,
	ex *models.AvailabilityException,
) error {

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "trainer_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns(windowColumns),
		}).
		Create(ex).Error
}

func (r *AvailabilityGormRepository) DeleteException(
	ctx context.Context,
	trainerID uint,
	date time.Time,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Where("trainer_id = ? AND date = ?", trainerID, date).
		Delete(&models.AvailabilityException{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Compile-time check
var _ domain.Repository = (*AvailabilityGormRepository)(nil)

// --------------------------------------------------
// Blocking events
// --------------------------------------------------

// BlockingEventSource lê as aulas em grupo da grade do clube.
type BlockingEventSource struct {
	db *gorm.DB
}

func NewBlockingEventSource(db *gorm.DB) *BlockingEventSource {
	return &BlockingEventSource{db: db}
}

func (s *BlockingEventSource) ListBlocks(
	ctx context.Context,
	clubID uint,
	trainerID uint,
	from time.Time,
	to time.Time,
) ([]domain.Block, error) {

	var events []models.BlockingEvent
	if err := s.db.WithContext(ctx).
		Joins("JOIN blocking_event_trainers bet ON bet.blocking_event_id = blocking_events.id").
		Where(
			"blocking_events.club_id = ? AND bet.trainer_id = ? AND blocking_events.date BETWEEN ? AND ?",
			clubID, trainerID, from, to,
		).
		Find(&events).Error; err != nil {
		return nil, err
	}

	blocks := make([]domain.Block, 0, len(events))
	for _, ev := range events {
		w, err := domain.NewWindow(domain.TimeOfDay(ev.StartMin), domain.TimeOfDay(ev.EndMin))
		if err != nil {
			continue
		}
		blocks = append(blocks, domain.Block{
			ClubID:    ev.ClubID,
			TrainerID: trainerID,
			Date:      ev.Date.Format(domain.DateLayout),
			Window:    w,
			Source:    "club_schedule",
		})
	}
	return blocks, nil
}

var _ domain.BlockSource = (*BlockingEventSource)(nil)
