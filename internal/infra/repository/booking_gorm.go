package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

func activeStatuses() []string {
	return []string{string(domain.StatusPending), string(domain.StatusConfirmed)}
}

// --------------------------------------------------
// Club / Trainer
// --------------------------------------------------

func (r *BookingGormRepository) GetClubByID(
	ctx context.Context,
	id uint,
) (*models.Club, error) {

	var club models.Club
	if err := r.db.WithContext(ctx).First(&club, id).Error; err != nil {
		return nil, notFound(err, domain.ErrClubNotFound)
	}
	return &club, nil
}

func (r *BookingGormRepository) GetTrainer(
	ctx context.Context,
	clubID uint,
	trainerID uint,
) (*models.Trainer, error) {

	var trainer models.Trainer
	if err := r.db.WithContext(ctx).
		Where("id = ? AND club_id = ?", trainerID, clubID).
		First(&trainer).Error; err != nil {
		return nil, notFound(err, domain.ErrTrainerNotFound)
	}
	return &trainer, nil
}

// --------------------------------------------------
// Booking (create / conflict)
// --------------------------------------------------

// CreateBooking checa sobreposição com lock e insere na mesma transação.
// O índice único parcial e a constraint de exclusão cobrem a corrida que o
// lock não cobre (nenhuma linha para travar).
func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conflicts []models.Booking
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(
				"trainer_id = ? AND lesson_date = ? AND status IN ? AND start_min < ? AND end_min > ?",
				b.TrainerID, b.LessonDate, activeStatuses(), b.EndMin, b.StartMin,
			).
			Find(&conflicts).Error; err != nil {
			return err
		}

		if len(conflicts) > 0 {
			return domain.ErrSlotUnavailable
		}

		if err := tx.Create(b).Error; err != nil {
			if httperr.IsUniqueViolation(err) || httperr.IsExclusionConflict(err) {
				return domain.ErrSlotUnavailable
			}
			return err
		}
		return nil
	})
}

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingBySession(
	ctx context.Context,
	sessionID string,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("payment_session_id = ?", sessionID).
		First(&b).Error; err != nil {
		return nil, notFound(err, domain.ErrNotFound)
	}
	return &b, nil
}

func (r *BookingGormRepository) ListBookings(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Booking, error) {

	q := r.db.WithContext(ctx).Model(&models.Booking{})

	if f.ClubID != 0 {
		q = q.Where("club_id = ?", f.ClubID)
	}
	if f.TrainerID != 0 {
		q = q.Where("trainer_id = ?", f.TrainerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Hold != "" {
		q = q.Where("hold_status = ?", string(f.Hold))
	}
	if f.From != nil {
		q = q.Where("lesson_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("lesson_date <= ?", *f.To)
	}
	if f.UpdatedSince != nil {
		q = q.Where("updated_at > ?", *f.UpdatedSince)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var out []models.Booking
	if err := q.Order("lesson_date ASC, start_min ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingGormRepository) ListActiveBookings(
	ctx context.Context,
	trainerID uint,
	from time.Time,
	to time.Time,
) ([]models.Booking, error) {

	var out []models.Booking
	if err := r.db.WithContext(ctx).
		Select("id", "lesson_date", "start_min", "end_min", "status").
		Where(
			"trainer_id = ? AND status IN ? AND lesson_date BETWEEN ? AND ?",
			trainerID, activeStatuses(), from, to,
		).
		Order("lesson_date ASC, start_min ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// --------------------------------------------------
// Booking (state change)
// --------------------------------------------------

func (r *BookingGormRepository) TransitionStatus(
	ctx context.Context,
	id uint,
	t domain.Transition,
) (*models.Booking, bool, error) {

	if !t.To.IsTerminal() {
		return nil, false, httperr.ErrValidation("invalid_transition")
	}

	updates := map[string]any{
		"status":         string(t.To),
		"auto_cancel_at": nil,
		"decided_at":     t.At,
		"updated_at":     t.At,
	}
	if t.Reason != "" {
		updates["reason"] = t.Reason
	}

	q := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, string(domain.StatusPending))
	if t.NotAfter != nil {
		q = q.Where("auto_cancel_at > ?", *t.NotAfter)
	}

	var rows []models.Booking
	res := q.Model(&rows).Clauses(clause.Returning{}).Updates(updates)
	if res.Error != nil {
		return nil, false, res.Error
	}

	if res.RowsAffected == 0 || len(rows) == 0 {
		current, err := r.GetBooking(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return current, false, nil
	}
	return &rows[0], true, nil
}

const expireDueSQL = `
UPDATE bookings
SET status = ?, auto_cancel_at = NULL, decided_at = ?, reason = ?, updated_at = ?
WHERE id IN (
    SELECT id FROM bookings
    WHERE status = ? AND auto_cancel_at <= ?
    ORDER BY auto_cancel_at
    LIMIT ?
    FOR UPDATE SKIP LOCKED
)
RETURNING *`

// ExpireDue é um único UPDATE condicionado; varreduras concorrentes
// pulam as linhas já travadas e nunca expiram a mesma reserva duas vezes.
func (r *BookingGormRepository) ExpireDue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]models.Booking, error) {

	var rows []models.Booking
	if err := r.db.WithContext(ctx).
		Raw(expireDueSQL,
			string(domain.StatusExpired), now, domain.ReasonTimeout, now,
			string(domain.StatusPending), now,
			limit,
		).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --------------------------------------------------
// Payment hold
// --------------------------------------------------

func (r *BookingGormRepository) AdvanceHold(
	ctx context.Context,
	id uint,
	u domain.HoldUpdate,
) (bool, error) {

	sources := domain.HoldSources(u.To)
	if len(sources) == 0 {
		return false, nil
	}
	from := make([]string, 0, len(sources))
	for _, s := range sources {
		from = append(from, string(s))
	}

	updates := map[string]any{
		"hold_status": string(u.To),
		"updated_at":  u.At,
	}
	if u.Ref != nil {
		updates["hold_ref"] = *u.Ref
	}

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND hold_status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *BookingGormRepository) ListHoldsToReconcile(
	ctx context.Context,
	limit int,
) ([]models.Booking, error) {

	var out []models.Booking
	if err := r.db.WithContext(ctx).
		Where(
			"payment_method = ? AND hold_status IN ? AND NOT (status = ? AND hold_status = ?)",
			string(domain.PaymentHeldRemote),
			[]string{string(domain.HoldAuthorizing), string(domain.HoldHeld)},
			string(domain.StatusPending),
			string(domain.HoldHeld),
		).
		Order("id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func notFound(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
