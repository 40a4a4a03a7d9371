// Package memory guarda reservas e disponibilidade em memória, com as mesmas
// escritas condicionadas do repositório Postgres. Usado em testes e no modo local.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

type ruleKey struct {
	trainerID uint
	weekday   int
}

type exceptionKey struct {
	trainerID uint
	date      string
}

type Store struct {
	mu sync.Mutex

	clubs    map[uint]models.Club
	trainers map[uint]models.Trainer

	bookings map[uint]*models.Booking
	nextID   uint

	rules      map[ruleKey]models.AvailabilityRule
	exceptions map[exceptionKey]models.AvailabilityException
	blocks     []availability.Block

	auditLogs []models.AuditLog

	now func() time.Time
}

func New() *Store {
	return &Store{
		clubs:      make(map[uint]models.Club),
		trainers:   make(map[uint]models.Trainer),
		bookings:   make(map[uint]*models.Booking),
		rules:      make(map[ruleKey]models.AvailabilityRule),
		exceptions: make(map[exceptionKey]models.AvailabilityException),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ======================================================
// Seed
// ======================================================

func (s *Store) AddClub(c models.Club) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clubs[c.ID] = c
}

func (s *Store) AddTrainer(t models.Trainer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trainers[t.ID] = t
}

// AddBlock registra uma aula em grupo. TrainerID zero bloqueia o clube inteiro.
func (s *Store) AddBlock(b availability.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, b)
}

// ======================================================
// Club / Trainer
// ======================================================

func (s *Store) GetClubByID(_ context.Context, id uint) (*models.Club, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clubs[id]
	if !ok {
		return nil, booking.ErrClubNotFound
	}
	return &c, nil
}

func (s *Store) GetTrainer(_ context.Context, clubID, trainerID uint) (*models.Trainer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trainers[trainerID]
	if !ok || t.ClubID != clubID {
		return nil, booking.ErrTrainerNotFound
	}
	return &t, nil
}

// ======================================================
// Booking
// ======================================================

func (s *Store) CreateBooking(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.bookings {
		if other.TrainerID != b.TrainerID ||
			!other.LessonDate.Equal(b.LessonDate) ||
			!booking.StatusOf(other).IsActive() {
			continue
		}
		if b.StartMin < other.EndMin && other.StartMin < b.EndMin {
			return booking.ErrSlotUnavailable
		}
	}

	s.nextID++
	now := s.now()

	b.ID = s.nextID
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Status == "" {
		b.Status = string(booking.StatusPending)
	}
	if b.HoldStatus == "" {
		b.HoldStatus = string(booking.HoldNone)
	}

	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *Store) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) GetBookingBySession(_ context.Context, sessionID string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookings {
		if b.PaymentSessionID != nil && *b.PaymentSessionID == sessionID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, booking.ErrNotFound
}

func (s *Store) ListBookings(_ context.Context, f booking.ListFilter) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if f.ClubID != 0 && b.ClubID != f.ClubID {
			continue
		}
		if f.TrainerID != 0 && b.TrainerID != f.TrainerID {
			continue
		}
		if f.Status != "" && b.Status != string(f.Status) {
			continue
		}
		if f.Hold != "" && b.HoldStatus != string(f.Hold) {
			continue
		}
		if f.From != nil && b.LessonDate.Before(*f.From) {
			continue
		}
		if f.To != nil && b.LessonDate.After(*f.To) {
			continue
		}
		if f.UpdatedSince != nil && !b.UpdatedAt.After(*f.UpdatedSince) {
			continue
		}
		out = append(out, *b)
	}

	sortBookings(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) ListActiveBookings(
	_ context.Context,
	trainerID uint,
	from time.Time,
	to time.Time,
) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if b.TrainerID != trainerID || !booking.StatusOf(b).IsActive() {
			continue
		}
		if b.LessonDate.Before(from) || b.LessonDate.After(to) {
			continue
		}
		out = append(out, *b)
	}
	sortBookings(out)
	return out, nil
}

func (s *Store) TransitionStatus(
	_ context.Context,
	id uint,
	t booking.Transition,
) (*models.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.bookings[id]
	if !ok {
		return nil, false, booking.ErrNotFound
	}

	next := *cur
	if err := booking.Apply(&next, t); err != nil {
		if httperr.IsConflict(err) {
			cp := *cur
			return &cp, false, nil
		}
		return nil, false, err
	}

	next.UpdatedAt = stamp(t.At, s.now)
	*cur = next
	return &next, true, nil
}

func (s *Store) ExpireDue(_ context.Context, now time.Time, limit int) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*models.Booking
	for _, b := range s.bookings {
		if booking.Expired(b, now) {
			due = append(due, b)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].AutoCancelAt.Equal(*due[j].AutoCancelAt) {
			return due[i].ID < due[j].ID
		}
		return due[i].AutoCancelAt.Before(*due[j].AutoCancelAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	out := make([]models.Booking, 0, len(due))
	for _, b := range due {
		_ = booking.Apply(b, booking.Transition{
			To:     booking.StatusExpired,
			At:     now,
			Reason: booking.ReasonTimeout,
		})
		b.UpdatedAt = now
		out = append(out, *b)
	}
	return out, nil
}

func (s *Store) AdvanceHold(
	_ context.Context,
	id uint,
	u booking.HoldUpdate,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return false, booking.ErrNotFound
	}
	if !booking.CanAdvanceHold(booking.HoldOf(b), u.To) {
		return false, nil
	}

	b.HoldStatus = string(u.To)
	if u.Ref != nil {
		ref := *u.Ref
		b.HoldRef = &ref
	}
	b.UpdatedAt = stamp(u.At, s.now)
	return true, nil
}

func stamp(at time.Time, fallback func() time.Time) time.Time {
	if at.IsZero() {
		return fallback()
	}
	return at
}

func (s *Store) ListHoldsToReconcile(_ context.Context, limit int) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if needsReconcile(b) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func needsReconcile(b *models.Booking) bool {
	if booking.MethodOf(b) != booking.PaymentHeldRemote || !booking.HoldOf(b).NeedsGateway() {
		return false
	}
	return !(booking.StatusOf(b) == booking.StatusPending && booking.HoldOf(b) == booking.HoldHeld)
}

func sortBookings(bs []models.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		if !bs[i].LessonDate.Equal(bs[j].LessonDate) {
			return bs[i].LessonDate.Before(bs[j].LessonDate)
		}
		if bs[i].StartMin != bs[j].StartMin {
			return bs[i].StartMin < bs[j].StartMin
		}
		return bs[i].ID < bs[j].ID
	})
}

// Compile-time check
var _ booking.Repository = (*Store)(nil)
