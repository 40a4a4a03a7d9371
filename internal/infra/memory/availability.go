package memory

import (
	"context"
	"sort"
	"time"

	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

func (s *Store) ListRules(_ context.Context, trainerID uint) ([]models.AvailabilityRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.AvailabilityRule, 0, 7)
	for k, r := range s.rules {
		if k.trainerID == trainerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out, nil
}

func (s *Store) UpsertRule(_ context.Context, rule *models.AvailabilityRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := ruleKey{trainerID: rule.TrainerID, weekday: rule.Weekday}
	now := s.now()

	if prev, ok := s.rules[k]; ok {
		rule.ID = prev.ID
		rule.CreatedAt = prev.CreatedAt
	} else {
		s.nextID++
		rule.ID = s.nextID
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	s.rules[k] = *rule
	return nil
}

func (s *Store) ListExceptions(
	_ context.Context,
	trainerID uint,
	from time.Time,
	to time.Time,
) ([]models.AvailabilityException, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.AvailabilityException, 0)
	for k, ex := range s.exceptions {
		if k.trainerID != trainerID || ex.Date.Before(from) || ex.Date.After(to) {
			continue
		}
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) UpsertException(_ context.Context, ex *models.AvailabilityException) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := exceptionKey{trainerID: ex.TrainerID, date: ex.Date.Format(availability.DateLayout)}
	now := s.now()

	if prev, ok := s.exceptions[k]; ok {
		ex.ID = prev.ID
		ex.CreatedAt = prev.CreatedAt
	} else {
		s.nextID++
		ex.ID = s.nextID
		ex.CreatedAt = now
	}
	ex.UpdatedAt = now

	s.exceptions[k] = *ex
	return nil
}

func (s *Store) DeleteException(_ context.Context, trainerID uint, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := exceptionKey{trainerID: trainerID, date: date.Format(availability.DateLayout)}
	if _, ok := s.exceptions[k]; !ok {
		return false, nil
	}
	delete(s.exceptions, k)
	return true, nil
}

// ListBlocks implementa availability.BlockSource.
func (s *Store) ListBlocks(
	_ context.Context,
	clubID uint,
	trainerID uint,
	from time.Time,
	to time.Time,
) ([]availability.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fromKey := from.Format(availability.DateLayout)
	toKey := to.Format(availability.DateLayout)

	var out []availability.Block
	for _, b := range s.blocks {
		if b.Date < fromKey || b.Date > toKey {
			continue
		}
		if b.TrainerID == trainerID || (b.TrainerID == 0 && b.ClubID == clubID) {
			out = append(out, b)
		}
	}
	return out, nil
}

var (
	_ availability.Repository  = (*Store)(nil)
	_ availability.BlockSource = (*Store)(nil)
)
