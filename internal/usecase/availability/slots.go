package availability

import (
	"context"
	"fmt"
	"time"

	domain "github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/slot"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
)

// MaxRangeDays limita o intervalo de uma consulta de horários.
const MaxRangeDays = 62

const defaultRangeDays = 7

// ======================================================
// DEPENDENCIES
// ======================================================

type BookingReader interface {
	ListActiveBookings(
		ctx context.Context,
		trainerID uint,
		from time.Time,
		to time.Time,
	) ([]models.Booking, error)
}

type Directory interface {
	GetClubByID(ctx context.Context, id uint) (*models.Club, error)
	GetTrainer(ctx context.Context, clubID, trainerID uint) (*models.Trainer, error)
}

// ======================================================
// SLOT LOADER
// ======================================================

// SlotLoader junta regras, exceções, bloqueios e reservas e roda o gerador.
type SlotLoader struct {
	repo     domain.Repository
	bookings BookingReader
	blocks   domain.BlockSource
}

func NewSlotLoader(
	repo domain.Repository,
	bookings BookingReader,
	blocks domain.BlockSource,
) *SlotLoader {
	return &SlotLoader{
		repo:     repo,
		bookings: bookings,
		blocks:   blocks,
	}
}

func (l *SlotLoader) Load(
	ctx context.Context,
	clubID uint,
	trainerID uint,
	from time.Time,
	to time.Time,
) ([]slot.ComputedSlot, error) {

	ruleRows, err := l.repo.ListRules(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	rules := make([]domain.Rule, 0, len(ruleRows))
	for _, row := range ruleRows {
		r, err := domain.RuleFromModel(row)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", row.ID, err)
		}
		rules = append(rules, r)
	}

	exRows, err := l.repo.ListExceptions(ctx, trainerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list exceptions: %w", err)
	}
	exceptions := make([]domain.Exception, 0, len(exRows))
	for _, row := range exRows {
		ex, err := domain.ExceptionFromModel(row)
		if err != nil {
			return nil, fmt.Errorf("exception %d: %w", row.ID, err)
		}
		exceptions = append(exceptions, ex)
	}

	var blocks []domain.Block
	if l.blocks != nil {
		blocks, err = l.blocks.ListBlocks(ctx, clubID, trainerID, from, to)
		if err != nil {
			return nil, fmt.Errorf("list blocks: %w", err)
		}
	}

	active, err := l.bookings.ListActiveBookings(ctx, trainerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	refs := make([]slot.BookingRef, 0, len(active))
	for _, b := range active {
		refs = append(refs, booking.ToSlotRef(b))
	}

	return slot.Generate(slot.Input{
		From:       from,
		To:         to,
		Rules:      rules,
		Exceptions: exceptions,
		Blocks:     blocks,
		Bookings:   refs,
	}), nil
}

// ======================================================
// GET SLOTS
// ======================================================

type GetSlotsInput struct {
	ClubID    uint
	TrainerID uint
	From      string // YYYY-MM-DD, vazio = hoje no fuso do clube
	To        string
}

type GetSlots struct {
	directory Directory
	loader    *SlotLoader
	clock     timezone.Clock
}

func NewGetSlots(directory Directory, loader *SlotLoader, clock timezone.Clock) *GetSlots {
	return &GetSlots{
		directory: directory,
		loader:    loader,
		clock:     clock,
	}
}

func (uc *GetSlots) Execute(ctx context.Context, in GetSlotsInput) ([]slot.ComputedSlot, error) {
	club, err := uc.directory.GetClubByID(ctx, in.ClubID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.directory.GetTrainer(ctx, in.ClubID, in.TrainerID); err != nil {
		return nil, err
	}

	from, to, err := ParseRange(in.From, in.To, timezone.Today(uc.clock.Now(), club.Timezone))
	if err != nil {
		return nil, err
	}

	slots, err := uc.loader.Load(ctx, in.ClubID, in.TrainerID, from, to)
	if err != nil {
		return nil, err
	}
	if slots == nil {
		slots = []slot.ComputedSlot{}
	}
	return slots, nil
}

// ParseRange valida o intervalo inclusivo [from, to].
func ParseRange(fromStr, toStr string, today time.Time) (time.Time, time.Time, error) {
	from := today
	if fromStr != "" {
		d, err := timezone.ParseDate(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, httperr.ErrValidation("invalid_date")
		}
		from = d
	}

	to := from.AddDate(0, 0, defaultRangeDays-1)
	if toStr != "" {
		d, err := timezone.ParseDate(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, httperr.ErrValidation("invalid_date")
		}
		to = d
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, httperr.ErrValidation("invalid_range")
	}
	if to.Sub(from) >= MaxRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, httperr.ErrValidation("range_too_large")
	}
	return from, to, nil
}
