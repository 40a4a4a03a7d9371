package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/lesson-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
)

// ======================================================
// UPSERT RULE
// ======================================================

type UpsertRuleInput struct {
	ClubID      uint
	TrainerID   uint
	Weekday     int
	Morning     domain.MaybeWindow
	Afternoon   domain.MaybeWindow
	DurationMin int
	Active      bool
}

type UpsertRule struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewUpsertRule(repo domain.Repository, audit *audit.Dispatcher) *UpsertRule {
	return &UpsertRule{repo: repo, audit: audit}
}

func (uc *UpsertRule) Execute(ctx context.Context, in UpsertRuleInput) (domain.Rule, error) {
	rule := domain.Rule{
		TrainerID:   in.TrainerID,
		Weekday:     time.Weekday(in.Weekday),
		Morning:     in.Morning,
		Afternoon:   in.Afternoon,
		DurationMin: in.DurationMin,
		Active:      in.Active,
	}
	if rule.DurationMin == 0 {
		rule.DurationMin = domain.DefaultSlotDuration
	}
	if err := rule.Validate(); err != nil {
		return domain.Rule{}, err
	}

	row := rule.ToModel()
	if err := uc.repo.UpsertRule(ctx, &row); err != nil {
		return domain.Rule{}, fmt.Errorf("upsert rule: %w", err)
	}

	trainerID := in.TrainerID
	uc.audit.Dispatch(audit.Event{
		ClubID:    in.ClubID,
		TrainerID: &trainerID,
		Action:    "availability_rule_upserted",
		Entity:    "availability_rule",
		EntityID:  audit.Uint(row.ID),
		Metadata:  map[string]int{"weekday": in.Weekday},
	})

	return rule, nil
}

// ======================================================
// LIST RULES
// ======================================================

type ListRules struct {
	repo domain.Repository
}

func NewListRules(repo domain.Repository) *ListRules {
	return &ListRules{repo: repo}
}

func (uc *ListRules) Execute(ctx context.Context, trainerID uint) ([]domain.Rule, error) {
	rows, err := uc.repo.ListRules(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	out := make([]domain.Rule, 0, len(rows))
	for _, row := range rows {
		r, err := domain.RuleFromModel(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
