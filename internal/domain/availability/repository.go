package availability

import (
	"context"
	"time"

	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

type Repository interface {
	// -------- Rules --------
	ListRules(
		ctx context.Context,
		trainerID uint,
	) ([]models.AvailabilityRule, error)

	UpsertRule(
		ctx context.Context,
		rule *models.AvailabilityRule,
	) error

	// -------- Exceptions --------
	ListExceptions(
		ctx context.Context,
		trainerID uint,
		from time.Time,
		to time.Time,
	) ([]models.AvailabilityException, error)

	UpsertException(
		ctx context.Context,
		ex *models.AvailabilityException,
	) error

	DeleteException(
		ctx context.Context,
		trainerID uint,
		date time.Time,
	) (bool, error)
}
