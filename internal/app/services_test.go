package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/lesson-scheduler/internal/config"
	"github.com/BruksfildServices01/lesson-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/lesson-scheduler/internal/notify"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
	ucAvailability "github.com/BruksfildServices01/lesson-scheduler/internal/usecase/availability"
)

func memoryInfra(store *memory.Store) *Infra {
	return &Infra{
		Bookings:     store,
		Availability: store,
		Blocks:       store,
		AuditWriter:  store,
		Notifier:     notify.NewLogNotifier(zap.NewNop()),
	}
}

func TestSeedCreatesWeekdayRules(t *testing.T) {
	store := memory.New()
	Seed(store)

	rules, err := store.ListRules(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, rules, 5)

	club, err := store.GetClubByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "BRL", club.Currency)
}

func TestServicesWithoutGateway(t *testing.T) {
	store := memory.New()
	Seed(store)

	clock := timezone.NewFixedClock(time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC))
	svc := NewServices(memoryInfra(store), &config.Config{SweepBatch: 10}, zap.NewNop(), clock)
	defer svc.Close()

	assert.Nil(t, svc.Payments)
	assert.Nil(t, svc.Reconcile)
	assert.Nil(t, svc.ReconcileJob(time.Minute).Run)

	// segunda 19/10: 8 horários de 60 min
	slots, err := svc.GetSlots.Execute(context.Background(), ucAvailability.GetSlotsInput{
		ClubID: 1, TrainerID: 1, From: "2026-10-19", To: "2026-10-19",
	})
	require.NoError(t, err)
	assert.Len(t, slots, 8)

	n, err := svc.Sweep.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
