package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
	"github.com/BruksfildServices01/lesson-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
)

type fixture struct {
	store  *memory.Store
	slots  *GetSlots
	upsert *UpsertRule
	exUp   *UpsertException
	exDel  *DeleteException
	list   *ListRules
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	store.AddClub(models.Club{ID: 1, Name: "Clube", Timezone: "UTC"})
	store.AddTrainer(models.Trainer{ID: 1, ClubID: 1, Name: "Ana", Active: true})

	clock := timezone.NewFixedClock(time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC))
	loader := NewSlotLoader(store, store, store)

	return &fixture{
		store:  store,
		slots:  NewGetSlots(store, loader, clock),
		upsert: NewUpsertRule(store, nil),
		exUp:   NewUpsertException(store, nil),
		exDel:  NewDeleteException(store, nil),
		list:   NewListRules(store),
	}
}

func mustWindow(t *testing.T, start, end string) domain.MaybeWindow {
	t.Helper()
	w, err := domain.ParseWindow(start, end)
	require.NoError(t, err)
	return domain.Present(w)
}

func (f *fixture) mondayMorning(t *testing.T) {
	t.Helper()
	_, err := f.upsert.Execute(context.Background(), UpsertRuleInput{
		ClubID:      1,
		TrainerID:   1,
		Weekday:     int(time.Monday),
		Morning:     mustWindow(t, "09:00", "11:00"),
		DurationMin: 60,
		Active:      true,
	})
	require.NoError(t, err)
}

func TestGetSlotsForWeek(t *testing.T) {
	f := newFixture(t)
	f.mondayMorning(t)

	slots, err := f.slots.Execute(context.Background(), GetSlotsInput{
		ClubID: 1, TrainerID: 1, From: "2026-10-16", To: "2026-10-22",
	})
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "2026-10-19", slots[0].Date)
	assert.Equal(t, "09:00", slots[0].Start.String())
	assert.Equal(t, "10:00", slots[1].Start.String())
}

func TestGroupClassBlocksSlots(t *testing.T) {
	f := newFixture(t)
	f.mondayMorning(t)

	w, err := domain.ParseWindow("09:30", "10:30")
	require.NoError(t, err)
	f.store.AddBlock(domain.Block{ClubID: 1, TrainerID: 1, Date: "2026-10-19", Window: w})

	slots, err := f.slots.Execute(context.Background(), GetSlotsInput{
		ClubID: 1, TrainerID: 1, From: "2026-10-19", To: "2026-10-19",
	})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestExceptionLifecycle(t *testing.T) {
	f := newFixture(t)
	f.mondayMorning(t)
	ctx := context.Background()
	in := GetSlotsInput{ClubID: 1, TrainerID: 1, From: "2026-10-19", To: "2026-10-19"}

	ex, err := f.exUp.Execute(ctx, UpsertExceptionInput{ClubID: 1, TrainerID: 1, Date: "2026-10-19"})
	require.NoError(t, err)
	assert.True(t, ex.Closed())

	slots, err := f.slots.Execute(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, slots)

	require.NoError(t, f.exDel.Execute(ctx, 1, 1, "2026-10-19"))

	slots, err = f.slots.Execute(ctx, in)
	require.NoError(t, err)
	assert.Len(t, slots, 2)

	err = f.exDel.Execute(ctx, 1, 1, "2026-10-19")
	assert.True(t, httperr.IsBusiness(err, "exception_not_found"))
}

func TestUpsertRuleValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.upsert.Execute(ctx, UpsertRuleInput{TrainerID: 1, Weekday: 1, DurationMin: 45})
	assert.True(t, httperr.IsBusiness(err, "invalid_duration"))

	_, err = f.upsert.Execute(ctx, UpsertRuleInput{TrainerID: 1, Weekday: 9, DurationMin: 60})
	assert.True(t, httperr.IsBusiness(err, "invalid_weekday"))

	_, err = f.upsert.Execute(ctx, UpsertRuleInput{
		TrainerID:   1,
		Weekday:     1,
		Morning:     mustWindow(t, "08:00", "13:00"),
		Afternoon:   mustWindow(t, "12:00", "18:00"),
		DurationMin: 60,
	})
	assert.True(t, httperr.IsBusiness(err, "overlapping_windows"))
}

func TestUpsertRuleReplacesWeekday(t *testing.T) {
	f := newFixture(t)
	f.mondayMorning(t)
	ctx := context.Background()

	_, err := f.upsert.Execute(ctx, UpsertRuleInput{
		ClubID:      1,
		TrainerID:   1,
		Weekday:     int(time.Monday),
		Afternoon:   mustWindow(t, "14:00", "18:00"),
		DurationMin: 120,
		Active:      true,
	})
	require.NoError(t, err)

	rules, err := f.list.Execute(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.False(t, rules[0].Morning.IsPresent())
	assert.Equal(t, 120, rules[0].DurationMin)
}

func TestParseRange(t *testing.T) {
	today := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	from, to, err := ParseRange("", "", today)
	require.NoError(t, err)
	assert.Equal(t, today, from)
	assert.Equal(t, "2026-10-22", timezone.FormatDate(to))

	_, _, err = ParseRange("2026-10-20", "2026-10-19", today)
	assert.True(t, httperr.IsBusiness(err, "invalid_range"))

	_, _, err = ParseRange("2026-10-01", "2026-12-31", today)
	assert.True(t, httperr.IsBusiness(err, "range_too_large"))

	_, _, err = ParseRange("19/10/2026", "", today)
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))
}

func TestUnknownTrainer(t *testing.T) {
	f := newFixture(t)

	_, err := f.slots.Execute(context.Background(), GetSlotsInput{ClubID: 1, TrainerID: 99})
	assert.Equal(t, httperr.KindNotFound, httperr.KindOf(err))
}
