package app

import (
	"context"
	"time"

	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/lesson-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

// Seed cria um clube de demonstração para o modo em memória:
// clube 1, treinador 1, segunda a sexta 08:00-12:00 e 14:00-18:00.
func Seed(store *memory.Store) {
	store.AddClub(models.Club{
		ID:                    1,
		Name:                  "Clube Demo",
		Timezone:              "America/Sao_Paulo",
		Currency:              "BRL",
		ResponseWindowMinutes: 24 * 60,
		MinAdvanceMinutes:     120,
		PlatformFeePercent:    10,
	})
	store.AddTrainer(models.Trainer{
		ID:                   1,
		ClubID:               1,
		Name:                 "Treinador Demo",
		Email:                "treinador@demo.local",
		HourlyRate:           150,
		ExtraParticipantRate: 30,
		MaxParticipants:      4,
		Active:               true,
	})

	morning, _ := availability.ParseWindow("08:00", "12:00")
	afternoon, _ := availability.ParseWindow("14:00", "18:00")

	for wd := time.Monday; wd <= time.Friday; wd++ {
		rule := availability.Rule{
			TrainerID:   1,
			Weekday:     wd,
			Morning:     availability.Present(morning),
			Afternoon:   availability.Present(afternoon),
			DurationMin: availability.DefaultSlotDuration,
			Active:      true,
		}.ToModel()
		_ = store.UpsertRule(context.Background(), &rule)
	}
}
