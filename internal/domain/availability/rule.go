package availability

import (
	"context"
	"time"

	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
)

const DateLayout = "2006-01-02"

var allowedDurations = map[int]bool{60: true, 90: true, 120: true}

const DefaultSlotDuration = 60

func ValidDuration(min int) bool {
	return allowedDurations[min]
}

// Rule é a disponibilidade semanal de um treinador para um dia da semana.
type Rule struct {
	TrainerID   uint         `json:"trainer_id"`
	Weekday     time.Weekday `json:"weekday"`
	Morning     MaybeWindow  `json:"morning"`
	Afternoon   MaybeWindow  `json:"afternoon"`
	DurationMin int          `json:"slot_duration_min"`
	Active      bool         `json:"active"`
}

func (r Rule) Validate() error {
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		return httperr.ErrValidation("invalid_weekday")
	}
	if !ValidDuration(r.DurationMin) {
		return httperr.ErrValidation("invalid_duration")
	}
	m, okM := r.Morning.Get()
	a, okA := r.Afternoon.Get()
	if okM && okA && m.Overlaps(a) {
		return httperr.ErrValidation("overlapping_windows")
	}
	return nil
}

// Exception substitui a regra semanal numa data específica.
// Sem janelas, o dia está fechado.
type Exception struct {
	TrainerID   uint        `json:"trainer_id"`
	Date        string      `json:"date"`
	Morning     MaybeWindow `json:"morning"`
	Afternoon   MaybeWindow `json:"afternoon"`
	DurationMin int         `json:"slot_duration_min,omitempty"` // 0 = herda da regra
}

func (e Exception) Closed() bool {
	return !e.Morning.IsPresent() && !e.Afternoon.IsPresent()
}

func (e Exception) Validate() error {
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return httperr.ErrValidation("invalid_date")
	}
	if e.DurationMin != 0 && !ValidDuration(e.DurationMin) {
		return httperr.ErrValidation("invalid_duration")
	}
	m, okM := e.Morning.Get()
	a, okA := e.Afternoon.Get()
	if okM && okA && m.Overlaps(a) {
		return httperr.ErrValidation("overlapping_windows")
	}
	return nil
}

// Block é uma ocupação externa (aula em grupo) que remove tempo da agenda.
type Block struct {
	ClubID    uint
	TrainerID uint
	Date      string
	Window    Window
	Source    string
}

// BlockSource fornece os bloqueios de um treinador num intervalo de datas (inclusivo).
type BlockSource interface {
	ListBlocks(
		ctx context.Context,
		clubID uint,
		trainerID uint,
		from time.Time,
		to time.Time,
	) ([]Block, error)
}

// MultiSource junta vários feeds de bloqueio.
type MultiSource []BlockSource

func (m MultiSource) ListBlocks(
	ctx context.Context,
	clubID uint,
	trainerID uint,
	from time.Time,
	to time.Time,
) ([]Block, error) {
	var out []Block
	for _, src := range m {
		if src == nil {
			continue
		}
		blocks, err := src.ListBlocks(ctx, clubID, trainerID, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, blocks...)
	}
	return out, nil
}
