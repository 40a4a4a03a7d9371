// Package slot calcula a grade de horários de um treinador.
//
// Generate é uma função pura: as mesmas entradas sempre produzem a mesma
// sequência, por isso a grade é recalculada a cada leitura e nunca é cacheada.
package slot

import (
	"sort"
	"time"

	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
)

type Status string

const (
	StatusFree      Status = "free"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

type ComputedSlot struct {
	Date      string                 `json:"date"`
	Start     availability.TimeOfDay `json:"start"`
	End       availability.TimeOfDay `json:"end"`
	Status    Status                 `json:"status"`
	BookingID *uint                  `json:"booking_id,omitempty"`
}

func (s ComputedSlot) Window() availability.Window {
	return availability.Window{Start: s.Start, End: s.End}
}

// BookingRef é a parte de uma reserva ativa (pending/confirmed) que ocupa a grade.
type BookingRef struct {
	ID     uint
	Date   string
	Start  availability.TimeOfDay
	End    availability.TimeOfDay
	Status Status
}

func (b BookingRef) window() availability.Window {
	return availability.Window{Start: b.Start, End: b.End}
}

type Input struct {
	From       time.Time
	To         time.Time
	Rules      []availability.Rule
	Exceptions []availability.Exception
	Blocks     []availability.Block
	Bookings   []BookingRef
}

// Generate percorre cada data de [From, To] e devolve os slots ordenados
// por data e horário de início.
func Generate(in Input) []ComputedSlot {
	rules := make(map[time.Weekday]availability.Rule, len(in.Rules))
	for _, r := range in.Rules {
		rules[r.Weekday] = r
	}

	exceptions := make(map[string]availability.Exception, len(in.Exceptions))
	for _, ex := range in.Exceptions {
		exceptions[ex.Date] = ex
	}

	blocks := make(map[string][]availability.Window)
	for _, b := range in.Blocks {
		blocks[b.Date] = append(blocks[b.Date], b.Window)
	}

	bookings := make(map[string][]BookingRef)
	for _, b := range in.Bookings {
		if b.Status != StatusPending && b.Status != StatusConfirmed {
			continue
		}
		bookings[b.Date] = append(bookings[b.Date], b)
	}

	from := civil(in.From)
	to := civil(in.To)

	var out []ComputedSlot
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(availability.DateLayout)

		windows, duration := resolveDay(d, key, rules, exceptions)
		out = append(out, generateDay(key, windows, duration, blocks[key], bookings[key])...)
	}

	return out
}

// resolveDay aplica a precedência exceção > regra semanal.
func resolveDay(
	d time.Time,
	key string,
	rules map[time.Weekday]availability.Rule,
	exceptions map[string]availability.Exception,
) ([]availability.Window, int) {

	rule, hasRule := rules[d.Weekday()]

	duration := availability.DefaultSlotDuration
	if hasRule && availability.ValidDuration(rule.DurationMin) {
		duration = rule.DurationMin
	}

	if ex, ok := exceptions[key]; ok {
		if availability.ValidDuration(ex.DurationMin) {
			duration = ex.DurationMin
		}
		return presentWindows(ex.Morning, ex.Afternoon), duration
	}

	if !hasRule || !rule.Active {
		return nil, duration
	}

	return presentWindows(rule.Morning, rule.Afternoon), duration
}

func presentWindows(ms ...availability.MaybeWindow) []availability.Window {
	var out []availability.Window
	for _, m := range ms {
		if w, ok := m.Get(); ok {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func generateDay(
	date string,
	windows []availability.Window,
	duration int,
	blocks []availability.Window,
	bookings []BookingRef,
) []ComputedSlot {

	var day []ComputedSlot
	matched := make(map[int]bool, len(bookings))

	for _, w := range windows {
		for start := w.Start; start.Add(duration) <= w.End; start = start.Add(duration) {
			sub := availability.Window{Start: start, End: start.Add(duration)}

			if overlapsAny(sub, blocks) {
				continue
			}

			s := ComputedSlot{Date: date, Start: sub.Start, End: sub.End, Status: StatusFree}

			idx, exact := findBooking(sub, bookings)
			if idx >= 0 && !exact {
				// reserva fora da grade atual ocupa parte deste intervalo
				continue
			}
			if exact {
				s.Status = bookings[idx].Status
				id := bookings[idx].ID
				s.BookingID = &id
				matched[idx] = true
			}

			day = append(day, s)
		}
	}

	// reservas que não casam com a grade atual continuam ocupando seu horário
	for i, b := range bookings {
		if matched[i] || overlapsAny(b.window(), blocks) {
			continue
		}
		id := b.ID
		day = append(day, ComputedSlot{
			Date:      date,
			Start:     b.Start,
			End:       b.End,
			Status:    b.Status,
			BookingID: &id,
		})
	}

	sort.SliceStable(day, func(i, j int) bool { return day[i].Start < day[j].Start })
	return day
}

// findBooking devolve o índice da primeira reserva que sobrepõe o intervalo e
// se ela coincide exatamente com ele. Coincidências exatas têm prioridade.
func findBooking(sub availability.Window, bookings []BookingRef) (int, bool) {
	overlap := -1
	for i, b := range bookings {
		if b.Start == sub.Start && b.End == sub.End {
			return i, true
		}
		if overlap < 0 && b.window().Overlaps(sub) {
			overlap = i
		}
	}
	return overlap, false
}

func overlapsAny(w availability.Window, others []availability.Window) bool {
	for _, o := range others {
		if w.Overlaps(o) {
			return true
		}
	}
	return false
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Find procura o slot livre que começa em start com a duração pedida.
func Find(slots []ComputedSlot, date string, start availability.TimeOfDay, duration int) (ComputedSlot, bool) {
	for _, s := range slots {
		if s.Date == date && s.Start == start && int(s.End-s.Start) == duration {
			return s, true
		}
	}
	return ComputedSlot{}, false
}
