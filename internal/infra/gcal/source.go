// Package gcal lê a grade de aulas em grupo do clube a partir de uma
// agenda do Google e a transforma em bloqueios por treinador.
package gcal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/BruksfildServices01/lesson-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
	"github.com/BruksfildServices01/lesson-scheduler/internal/timezone"
)

// Directory resolve clube e treinador; o repositório de reservas atende.
type Directory interface {
	GetClubByID(ctx context.Context, id uint) (*models.Club, error)
	GetTrainer(ctx context.Context, clubID uint, trainerID uint) (*models.Trainer, error)
}

// EventLister isola a chamada à API para os testes.
type EventLister interface {
	List(ctx context.Context, calendarID string, from, to time.Time) ([]*calendar.Event, error)
}

type Source struct {
	events    EventLister
	directory Directory
	calendars map[uint]string
}

// New cria a fonte; calendars mapeia ID do clube para ID da agenda.
func New(events EventLister, directory Directory, calendars map[uint]string) *Source {
	return &Source{events: events, directory: directory, calendars: calendars}
}

// ParseCalendars lê o formato "clubID:calendarID" da configuração.
func ParseCalendars(raw map[string]string) (map[uint]string, error) {
	out := make(map[uint]string, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseUint(strings.TrimSpace(k), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid club id %q in calendar map", k)
		}
		out[uint(id)] = strings.TrimSpace(v)
	}
	return out, nil
}

// ListBlocks devolve os eventos que envolvem o treinador. Evento sem
// convidados vale para o clube inteiro.
func (s *Source) ListBlocks(
	ctx context.Context,
	clubID uint,
	trainerID uint,
	from time.Time,
	to time.Time,
) ([]availability.Block, error) {

	calID, ok := s.calendars[clubID]
	if !ok || calID == "" {
		return nil, nil
	}

	club, err := s.directory.GetClubByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	trainer, err := s.directory.GetTrainer(ctx, clubID, trainerID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(club.Timezone)
	rangeStart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	rangeEnd := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)

	items, err := s.events.List(ctx, calID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}

	var blocks []availability.Block
	for _, item := range items {
		if item == nil || item.Status == "cancelled" || item.Transparency == "transparent" {
			continue
		}
		if !involves(item, trainer.Email) {
			continue
		}

		start, end, ok := eventBounds(item, loc)
		if !ok {
			continue
		}
		blocks = append(blocks, split(clubID, trainerID, start, end, loc)...)
	}
	return blocks, nil
}

func involves(ev *calendar.Event, email string) bool {
	if len(ev.Attendees) == 0 {
		return true
	}
	for _, a := range ev.Attendees {
		if a != nil && strings.EqualFold(a.Email, email) {
			return true
		}
	}
	return false
}

func eventBounds(ev *calendar.Event, loc *time.Location) (time.Time, time.Time, bool) {
	if ev.Start == nil || ev.End == nil {
		return time.Time{}, time.Time{}, false
	}

	// dia inteiro
	if ev.Start.DateTime == "" {
		s, err1 := time.ParseInLocation("2006-01-02", ev.Start.Date, loc)
		e, err2 := time.ParseInLocation("2006-01-02", ev.End.Date, loc)
		if err1 != nil || err2 != nil {
			return time.Time{}, time.Time{}, false
		}
		return s, e, true
	}

	s, err1 := time.Parse(time.RFC3339, ev.Start.DateTime)
	e, err2 := time.Parse(time.RFC3339, ev.End.DateTime)
	if err1 != nil || err2 != nil || !e.After(s) {
		return time.Time{}, time.Time{}, false
	}
	return s.In(loc), e.In(loc), true
}

// split corta o intervalo em um bloqueio por dia civil do clube.
func split(clubID, trainerID uint, start, end time.Time, loc *time.Location) []availability.Block {
	var out []availability.Block

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	for day.Before(end) {
		next := day.AddDate(0, 0, 1)

		s := start
		if s.Before(day) {
			s = day
		}
		e := end
		if e.After(next) {
			e = next
		}

		startMin := s.Hour()*60 + s.Minute()
		endMin := 24 * 60
		if e.Before(next) {
			endMin = e.Hour()*60 + e.Minute()
			if e.Second() > 0 {
				endMin++
			}
		}

		if w, err := availability.NewWindow(availability.TimeOfDay(startMin), availability.TimeOfDay(endMin)); err == nil {
			out = append(out, availability.Block{
				ClubID:    clubID,
				TrainerID: trainerID,
				Date:      day.Format(availability.DateLayout),
				Window:    w,
				Source:    "google_calendar",
			})
		}
		day = next
	}
	return out
}

// ======================================================
// Google Calendar API
// ======================================================

type apiLister struct {
	svc *calendar.Service
}

// NewAPILister autentica com a conta de serviço do arquivo informado.
func NewAPILister(ctx context.Context, credentialsFile string) (EventLister, error) {
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &apiLister{svc: svc}, nil
}

func (l *apiLister) List(ctx context.Context, calendarID string, from, to time.Time) ([]*calendar.Event, error) {
	var out []*calendar.Event

	call := l.svc.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		Context(ctx)

	err := call.Pages(ctx, func(page *calendar.Events) error {
		out = append(out, page.Items...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ availability.BlockSource = (*Source)(nil)
