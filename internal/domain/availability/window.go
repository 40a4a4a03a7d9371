package availability

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/BruksfildServices01/lesson-scheduler/internal/httperr"
)

// TimeOfDay são minutos desde a meia-noite.
type TimeOfDay int

const minutesPerDay = 24 * 60

func ParseTimeOfDay(hm string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return 0, httperr.ErrValidation("invalid_time")
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

// On combina a data com o horário no fuso da data.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		int(t)/60, int(t)%60, 0, 0,
		date.Location(),
	)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ===============================
// Window
// ===============================

type Window struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func NewWindow(start, end TimeOfDay) (Window, error) {
	if !start.Valid() || end < 0 || end > minutesPerDay {
		return Window{}, httperr.ErrValidation("invalid_time")
	}
	if start >= end {
		return Window{}, httperr.ErrValidation("invalid_window")
	}
	return Window{Start: start, End: end}, nil
}

func ParseWindow(start, end string) (Window, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Window{}, err
	}
	return NewWindow(s, e)
}

func (w Window) Minutes() int {
	return int(w.End - w.Start)
}

// Overlaps é verdadeiro quando a interseção tem duração positiva.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// ===============================
// MaybeWindow (Absent | Window)
// ===============================

type MaybeWindow struct {
	window  Window
	present bool
}

func Absent() MaybeWindow {
	return MaybeWindow{}
}

func Present(w Window) MaybeWindow {
	return MaybeWindow{window: w, present: true}
}

func (m MaybeWindow) Get() (Window, bool) {
	return m.window, m.present
}

func (m MaybeWindow) IsPresent() bool {
	return m.present
}

func (m MaybeWindow) MarshalJSON() ([]byte, error) {
	if !m.present {
		return []byte("null"), nil
	}
	return json.Marshal(m.window)
}

func (m *MaybeWindow) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Absent()
		return nil
	}
	var w Window
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	valid, err := NewWindow(w.Start, w.End)
	if err != nil {
		return err
	}
	*m = Present(valid)
	return nil
}

// MaybeFromMinutes monta a variante a partir de colunas anuláveis.
func MaybeFromMinutes(start, end *int) (MaybeWindow, error) {
	if start == nil && end == nil {
		return Absent(), nil
	}
	if start == nil || end == nil {
		return Absent(), httperr.ErrValidation("invalid_window")
	}
	w, err := NewWindow(TimeOfDay(*start), TimeOfDay(*end))
	if err != nil {
		return Absent(), err
	}
	return Present(w), nil
}

// Minutes devolve as colunas anuláveis correspondentes.
func (m MaybeWindow) Minutes() (start, end *int) {
	if !m.present {
		return nil, nil
	}
	s, e := int(m.window.Start), int(m.window.End)
	return &s, &e
}
