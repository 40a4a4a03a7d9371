package availability

import (
	"time"

	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

func RuleFromModel(m models.AvailabilityRule) (Rule, error) {
	morning, err := MaybeFromMinutes(m.MorningStart, m.MorningEnd)
	if err != nil {
		return Rule{}, err
	}
	afternoon, err := MaybeFromMinutes(m.AfternoonStart, m.AfternoonEnd)
	if err != nil {
		return Rule{}, err
	}

	return Rule{
		TrainerID:   m.TrainerID,
		Weekday:     time.Weekday(m.Weekday),
		Morning:     morning,
		Afternoon:   afternoon,
		DurationMin: m.SlotDurationMin,
		Active:      m.Active,
	}, nil
}

func (r Rule) ToModel() models.AvailabilityRule {
	m := models.AvailabilityRule{
		TrainerID:       r.TrainerID,
		Weekday:         int(r.Weekday),
		SlotDurationMin: r.DurationMin,
		Active:          r.Active,
	}
	m.MorningStart, m.MorningEnd = r.Morning.Minutes()
	m.AfternoonStart, m.AfternoonEnd = r.Afternoon.Minutes()
	return m
}

func ExceptionFromModel(m models.AvailabilityException) (Exception, error) {
	morning, err := MaybeFromMinutes(m.MorningStart, m.MorningEnd)
	if err != nil {
		return Exception{}, err
	}
	afternoon, err := MaybeFromMinutes(m.AfternoonStart, m.AfternoonEnd)
	if err != nil {
		return Exception{}, err
	}

	ex := Exception{
		TrainerID: m.TrainerID,
		Date:      m.Date.Format(DateLayout),
		Morning:   morning,
		Afternoon: afternoon,
	}
	if m.SlotDurationMin != nil {
		ex.DurationMin = *m.SlotDurationMin
	}
	return ex, nil
}

func (e Exception) ToModel() (models.AvailabilityException, error) {
	date, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return models.AvailabilityException{}, err
	}

	m := models.AvailabilityException{
		TrainerID: e.TrainerID,
		Date:      date,
	}
	m.MorningStart, m.MorningEnd = e.Morning.Minutes()
	m.AfternoonStart, m.AfternoonEnd = e.Afternoon.Minutes()
	if e.DurationMin != 0 {
		d := e.DurationMin
		m.SlotDurationMin = &d
	}
	return m, nil
}
