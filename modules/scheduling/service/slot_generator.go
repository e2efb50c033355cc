package service

import (
	"time"

	"syncme/core/constants"
	"syncme/core/errors"
	"syncme/modules/scheduling/entity"
)

// SlotGenerator produces candidate slots inside work hours. The cursor
// advances by slot length plus buffer, so the buffer is built into the
// spacing of generated candidates.
type SlotGenerator struct{}

func NewSlotGenerator() *SlotGenerator {
	return &SlotGenerator{}
}

func (g *SlotGenerator) Generate(startDate, endDate time.Time, duration time.Duration, prefs entity.ResolvedPreferences, excludeWeekends bool) ([]entity.TimeSlot, *errors.AppError) {
	if duration <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "duration must be positive", nil)
	}
	if endDate.Before(startDate) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "end date before start date", nil)
	}

	buffer := time.Duration(prefs.BufferMinutes) * time.Minute
	var slots []entity.TimeSlot

	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		if excludeWeekends && isWeekend(day) {
			continue
		}

		cursor := prefs.WorkStart.On(day, prefs.Location)
		dayEnd := prefs.WorkEnd.On(day, prefs.Location)

		for !cursor.Add(duration).After(dayEnd) {
			slots = append(slots, entity.TimeSlot{
				Start:      cursor,
				End:        cursor.Add(duration),
				Confidence: constants.BaseSlotConfidence,
			})
			cursor = cursor.Add(duration + buffer)
		}
	}

	return slots, nil
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
