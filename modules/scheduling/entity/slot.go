package entity

import (
	"time"

	"syncme/core/errors"
)

type EventStatus string

const (
	StatusScheduled   EventStatus = "scheduled"
	StatusCancelled   EventStatus = "cancelled"
	StatusCompleted   EventStatus = "completed"
	StatusRescheduled EventStatus = "rescheduled"
)

// TimeSlot is a candidate meeting window. Confidence is a ranking score in
// [0, 1]; freshly generated slots start at the baseline before scoring.
type TimeSlot struct {
	Start      time.Time
	End        time.Time
	Confidence float64
}

func NewTimeSlot(start, end time.Time) (TimeSlot, *errors.AppError) {
	if !end.After(start) {
		return TimeSlot{}, errors.NewAppError(errors.ErrInvalidInput, "slot end must be after start", nil)
	}
	return TimeSlot{Start: start, End: end}, nil
}

func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// BusyInterval is an occupied window on some calendar. Cancelled source
// events do not block scheduling.
type BusyInterval struct {
	Start  time.Time
	End    time.Time
	Status EventStatus
}

func (b BusyInterval) Blocks() bool {
	return b.Status != StatusCancelled
}

// Event is a provider-backed calendar event.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location,omitempty"`
	Attendees   []string    `json:"attendees,omitempty"`
	Provider    string      `json:"provider"`
	Status      EventStatus `json:"status"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
}

// EventSpec describes an event to create on a provider calendar.
type EventSpec struct {
	Title       string
	Description string
	Location    string
	Attendees   []string
	Start       time.Time
	End         time.Time
	Timezone    string
}

// EventChanges carries a partial update. Nil fields are left untouched.
type EventChanges struct {
	Title       *string
	Description *string
	Location    *string
	Start       *time.Time
	End         *time.Time
	Attendees   []string
}
