package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"syncme/core/constants"
	"syncme/core/errors"
)

// TimeOfDay is a wall-clock time without a date, e.g. a work day boundary.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return t, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) IsZero() bool {
	return t.Hour == 0 && t.Minute == 0
}

// On anchors the wall-clock time to the given date in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, loc)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UserPreferences holds per-user scheduling settings. Zero values mean
// "unset"; Resolve applies the defaults exactly once so the engine never
// branches on missing fields. BufferMinutes uses -1 as the unset marker
// because an explicit zero buffer is a valid choice.
type UserPreferences struct {
	PreferredDurationMinutes int       `json:"preferred_duration_minutes"`
	WorkStart                TimeOfDay `json:"work_start"`
	WorkEnd                  TimeOfDay `json:"work_end"`
	Timezone                 string    `json:"timezone"`
	BufferMinutes            int       `json:"buffer_minutes"`
	MaxMeetingsPerDay        int       `json:"max_meetings_per_day"`
	PreferredProvider        string    `json:"preferred_provider"`
}

func DefaultPreferences() UserPreferences {
	return UserPreferences{
		PreferredDurationMinutes: constants.DefaultMeetingDurationMinutes,
		WorkStart:                TimeOfDay{Hour: 9},
		WorkEnd:                  TimeOfDay{Hour: 17},
		Timezone:                 constants.DefaultTimezone,
		BufferMinutes:            constants.DefaultBufferMinutes,
		MaxMeetingsPerDay:        constants.DefaultMaxMeetingsPerDay,
		PreferredProvider:        constants.DefaultProvider,
	}
}

// ResolvedPreferences is a UserPreferences with every field populated and
// the timezone loaded. Engine components take this form only.
type ResolvedPreferences struct {
	UserPreferences
	Location *time.Location
}

func (p UserPreferences) Resolve() (ResolvedPreferences, *errors.AppError) {
	out := p
	if out.PreferredDurationMinutes <= 0 {
		out.PreferredDurationMinutes = constants.DefaultMeetingDurationMinutes
	}
	if out.WorkStart.IsZero() && out.WorkEnd.IsZero() {
		out.WorkStart = TimeOfDay{Hour: 9}
		out.WorkEnd = TimeOfDay{Hour: 17}
	}
	if out.WorkEnd.Minutes() <= out.WorkStart.Minutes() {
		return ResolvedPreferences{}, errors.NewAppError(errors.ErrInvalidInput, "work end must be after work start", nil)
	}
	if out.Timezone == "" {
		out.Timezone = constants.DefaultTimezone
	}
	if out.BufferMinutes < 0 {
		out.BufferMinutes = constants.DefaultBufferMinutes
	}
	if out.MaxMeetingsPerDay <= 0 {
		out.MaxMeetingsPerDay = constants.DefaultMaxMeetingsPerDay
	}
	if out.PreferredProvider == "" {
		out.PreferredProvider = constants.DefaultProvider
	}

	loc, err := time.LoadLocation(out.Timezone)
	if err != nil {
		return ResolvedPreferences{}, errors.NewAppError(errors.ErrInvalidInput, "unknown timezone "+out.Timezone, err)
	}

	return ResolvedPreferences{UserPreferences: out, Location: loc}, nil
}

// UserContext is everything the scheduling engine knows about the caller.
type UserContext struct {
	UserID         string
	Email          string
	Name           string
	Preferences    UserPreferences
	ExistingEvents []BusyInterval
}
