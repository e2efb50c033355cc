package dto

import (
	"time"

	"syncme/modules/scheduling/entity"
)

type ScheduleRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Location        string   `json:"location"`
	Attendees       []string `json:"attendees"`
	DurationMinutes int      `json:"duration_minutes"`
	PreferredTime   string   `json:"preferred_time"`
	Provider        string   `json:"provider"`
	SuggestOnly     bool     `json:"suggest_only"`
}

type FindSlotsRequest struct {
	DurationMinutes int    `json:"duration_minutes"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	PreferredTime   string `json:"preferred_time"`
	IncludeWeekends bool   `json:"include_weekends"`
}

type CheckAvailabilityRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type RescheduleOptionsRequest struct {
	Provider           string `json:"provider"`
	NewDurationMinutes int    `json:"new_duration_minutes"`
}

type OptimalDurationRequest struct {
	MeetingType   string `json:"meeting_type"`
	AttendeeCount int    `json:"attendee_count"`
}

type TimeSlotResponse struct {
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Confidence float64   `json:"confidence"`
}

func NewTimeSlotResponse(s entity.TimeSlot) TimeSlotResponse {
	return TimeSlotResponse{StartTime: s.Start, EndTime: s.End, Confidence: s.Confidence}
}

func NewTimeSlotResponses(slots []entity.TimeSlot) []TimeSlotResponse {
	out := make([]TimeSlotResponse, len(slots))
	for i, s := range slots {
		out[i] = NewTimeSlotResponse(s)
	}
	return out
}

type ScheduleResponse struct {
	Booked      bool               `json:"booked"`
	Event       *entity.Event      `json:"event,omitempty"`
	Suggestions []TimeSlotResponse `json:"suggestions,omitempty"`
}

type AvailabilityResponse struct {
	Available bool      `json:"available"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

type OptimalDurationResponse struct {
	MeetingType     string `json:"meeting_type"`
	AttendeeCount   int    `json:"attendee_count"`
	DurationMinutes int    `json:"duration_minutes"`
}

// PreferencesRequest uses pointers so an omitted field keeps its previous
// (or default) value, while an explicit zero is honored.
type PreferencesRequest struct {
	PreferredDurationMinutes *int    `json:"preferred_duration_minutes"`
	WorkStart                *string `json:"work_start"`
	WorkEnd                  *string `json:"work_end"`
	Timezone                 *string `json:"timezone"`
	BufferMinutes            *int    `json:"buffer_minutes"`
	MaxMeetingsPerDay        *int    `json:"max_meetings_per_day"`
	PreferredProvider        *string `json:"preferred_provider"`
}

type PreferencesResponse struct {
	PreferredDurationMinutes int    `json:"preferred_duration_minutes"`
	WorkStart                string `json:"work_start"`
	WorkEnd                  string `json:"work_end"`
	Timezone                 string `json:"timezone"`
	BufferMinutes            int    `json:"buffer_minutes"`
	MaxMeetingsPerDay        int    `json:"max_meetings_per_day"`
	PreferredProvider        string `json:"preferred_provider"`
}

func NewPreferencesResponse(p entity.UserPreferences) *PreferencesResponse {
	return &PreferencesResponse{
		PreferredDurationMinutes: p.PreferredDurationMinutes,
		WorkStart:                p.WorkStart.String(),
		WorkEnd:                  p.WorkEnd.String(),
		Timezone:                 p.Timezone,
		BufferMinutes:            p.BufferMinutes,
		MaxMeetingsPerDay:        p.MaxMeetingsPerDay,
		PreferredProvider:        p.PreferredProvider,
	}
}
