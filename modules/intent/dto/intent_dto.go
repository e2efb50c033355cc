package dto

type IntentType string

const (
	IntentScheduleEvent     IntentType = "schedule_event"
	IntentGetSchedule       IntentType = "get_schedule"
	IntentRescheduleEvent   IntentType = "reschedule_event"
	IntentCancelEvent       IntentType = "cancel_event"
	IntentUpdateEvent       IntentType = "update_event"
	IntentCheckAvailability IntentType = "check_availability"
	IntentSetReminder       IntentType = "set_reminder"
	IntentUnknown           IntentType = "unknown"
)

type ParseIntentRequest struct {
	Text string `json:"text"`
}

type IntentResponse struct {
	IntentType            IntentType     `json:"intent_type"`
	Confidence            float64        `json:"confidence"`
	Entities              map[string]any `json:"entities"`
	RequiresClarification bool           `json:"requires_clarification"`
	ClarificationQuestion string         `json:"clarification_question,omitempty"`
	ProcessingSeconds     float64        `json:"processing_seconds"`
}
