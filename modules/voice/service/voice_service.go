package service

import (
	"context"
	"fmt"
	"time"

	"syncme/core/errors"
	"syncme/core/logger"
	intentdto "syncme/modules/intent/dto"
	intentservice "syncme/modules/intent/service"
	reminderservice "syncme/modules/reminder/service"
	scheddto "syncme/modules/scheduling/dto"
	schedservice "syncme/modules/scheduling/service"
	"syncme/modules/voice/dto"
)

type VoiceServiceInterface interface {
	ProcessCommand(ctx context.Context, userID string, audio []byte, filename string) (*dto.ProcessResponse, *errors.AppError)
}

// VoiceService runs the full pipeline: audio to text, text to intent,
// intent to scheduling action, action result to spoken reply.
type VoiceService struct {
	transcriber TranscriberInterface
	intents     intentservice.IntentParserInterface
	scheduler   schedservice.SchedulerInterface
	reminders   reminderservice.ReminderServiceInterface
	tts         TTSInterface
}

func NewVoiceService(
	transcriber TranscriberInterface,
	intents intentservice.IntentParserInterface,
	scheduler schedservice.SchedulerInterface,
	reminders reminderservice.ReminderServiceInterface,
	tts TTSInterface,
) VoiceServiceInterface {
	return &VoiceService{
		transcriber: transcriber,
		intents:     intents,
		scheduler:   scheduler,
		reminders:   reminders,
		tts:         tts,
	}
}

func (s *VoiceService) ProcessCommand(ctx context.Context, userID string, audio []byte, filename string) (*dto.ProcessResponse, *errors.AppError) {
	transcription, appErr := s.transcriber.Transcribe(ctx, audio, filename)
	if appErr != nil {
		return nil, appErr
	}

	intent, appErr := s.intents.ParseIntent(ctx, transcription.Text)
	if appErr != nil {
		return nil, appErr
	}

	reply, suggestions := s.dispatch(ctx, userID, intent)

	resp := &dto.ProcessResponse{
		Transcription: transcription,
		Intent:        intent,
		ReplyText:     reply,
		Suggestions:   suggestions,
	}

	// A failed speech synthesis degrades to a text-only reply.
	speech, appErr := s.tts.GenerateSpeech(ctx, reply, "")
	if appErr != nil {
		logger.Warn("VoiceService:ProcessCommand:TTSFailed", "error", appErr)
	} else {
		resp.Speech = speech
	}

	return resp, nil
}

func (s *VoiceService) dispatch(ctx context.Context, userID string, intent *intentdto.IntentResponse) (string, []scheddto.TimeSlotResponse) {
	if intent.RequiresClarification {
		return intent.ClarificationQuestion, nil
	}

	switch intent.IntentType {
	case intentdto.IntentScheduleEvent:
		return s.handleSchedule(ctx, userID, intent)
	case intentdto.IntentCheckAvailability:
		return s.handleCheckAvailability(ctx, userID, intent), nil
	case intentdto.IntentSetReminder:
		return s.handleSetReminder(ctx, userID, intent), nil
	case intentdto.IntentGetSchedule:
		return s.handleGetSchedule(ctx, userID), nil
	case intentdto.IntentRescheduleEvent,
		intentdto.IntentCancelEvent, intentdto.IntentUpdateEvent:
		return "Which event do you mean? Please open the app or tell me the event name and time.", nil
	default:
		return "I didn't catch that. Could you rephrase what you'd like to do with your schedule?", nil
	}
}

func (s *VoiceService) handleSchedule(ctx context.Context, userID string, intent *intentdto.IntentResponse) (string, []scheddto.TimeSlotResponse) {
	title, _ := intent.Entities["title"].(string)
	if title == "" {
		title = "Meeting"
	}

	duration := 0
	if v, ok := intent.Entities["duration_minutes"].(float64); ok {
		duration = int(v)
	}

	var preferred *time.Time
	if raw, ok := intent.Entities["start_time"].(string); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			preferred = &t
		}
	}

	outcome, appErr := s.scheduler.Schedule(ctx, userID, &schedservice.ScheduleInput{
		Title:           title,
		DurationMinutes: duration,
		PreferredTime:   preferred,
	})
	if appErr != nil {
		if appErr.Code == errors.ErrNotFound {
			return "I couldn't find a free slot in the next two weeks. Try a different duration or date range.", nil
		}
		logger.Warn("VoiceService:HandleSchedule:Failed", "error", appErr)
		return "Sorry, I couldn't schedule that right now.", nil
	}

	suggestions := scheddto.NewTimeSlotResponses(outcome.Suggestions)
	if outcome.Booked && outcome.Event != nil {
		return fmt.Sprintf("Done. I scheduled %s for %s.",
			outcome.Event.Title,
			outcome.Event.Start.Format("Monday, January 2 at 3:04 PM"),
		), suggestions
	}
	return "Here are some times that work. Which one should I book?", suggestions
}

func (s *VoiceService) handleCheckAvailability(ctx context.Context, userID string, intent *intentdto.IntentResponse) string {
	rawStart, okStart := intent.Entities["start_time"].(string)
	rawEnd, okEnd := intent.Entities["end_time"].(string)
	if !okStart || !okEnd {
		return "What time window should I check?"
	}

	start, errStart := time.Parse(time.RFC3339, rawStart)
	end, errEnd := time.Parse(time.RFC3339, rawEnd)
	if errStart != nil || errEnd != nil {
		return "What time window should I check?"
	}

	available, appErr := s.scheduler.CheckAvailability(ctx, userID, start, end)
	if appErr != nil {
		logger.Warn("VoiceService:HandleCheckAvailability:Failed", "error", appErr)
		return "Sorry, I couldn't check your calendar right now."
	}

	when := start.Format("Monday, January 2 at 3:04 PM")
	if available {
		return fmt.Sprintf("You're free on %s.", when)
	}
	return fmt.Sprintf("You already have something on %s.", when)
}

func (s *VoiceService) handleGetSchedule(ctx context.Context, userID string) string {
	events, appErr := s.scheduler.ListScheduledEvents(ctx, userID)
	if appErr != nil {
		logger.Warn("VoiceService:HandleGetSchedule:Failed", "error", appErr)
		return "Sorry, I couldn't load your schedule right now."
	}
	if len(events) == 0 {
		return "You have nothing scheduled coming up."
	}

	next := events[0]
	return fmt.Sprintf("You have %d upcoming events. Next up is %s on %s.",
		len(events),
		next.Title,
		next.Start.Format("Monday, January 2 at 3:04 PM"),
	)
}

func (s *VoiceService) handleSetReminder(ctx context.Context, userID string, intent *intentdto.IntentResponse) string {
	message, _ := intent.Entities["message"].(string)
	if message == "" {
		message, _ = intent.Entities["title"].(string)
	}
	if message == "" {
		return "What should I remind you about?"
	}

	raw, ok := intent.Entities["start_time"].(string)
	if !ok {
		return "When should I remind you?"
	}
	remindAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "When should I remind you?"
	}

	if _, appErr := s.reminders.Create(ctx, userID, message, remindAt); appErr != nil {
		logger.Warn("VoiceService:HandleSetReminder:Failed", "error", appErr)
		return "Sorry, I couldn't set that reminder."
	}
	return fmt.Sprintf("Reminder set for %s.", remindAt.Format("Monday, January 2 at 3:04 PM"))
}
