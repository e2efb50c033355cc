package service

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncme/core/errors"
	intentdto "syncme/modules/intent/dto"
	reminderdto "syncme/modules/reminder/dto"
	schedentity "syncme/modules/scheduling/entity"
	schedservice "syncme/modules/scheduling/service"
	"syncme/modules/voice/dto"
)

type stubTranscriber struct {
	result *dto.TranscriptionResult
	err    *errors.AppError
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (*dto.TranscriptionResult, *errors.AppError) {
	return s.result, s.err
}

type stubIntentParser struct {
	resp *intentdto.IntentResponse
}

func (s *stubIntentParser) ParseIntent(_ context.Context, _ string) (*intentdto.IntentResponse, *errors.AppError) {
	return s.resp, nil
}

type stubScheduler struct {
	schedservice.SchedulerInterface

	outcome      *schedservice.ScheduleOutcome
	scheduleErr  *errors.AppError
	available    bool
	availability *errors.AppError
	upcoming     []schedentity.Event
}

func (s *stubScheduler) Schedule(_ context.Context, _ string, _ *schedservice.ScheduleInput) (*schedservice.ScheduleOutcome, *errors.AppError) {
	return s.outcome, s.scheduleErr
}

func (s *stubScheduler) CheckAvailability(_ context.Context, _ string, _, _ time.Time) (bool, *errors.AppError) {
	return s.available, s.availability
}

func (s *stubScheduler) ListScheduledEvents(_ context.Context, _ string) ([]schedentity.Event, *errors.AppError) {
	return s.upcoming, nil
}

type stubReminders struct {
	created   []string
	createErr *errors.AppError
}

func (s *stubReminders) Create(_ context.Context, _, message string, _ time.Time) (*reminderdto.ReminderResponse, *errors.AppError) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, message)
	return &reminderdto.ReminderResponse{ID: "rem-1", Message: message}, nil
}

func (s *stubReminders) ListPending(_ context.Context, _ string) ([]reminderdto.ReminderResponse, *errors.AppError) {
	return nil, nil
}

func (s *stubReminders) Cancel(_ context.Context, _, _ string) *errors.AppError {
	return nil
}

func (s *stubReminders) HandleDeliverTask(_ context.Context, _ *asynq.Task) error {
	return nil
}

type stubTTS struct {
	result *dto.SpeechResult
	err    *errors.AppError
	texts  []string
}

func (s *stubTTS) GenerateSpeech(_ context.Context, text, _ string) (*dto.SpeechResult, *errors.AppError) {
	s.texts = append(s.texts, text)
	return s.result, s.err
}

func (s *stubTTS) GetVoices(_ context.Context) ([]dto.Voice, *errors.AppError) {
	return nil, nil
}

func transcribed(text string) *stubTranscriber {
	return &stubTranscriber{result: &dto.TranscriptionResult{Text: text, Language: "english", DurationSeconds: 2}}
}

func TestProcessCommandSchedulesEvent(t *testing.T) {
	start := time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
	scheduler := &stubScheduler{outcome: &schedservice.ScheduleOutcome{
		Booked: true,
		Event: &schedentity.Event{
			ID:    "evt-1",
			Title: "Design review",
			Start: start,
			End:   start.Add(time.Hour),
		},
		Suggestions: []schedentity.TimeSlot{{Start: start, End: start.Add(time.Hour), Confidence: 1}},
	}}
	tts := &stubTTS{result: &dto.SpeechResult{AudioURL: "https://audio.example.com/x.mp3"}}

	svc := NewVoiceService(
		transcribed("schedule a design review monday afternoon"),
		&stubIntentParser{resp: &intentdto.IntentResponse{
			IntentType: intentdto.IntentScheduleEvent,
			Confidence: 0.9,
			Entities:   map[string]any{"title": "Design review"},
		}},
		scheduler,
		&stubReminders{},
		tts,
	)

	resp, appErr := svc.ProcessCommand(context.Background(), "user-1", []byte("audio"), "a.wav")
	require.Nil(t, appErr)

	assert.Equal(t, "Done. I scheduled Design review for Monday, January 15 at 2:00 PM.", resp.ReplyText)
	require.NotNil(t, resp.Speech)
	require.Len(t, resp.Suggestions, 1)
	require.Len(t, tts.texts, 1)
	assert.Equal(t, resp.ReplyText, tts.texts[0])
}

func TestProcessCommandNoFreeSlot(t *testing.T) {
	scheduler := &stubScheduler{scheduleErr: errors.NewAppError(errors.ErrNotFound, "no available slots", nil)}

	svc := NewVoiceService(
		transcribed("book an hour with the team"),
		&stubIntentParser{resp: &intentdto.IntentResponse{IntentType: intentdto.IntentScheduleEvent, Entities: map[string]any{}}},
		scheduler,
		&stubReminders{},
		&stubTTS{result: &dto.SpeechResult{}},
	)

	resp, appErr := svc.ProcessCommand(context.Background(), "user-1", []byte("audio"), "a.wav")
	require.Nil(t, appErr)
	assert.Contains(t, resp.ReplyText, "couldn't find a free slot")
}

func TestProcessCommandClarificationPassesThrough(t *testing.T) {
	svc := NewVoiceService(
		transcribed("do the thing"),
		&stubIntentParser{resp: &intentdto.IntentResponse{
			IntentType:            intentdto.IntentUnknown,
			RequiresClarification: true,
			ClarificationQuestion: "What would you like me to do?",
		}},
		&stubScheduler{},
		&stubReminders{},
		&stubTTS{result: &dto.SpeechResult{}},
	)

	resp, appErr := svc.ProcessCommand(context.Background(), "user-1", []byte("audio"), "a.wav")
	require.Nil(t, appErr)
	assert.Equal(t, "What would you like me to do?", resp.ReplyText)
}

func TestProcessCommandCheckAvailability(t *testing.T) {
	scheduler := &stubScheduler{available: true}

	svc := NewVoiceService(
		transcribed("am I free monday at two"),
		&stubIntentParser{resp: &intentdto.IntentResponse{
			IntentType: intentdto.IntentCheckAvailability,
			Entities: map[string]any{
				"start_time": "2024-01-15T14:00:00Z",
				"end_time":   "2024-01-15T15:00:00Z",
			},
		}},
		scheduler,
		&stubReminders{},
		&stubTTS{result: &dto.SpeechResult{}},
	)

	resp, appErr := svc.ProcessCommand(context.Background(), "user-1", []byte("audio"), "a.wav")
	require.Nil(t, appErr)
	assert.Equal(t, "You're free on Monday, January 15 at 2:00 PM.", resp.ReplyText)
}

func TestProcessCommandCheckAvailabilityMissingWindow(t *testing.T) {
	svc := NewVoiceService(
		transcribed("am I free"),
		&stubIntentParser{resp: &intentdto.IntentResponse{
			IntentType: intentdto.IntentCheckAvailability,
			Entities:   map[string]any{},
		}},
		&stubScheduler{},
		&stubReminders{},
		&stubTTS{result: &dto.SpeechResult{}},
	)

	resp, appErr := svc.ProcessCommand(context.Background(), "user-1", []byte("audio"), "a.wav")
	require.Nil(t, appErr)
	assert.Equal(t, "What time window should I check?", resp.ReplyText)
}

func TestProcessCommandSetReminder(t *testing.T) {
	reminders := &stubReminders{}

	svc := NewVoiceService(
		transcribed("remind me to submit the report friday morning"),
		&stubIntentParser{resp: &intentdto.IntentResponse{
			IntentType: intentdto.IntentSetReminder,
			Entities: map[string]any{
				"message":    "submit the report",
				"start_time": "2024-01-19T09:00:00Z",
			},
		}},
		&stubScheduler{},
		reminders,
		&stubTTS{result: &dto.SpeechResult{}},
	)

	resp, appErr := svc.ProcessCommand(context.Background(), "user-1", []byte("audio"), "a.wav")
	require.Nil(t, appErr)

	assert.Contains(t, resp.ReplyText, "Reminder set for")
	assert.Equal(t, []string{"submit the report"}, reminders.created)
}

func TestProcessCommandGetSchedule(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	scheduler := &stubScheduler{upcoming: []schedentity.Event{
		{ID: "evt-1", Title: "Standup", Start: start, End: start.Add(15 * time.Minute)},
		{ID: "evt-2", Title: "Design review", Start: start.Add(5 * time.Hour), End: start.Add(6 * time.Hour)},
	}}

	svc := NewVoiceService(
		transcribed("what's on my calendar"),
		&stubIntentParser{resp: &intentdto.IntentResponse{IntentType: intentdto.IntentGetSchedule, Entities: map[string]any{}}},
		scheduler,
		&stubReminders{},
		&stubTTS{result: &dto.SpeechResult{}},
	)

	resp, appErr := svc.ProcessCommand(context.Background(), "user-1", []byte("audio"), "a.wav")
	require.Nil(t, appErr)
	assert.Equal(t, "You have 2 upcoming events. Next up is Standup on Monday, January 15 at 9:00 AM.", resp.ReplyText)
}

func TestProcessCommandGetScheduleEmpty(t *testing.T) {
	svc := NewVoiceService(
		transcribed("what's on my calendar"),
		&stubIntentParser{resp: &intentdto.IntentResponse{IntentType: intentdto.IntentGetSchedule, Entities: map[string]any{}}},
		&stubScheduler{},
		&stubReminders{},
		&stubTTS{result: &dto.SpeechResult{}},
	)

	resp, appErr := svc.ProcessCommand(context.Background(), "user-1", []byte("audio"), "a.wav")
	require.Nil(t, appErr)
	assert.Equal(t, "You have nothing scheduled coming up.", resp.ReplyText)
}

func TestProcessCommandDegradesWhenTTSFails(t *testing.T) {
	tts := &stubTTS{err: errors.NewAppError(errors.ErrProviderUnavailable, "speech service unreachable", nil)}

	svc := NewVoiceService(
		transcribed("what's on my calendar"),
		&stubIntentParser{resp: &intentdto.IntentResponse{IntentType: intentdto.IntentGetSchedule, Entities: map[string]any{}}},
		&stubScheduler{},
		&stubReminders{},
		tts,
	)

	resp, appErr := svc.ProcessCommand(context.Background(), "user-1", []byte("audio"), "a.wav")
	require.Nil(t, appErr)

	assert.Nil(t, resp.Speech)
	assert.NotEmpty(t, resp.ReplyText)
}

func TestProcessCommandTranscriptionFailureStopsPipeline(t *testing.T) {
	svc := NewVoiceService(
		&stubTranscriber{err: errors.NewAppError(errors.ErrProviderUnavailable, "transcription service unreachable", nil)},
		&stubIntentParser{},
		&stubScheduler{},
		&stubReminders{},
		&stubTTS{},
	)

	_, appErr := svc.ProcessCommand(context.Background(), "user-1", []byte("audio"), "a.wav")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrProviderUnavailable, appErr.Code)
}
