package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncme/core/config"
	"syncme/core/errors"
	"syncme/modules/intent/dto"
)

func newTestParser(t *testing.T, handler http.HandlerFunc) *IntentParser {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &IntentParser{
		cfg:     config.OpenAIConfig{Model: "gpt-4o-mini", APIKey: "test-key"},
		client:  srv.Client(),
		baseURL: srv.URL,
	}
}

func modelReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
}

func TestParseIntentFromModel(t *testing.T) {
	parser := newTestParser(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 0.1, req.Temperature)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		modelReply(t, w, `{"intent_type": "schedule_event", "confidence": 0.93,
			"entities": {"title": "sync with Dana", "duration_minutes": 30},
			"requires_clarification": false}`)
	})

	resp, appErr := parser.ParseIntent(context.Background(), "book 30 minutes with Dana tomorrow")
	require.Nil(t, appErr)

	assert.Equal(t, dto.IntentScheduleEvent, resp.IntentType)
	assert.Equal(t, 0.93, resp.Confidence)
	assert.Equal(t, "sync with Dana", resp.Entities["title"])
	assert.False(t, resp.RequiresClarification)
	assert.GreaterOrEqual(t, resp.ProcessingSeconds, 0.0)
}

func TestParseIntentHandlesFencedReply(t *testing.T) {
	parser := newTestParser(t, func(w http.ResponseWriter, _ *http.Request) {
		modelReply(t, w, "```json\n{\"intent_type\": \"cancel_event\", \"confidence\": 0.8}\n```")
	})

	resp, appErr := parser.ParseIntent(context.Background(), "cancel my 3pm")
	require.Nil(t, appErr)
	assert.Equal(t, dto.IntentCancelEvent, resp.IntentType)
}

func TestParseIntentFallsBackWhenModelFails(t *testing.T) {
	parser := newTestParser(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	resp, appErr := parser.ParseIntent(context.Background(), "please cancel the standup")
	require.Nil(t, appErr)

	assert.Equal(t, dto.IntentCancelEvent, resp.IntentType)
	assert.Equal(t, 0.5, resp.Confidence)
}

func TestParseIntentFallsBackOnGarbageReply(t *testing.T) {
	parser := newTestParser(t, func(w http.ResponseWriter, _ *http.Request) {
		modelReply(t, w, "Sure! I'd say this is about scheduling.")
	})

	resp, appErr := parser.ParseIntent(context.Background(), "set up a meeting with the infra team")
	require.Nil(t, appErr)
	assert.Equal(t, dto.IntentScheduleEvent, resp.IntentType)
}

func TestParseIntentRejectsEmptyText(t *testing.T) {
	parser := newTestParser(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("model should not be called")
	})

	_, appErr := parser.ParseIntent(context.Background(), "   ")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
}

func TestFallbackKeywordTable(t *testing.T) {
	parser := &IntentParser{}

	tests := []struct {
		text string
		want dto.IntentType
	}{
		{"cancel my dentist appointment", dto.IntentCancelEvent},
		{"move the retro to Friday", dto.IntentRescheduleEvent},
		{"am I free on Thursday afternoon", dto.IntentCheckAvailability},
		{"remind me to send the report", dto.IntentSetReminder},
		{"what's on my calendar today", dto.IntentGetSchedule},
		{"change the title of the review", dto.IntentUpdateEvent},
		{"book a room for the offsite", dto.IntentScheduleEvent},
		{"tell me a joke", dto.IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			resp := parser.fallback(tt.text)
			assert.Equal(t, tt.want, resp.IntentType)
		})
	}
}

func TestFallbackUnknownAsksForClarification(t *testing.T) {
	parser := &IntentParser{}

	resp := parser.fallback("quantum flux capacitor")
	assert.Equal(t, dto.IntentUnknown, resp.IntentType)
	assert.Equal(t, 0.0, resp.Confidence)
	assert.True(t, resp.RequiresClarification)
	assert.NotEmpty(t, resp.ClarificationQuestion)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"padded", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.in))
		})
	}
}

func TestValidateEntities(t *testing.T) {
	parser := &IntentParser{}

	resp := &dto.IntentResponse{
		IntentType: dto.IntentScheduleEvent,
		Confidence: 1.7,
		Entities: map[string]any{
			"start_time": "tomorrow at noon",
			"end_time":   "2024-01-15T15:00:00Z",
		},
	}
	parser.validateEntities(resp)

	_, hasStart := resp.Entities["start_time"]
	assert.False(t, hasStart)
	assert.Equal(t, "2024-01-15T15:00:00Z", resp.Entities["end_time"])
	assert.Equal(t, float64(60), resp.Entities["duration_minutes"])
	assert.Equal(t, 1.0, resp.Confidence)
}

func TestValidateEntitiesKeepsExplicitDuration(t *testing.T) {
	parser := &IntentParser{}

	resp := &dto.IntentResponse{
		IntentType: dto.IntentScheduleEvent,
		Entities:   map[string]any{"duration_minutes": float64(45)},
	}
	parser.validateEntities(resp)
	assert.Equal(t, float64(45), resp.Entities["duration_minutes"])

	resp = &dto.IntentResponse{IntentType: dto.IntentGetSchedule}
	parser.validateEntities(resp)
	_, has := resp.Entities["duration_minutes"]
	assert.False(t, has)
}
