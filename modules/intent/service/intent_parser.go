package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"syncme/core/config"
	"syncme/core/constants"
	"syncme/core/errors"
	"syncme/core/logger"
	"syncme/modules/intent/dto"
)

const systemPrompt = `You are an intent parser for a scheduling assistant.
Classify the user's message into exactly one intent and extract entities.

Intents: schedule_event, get_schedule, reschedule_event, cancel_event,
update_event, check_availability, set_reminder, unknown.

Entities to extract when present: title, start_time (ISO 8601), end_time
(ISO 8601), duration_minutes (integer), attendees (list of emails or
names), location, date, message.

Respond with JSON only, no prose:
{"intent_type": "...", "confidence": 0.0, "entities": {...},
 "requires_clarification": false, "clarification_question": ""}`

type IntentParserInterface interface {
	ParseIntent(ctx context.Context, text string) (*dto.IntentResponse, *errors.AppError)
}

type IntentParser struct {
	cfg     config.OpenAIConfig
	client  *http.Client
	baseURL string
}

func NewIntentParser(cfg config.OpenAIConfig) IntentParserInterface {
	return &IntentParser{
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: cfg.BaseURL,
	}
}

func (p *IntentParser) ParseIntent(ctx context.Context, text string) (*dto.IntentResponse, *errors.AppError) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "text is required", nil)
	}

	started := time.Now()

	resp, err := p.callModel(ctx, text)
	if err != nil {
		logger.Warn("IntentParser:ParseIntent:ModelFailed", "error", err)
		resp = p.fallback(text)
	}

	p.validateEntities(resp)
	resp.ProcessingSeconds = time.Since(started).Seconds()

	logger.Info("IntentParser:ParseIntent:Done",
		"intent", string(resp.IntentType),
		"confidence", resp.Confidence,
	)
	return resp, nil
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *IntentParser) callModel(ctx context.Context, text string) (*dto.IntentResponse, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:       p.cfg.Model,
		Temperature: 0.1,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completion returned %d", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("completion has no choices")
	}

	content := stripCodeFence(completion.Choices[0].Message.Content)

	var parsed dto.IntentResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("model returned non-JSON content: %w", err)
	}
	if parsed.IntentType == "" {
		parsed.IntentType = dto.IntentUnknown
	}
	return &parsed, nil
}

// stripCodeFence removes a surrounding markdown fence, which models emit
// even when told not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

var fallbackKeywords = []struct {
	intent   dto.IntentType
	keywords []string
}{
	{dto.IntentCancelEvent, []string{"cancel", "delete", "remove"}},
	{dto.IntentRescheduleEvent, []string{"reschedule", "move", "postpone"}},
	{dto.IntentCheckAvailability, []string{"free", "available", "availability"}},
	{dto.IntentSetReminder, []string{"remind", "reminder"}},
	{dto.IntentGetSchedule, []string{"what's on", "agenda", "my schedule", "my calendar"}},
	{dto.IntentUpdateEvent, []string{"update", "change", "rename"}},
	{dto.IntentScheduleEvent, []string{"schedule", "book", "set up", "meet", "meeting", "appointment"}},
}

// fallback is the keyword classifier used when the model call fails.
func (p *IntentParser) fallback(text string) *dto.IntentResponse {
	lower := strings.ToLower(text)
	for _, entry := range fallbackKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return &dto.IntentResponse{
					IntentType: entry.intent,
					Confidence: 0.5,
					Entities:   map[string]any{},
				}
			}
		}
	}
	return &dto.IntentResponse{
		IntentType:            dto.IntentUnknown,
		Confidence:            0.0,
		Entities:              map[string]any{},
		RequiresClarification: true,
		ClarificationQuestion: "I didn't catch that. Could you rephrase what you'd like to do with your schedule?",
	}
}

// validateEntities normalizes extracted entities: drops unparseable times
// and defaults the duration for scheduling intents.
func (p *IntentParser) validateEntities(resp *dto.IntentResponse) {
	if resp.Entities == nil {
		resp.Entities = map[string]any{}
	}

	for _, key := range []string{"start_time", "end_time"} {
		raw, ok := resp.Entities[key].(string)
		if !ok {
			continue
		}
		if _, err := time.Parse(time.RFC3339, raw); err != nil {
			delete(resp.Entities, key)
		}
	}

	if resp.IntentType == dto.IntentScheduleEvent {
		switch v := resp.Entities["duration_minutes"].(type) {
		case float64:
			if v <= 0 {
				resp.Entities["duration_minutes"] = float64(constants.DefaultMeetingDurationMinutes)
			}
		default:
			resp.Entities["duration_minutes"] = float64(constants.DefaultMeetingDurationMinutes)
		}
	}

	if resp.Confidence < 0 {
		resp.Confidence = 0
	}
	if resp.Confidence > 1 {
		resp.Confidence = 1
	}
}
