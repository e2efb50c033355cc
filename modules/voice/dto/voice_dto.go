package dto

import (
	scheddto "syncme/modules/scheduling/dto"
	intentdto "syncme/modules/intent/dto"
)

type TranscriptionResult struct {
	Text            string  `json:"text"`
	Language        string  `json:"language,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

type Voice struct {
	VoiceID  string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

type GenerateSpeechRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

type SpeechResult struct {
	AudioURL                 string  `json:"audio_url"`
	EstimatedDurationSeconds float64 `json:"estimated_duration_seconds"`
	CharacterCount           int     `json:"character_count"`
}

// ProcessResponse is the full voice pipeline result: what was heard, what
// was understood, what was done, and the spoken reply.
type ProcessResponse struct {
	Transcription *TranscriptionResult          `json:"transcription"`
	Intent        *intentdto.IntentResponse     `json:"intent"`
	ReplyText     string                        `json:"reply_text"`
	Speech        *SpeechResult                 `json:"speech,omitempty"`
	Suggestions   []scheddto.TimeSlotResponse   `json:"suggestions,omitempty"`
}
