package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"syncme/core/cache"
	"syncme/core/config"
	"syncme/core/constants"
	"syncme/core/errors"
	"syncme/core/logger"
	"syncme/modules/voice/dto"
)

// wordsPerMinute is the speaking rate used to estimate audio duration.
const wordsPerMinute = 150

type TTSInterface interface {
	GenerateSpeech(ctx context.Context, text, voiceID string) (*dto.SpeechResult, *errors.AppError)
	GetVoices(ctx context.Context) ([]dto.Voice, *errors.AppError)
}

// TTSService turns reply text into speech via an ElevenLabs style API and
// stores the audio in object storage. The voice catalog is cached.
type TTSService struct {
	cfg     config.ElevenLabsConfig
	store   AudioStoreInterface
	cache   *cache.Cache
	client  *http.Client
	baseURL string
}

func NewTTSService(cfg config.ElevenLabsConfig, store AudioStoreInterface, c *cache.Cache) TTSInterface {
	return &TTSService{
		cfg:     cfg,
		store:   store,
		cache:   c,
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: cfg.BaseURL,
	}
}

func (s *TTSService) GenerateSpeech(ctx context.Context, text, voiceID string) (*dto.SpeechResult, *errors.AppError) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "text is required", nil)
	}
	if len(text) > constants.MaxTTSTextLength {
		return nil, errors.NewAppError(errors.ErrInvalidInput,
			fmt.Sprintf("text exceeds the %d character limit", constants.MaxTTSTextLength), nil)
	}
	if voiceID == "" {
		voiceID = s.cfg.DefaultVoiceID
	}

	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": "eleven_monolingual_v1",
		"voice_settings": map[string]float64{
			"stability":        0.5,
			"similarity_boost": 0.5,
		},
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/text-to-speech/"+voiceID, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build request", err)
	}
	req.Header.Set("xi-api-key", s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "speech service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable,
			fmt.Sprintf("speech service returned %d", resp.StatusCode), nil)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "failed to read audio", err)
	}

	key := audioObjectKey(text)
	url, err := s.store.Put(ctx, key, audio, "audio/mpeg")
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to store audio", err)
	}

	result := &dto.SpeechResult{
		AudioURL:                 url,
		EstimatedDurationSeconds: estimateSpeechDuration(text),
		CharacterCount:           len(text),
	}

	logger.Info("TTSService:GenerateSpeech:Done",
		"chars", result.CharacterCount,
		"bytes", len(audio),
		"key", key,
	)
	return result, nil
}

func estimateSpeechDuration(text string) float64 {
	words := len(strings.Fields(text))
	return float64(words) / wordsPerMinute * 60
}

func (s *TTSService) GetVoices(ctx context.Context) ([]dto.Voice, *errors.AppError) {
	if cached, ok := s.cache.Get(ctx, constants.RedisKeyVoiceList); ok {
		var voices []dto.Voice
		if err := json.Unmarshal([]byte(cached), &voices); err == nil {
			return voices, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/voices", nil)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build request", err)
	}
	req.Header.Set("xi-api-key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "speech service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable,
			fmt.Sprintf("speech service returned %d", resp.StatusCode), nil)
	}

	var parsed struct {
		Voices []struct {
			VoiceID  string `json:"voice_id"`
			Name     string `json:"name"`
			Category string `json:"category"`
		} `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "invalid voices response", err)
	}

	voices := make([]dto.Voice, 0, len(parsed.Voices))
	for _, v := range parsed.Voices {
		voices = append(voices, dto.Voice{VoiceID: v.VoiceID, Name: v.Name, Category: v.Category})
	}

	if encoded, err := json.Marshal(voices); err == nil {
		s.cache.Set(ctx, constants.RedisKeyVoiceList, string(encoded), constants.VoiceListTTL)
	}
	return voices, nil
}
