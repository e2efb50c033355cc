package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"syncme/core/config"
	"syncme/core/constants"
	"syncme/core/errors"
	"syncme/core/logger"
	"syncme/modules/voice/dto"
)

type TranscriberInterface interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (*dto.TranscriptionResult, *errors.AppError)
}

// Transcriber sends audio to a Whisper-compatible transcription endpoint.
type Transcriber struct {
	cfg     config.WhisperConfig
	client  *http.Client
	baseURL string
}

func NewTranscriber(cfg config.WhisperConfig) TranscriberInterface {
	return &Transcriber{
		cfg:     cfg,
		client:  &http.Client{Timeout: 60 * time.Second},
		baseURL: cfg.BaseURL,
	}
}

func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, filename string) (*dto.TranscriptionResult, *errors.AppError) {
	if len(audio) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "audio is empty", nil)
	}
	if len(audio) > constants.MaxAudioUploadBytes {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "audio exceeds the 25MB limit", nil)
	}
	if filename == "" {
		filename = "audio.wav"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build upload", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build upload", err)
	}
	if err := writer.WriteField("model", t.cfg.Model); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build upload", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build upload", err)
	}
	if err := writer.Close(); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "transcription service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable,
			fmt.Sprintf("transcription service returned %d", resp.StatusCode), nil)
	}

	var parsed struct {
		Text     string  `json:"text"`
		Language string  `json:"language"`
		Duration float64 `json:"duration"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "invalid transcription response", err)
	}

	logger.Info("Transcriber:Transcribe:Done",
		"bytes", len(audio),
		"duration_s", parsed.Duration,
	)
	return &dto.TranscriptionResult{
		Text:            parsed.Text,
		Language:        parsed.Language,
		DurationSeconds: parsed.Duration,
	}, nil
}
