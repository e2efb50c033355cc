package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syncme/core/config"
	"syncme/core/errors"
)

type fakeAudioStore struct {
	keys []string
	data [][]byte
	err  error
}

func (s *fakeAudioStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.keys = append(s.keys, key)
	s.data = append(s.data, data)
	return "https://audio.example.com/" + key, nil
}

func newTestTTS(t *testing.T, store AudioStoreInterface, handler http.HandlerFunc) *TTSService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &TTSService{
		cfg:     config.ElevenLabsConfig{APIKey: "xi-key", DefaultVoiceID: "rachel"},
		store:   store,
		client:  srv.Client(),
		baseURL: srv.URL,
	}
}

func TestGenerateSpeech(t *testing.T) {
	store := &fakeAudioStore{}
	tts := newTestTTS(t, store, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text-to-speech/rachel", r.URL.Path)
		assert.Equal(t, "xi-key", r.Header.Get("xi-api-key"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "eleven_monolingual_v1", payload["model_id"])

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	})

	result, appErr := tts.GenerateSpeech(context.Background(), "You're free on Monday at nine.", "")
	require.Nil(t, appErr)

	assert.True(t, strings.HasPrefix(result.AudioURL, "https://audio.example.com/tts/"))
	assert.Equal(t, len("You're free on Monday at nine."), result.CharacterCount)
	assert.Greater(t, result.EstimatedDurationSeconds, 0.0)
	require.Len(t, store.data, 1)
	assert.Equal(t, []byte("mp3-bytes"), store.data[0])
}

func TestGenerateSpeechExplicitVoice(t *testing.T) {
	tts := newTestTTS(t, &fakeAudioStore{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text-to-speech/adam", r.URL.Path)
		w.Write([]byte("mp3"))
	})

	_, appErr := tts.GenerateSpeech(context.Background(), "hello there", "adam")
	require.Nil(t, appErr)
}

func TestGenerateSpeechValidation(t *testing.T) {
	tts := newTestTTS(t, &fakeAudioStore{}, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("upstream should not be called")
	})

	_, appErr := tts.GenerateSpeech(context.Background(), "   ", "")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)

	_, appErr = tts.GenerateSpeech(context.Background(), strings.Repeat("a", 5001), "")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
}

func TestGenerateSpeechUpstreamFailure(t *testing.T) {
	tts := newTestTTS(t, &fakeAudioStore{}, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, appErr := tts.GenerateSpeech(context.Background(), "hello", "")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrProviderUnavailable, appErr.Code)
}

func TestGenerateSpeechStoreFailure(t *testing.T) {
	store := &fakeAudioStore{err: fmt.Errorf("bucket gone")}
	tts := newTestTTS(t, store, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("mp3"))
	})

	_, appErr := tts.GenerateSpeech(context.Background(), "hello", "")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInternalServer, appErr.Code)
}

func TestEstimateSpeechDuration(t *testing.T) {
	// 150 words per minute
	assert.InDelta(t, 60.0, estimateSpeechDuration(strings.Repeat("word ", 150)), 1e-9)
	assert.InDelta(t, 2.0, estimateSpeechDuration("one two three four five"), 1e-9)
	assert.Equal(t, 0.0, estimateSpeechDuration(""))
}

func TestGetVoices(t *testing.T) {
	tts := newTestTTS(t, &fakeAudioStore{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/voices", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"voices": []map[string]string{
				{"voice_id": "v1", "name": "Rachel", "category": "premade"},
				{"voice_id": "v2", "name": "Adam", "category": "premade"},
			},
		})
	})

	voices, appErr := tts.GetVoices(context.Background())
	require.Nil(t, appErr)

	require.Len(t, voices, 2)
	assert.Equal(t, "v1", voices[0].VoiceID)
	assert.Equal(t, "Adam", voices[1].Name)
}

func TestGetVoicesUpstreamFailure(t *testing.T) {
	tts := newTestTTS(t, &fakeAudioStore{}, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, appErr := tts.GetVoices(context.Background())
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrProviderUnavailable, appErr.Code)
}
