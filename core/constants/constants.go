package constants

import "time"

// Context keys
const (
	ContextTokenData = "token_data"
)

// Scheduling defaults
const (
	DefaultMeetingDurationMinutes = 60
	DefaultBufferMinutes          = 15
	DefaultWorkStart              = "09:00"
	DefaultWorkEnd                = "17:00"
	DefaultTimezone               = "UTC"
	DefaultMaxMeetingsPerDay      = 8
	DefaultProvider               = "google"

	DefaultLookaheadDays    = 14
	RescheduleLookaheadDays = 30
	MaxSuggestions          = 10

	BaseSlotConfidence = 0.8
)

// Provider names
const (
	ProviderGoogle  = "google"
	ProviderOutlook = "outlook"
)

// Redis key prefixes
const (
	RedisKeyVoiceList  = "tts:voices"
	RedisKeyTranscript = "voice:transcript:"
)

// Cache TTLs
const (
	VoiceListTTL  = time.Hour
	TranscriptTTL = 24 * time.Hour
)

// Request limits
const (
	MaxAudioUploadBytes = 25 << 20
	MaxTTSTextLength    = 5000
)
