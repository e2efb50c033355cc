package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"syncme/core/logger"
)

type ServerConfig struct {
	Port      string
	LogLevel  string
	LogFormat string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	ExpiryMinutes int
}

type GoogleAPIConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type MicrosoftAPIConfig struct {
	ClientID     string
	ClientSecret string
	TenantID     string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type WhisperConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type ElevenLabsConfig struct {
	APIKey         string
	BaseURL        string
	DefaultVoiceID string
}

type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	GoogleAPI    GoogleAPIConfig
	MicrosoftAPI MicrosoftAPIConfig
	OpenAI       OpenAIConfig
	Whisper      WhisperConfig
	ElevenLabs   ElevenLabsConfig
	S3           S3Config
}

var (
	instance *Config
	once     sync.Once
)

// Load reads .env (when present) and environment variables into the config
// singleton. Missing required values are reported as a single error.
func Load() (*Config, error) {
	var err error
	once.Do(func() {
		instance, err = load()
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// Get returns the loaded config. It panics when Load has not been called,
// which only happens on a wiring mistake during startup.
func Get() *Config {
	if instance == nil {
		panic("config: Get called before Load")
	}
	return instance
}

// GetSafe returns the config without panicking, for call sites that can
// degrade gracefully.
func GetSafe() (*Config, bool) {
	return instance, instance != nil
}

// SetForTesting replaces the singleton. Test helper only.
func SetForTesting(cfg *Config) {
	instance = cfg
}

func load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("Config:Load:NoDotenv", "detail", "falling back to process environment")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_EXPIRY_MINUTES", 60)
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("WHISPER_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("WHISPER_MODEL", "whisper-1")
	v.SetDefault("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1")
	v.SetDefault("MICROSOFT_TENANT_ID", "common")
	v.SetDefault("S3_REGION", "us-east-1")

	cfg := &Config{
		Server: ServerConfig{
			Port:      v.GetString("SERVER_PORT"),
			LogLevel:  v.GetString("LOG_LEVEL"),
			LogFormat: v.GetString("LOG_FORMAT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			ExpiryMinutes: v.GetInt("JWT_EXPIRY_MINUTES"),
		},
		GoogleAPI: GoogleAPIConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		},
		MicrosoftAPI: MicrosoftAPIConfig{
			ClientID:     v.GetString("MICROSOFT_CLIENT_ID"),
			ClientSecret: v.GetString("MICROSOFT_CLIENT_SECRET"),
			TenantID:     v.GetString("MICROSOFT_TENANT_ID"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("OPENAI_API_KEY"),
			BaseURL: v.GetString("OPENAI_BASE_URL"),
			Model:   v.GetString("OPENAI_MODEL"),
		},
		Whisper: WhisperConfig{
			APIKey:  v.GetString("WHISPER_API_KEY"),
			BaseURL: v.GetString("WHISPER_BASE_URL"),
			Model:   v.GetString("WHISPER_MODEL"),
		},
		ElevenLabs: ElevenLabsConfig{
			APIKey:         v.GetString("ELEVENLABS_API_KEY"),
			BaseURL:        v.GetString("ELEVENLABS_BASE_URL"),
			DefaultVoiceID: v.GetString("ELEVENLABS_DEFAULT_VOICE_ID"),
		},
		S3: S3Config{
			Region:          v.GetString("S3_REGION"),
			Bucket:          v.GetString("S3_BUCKET"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		},
	}

	var missing []string
	if cfg.Database.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if cfg.Database.User == "" {
		missing = append(missing, "DB_USER")
	}
	if cfg.Database.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	if cfg.JWT.Secret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if cfg.Whisper.APIKey == "" {
		cfg.Whisper.APIKey = cfg.OpenAI.APIKey
	}

	return cfg, nil
}
