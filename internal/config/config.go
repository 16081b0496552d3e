package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Auth       AuthConfig
	Session    SessionConfig
	Audio      AudioConfig
	Transcribe TranscribeConfig
}

type ServerConfig struct {
	Host string
	Port int
}

// AuthConfig holds the single recognized credential. The service supports
// exactly one identity; a multi-user deployment would need a user store.
type AuthConfig struct {
	Username string
	Password string
}

type SessionConfig struct {
	Secret    string
	Lifetime  time.Duration
	RedisAddr string // empty: in-memory session table
	RedisDB   int
	RedisPass string
}

type AudioConfig struct {
	FFmpegPath  string
	FFprobePath string
	TempDir     string // empty: os.TempDir()
	MaxUploadMB int64
}

type TranscribeConfig struct {
	Backend   string // "huggingface" or "openai"
	Model     string
	BaseURL   string
	APIToken  string
	OpenAIKey string
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	lifetimeMin, err := getEnvInt("SESSION_LIFETIME_MINUTES", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME_MINUTES: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxUploadMB, err := getEnvInt("MAX_UPLOAD_MB", 32)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Auth: AuthConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Session: SessionConfig{
			Secret:    getEnv("SESSION_SECRET", ""),
			Lifetime:  time.Duration(lifetimeMin) * time.Minute,
			RedisAddr: getEnv("REDIS_ADDR", ""),
			RedisDB:   redisDB,
			RedisPass: getEnv("REDIS_PASSWORD", ""),
		},
		Audio: AudioConfig{
			FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
			FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
			TempDir:     getEnv("AUDIO_TEMP_DIR", ""),
			MaxUploadMB: int64(maxUploadMB),
		},
		Transcribe: TranscribeConfig{
			Backend:   getEnv("TRANSCRIBE_BACKEND", "huggingface"),
			Model:     getEnv("TRANSCRIBE_MODEL", "openai/whisper-medium"),
			BaseURL:   getEnv("TRANSCRIBE_BASE_URL", "https://api-inference.huggingface.co"),
			APIToken:  getEnv("HUGGINGFACEHUB_API_TOKEN", ""),
			OpenAIKey: getEnv("OPENAI_API_KEY", ""),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Auth.Password == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}
	if c.Session.Secret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if c.Transcribe.Backend == "openai" {
		if c.Transcribe.OpenAIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	} else if c.Transcribe.APIToken == "" {
		missing = append(missing, "HUGGINGFACEHUB_API_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
