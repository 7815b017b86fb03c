package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string

	HTTP      HTTPConfig
	OpenAI    OpenAIConfig
	CrustData CrustDataConfig
	Redis     RedisConfig
	Log       LogConfig
}

type HTTPConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration

	// Output ceilings for the two phases of the chat loop. The follow-up call
	// after tool execution may emit a large structured payload, so it gets a
	// materially larger budget.
	MaxTokensInitial  int
	MaxTokensFollowUp int
}

type CrustDataConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	S3Username string
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ChatTTL      time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

func Load() (*Config, error) {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}

	poolSize, err := intEnv("REDIS_POOL_SIZE", 10)
	if err != nil {
		return nil, err
	}

	maxInitial, err := intEnv("OPENAI_MAX_TOKENS_INITIAL", 1500)
	if err != nil {
		return nil, err
	}

	maxFollowUp, err := intEnv("OPENAI_MAX_TOKENS_FOLLOWUP", 3000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		HTTP: HTTPConfig{
			Port:         port,
			ReadTimeout:  durationEnv("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: durationEnv("HTTP_WRITE_TIMEOUT", 180*time.Second),
			IdleTimeout:  durationEnv("HTTP_IDLE_TIMEOUT", 120*time.Second),
		},
		OpenAI: OpenAIConfig{
			APIKey:            os.Getenv("OPENAI_API_KEY"),
			Model:             getEnv("OPENAI_MODEL", "gpt-5"),
			Timeout:           durationEnv("OPENAI_TIMEOUT", 120*time.Second),
			MaxTokensInitial:  maxInitial,
			MaxTokensFollowUp: maxFollowUp,
		},
		CrustData: CrustDataConfig{
			APIKey:     os.Getenv("CRUSTDATA_API_KEY"),
			BaseURL:    getEnv("CRUSTDATA_BASE_URL", "https://api.crustdata.com"),
			Timeout:    durationEnv("CRUSTDATA_TIMEOUT", 30*time.Second),
			S3Username: getEnv("CRUSTDATA_S3_USERNAME", "consultgpt-user"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     poolSize,
			DialTimeout:  durationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			ChatTTL:      durationEnv("REDIS_CHAT_TTL", 7*24*time.Hour),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.HTTP.Port)
	}
	// CRUSTDATA_API_KEY is optional: without it the chat loop runs with tool
	// use disabled and lookups report "not configured".
	return nil
}

// CrustDataEnabled reports whether the data adapter can be constructed.
func (c *Config) CrustDataEnabled() bool {
	return c.CrustData.APIKey != ""
}

// RedisEnabled reports whether chat history persistence is available.
func (c *Config) RedisEnabled() bool {
	return c.Redis.URL != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	// Bare integers are treated as seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
