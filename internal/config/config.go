package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

type Config struct {
	TelegramToken   string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	DefaultTimezone string
	WatchInterval   time.Duration
	DB              DBConfig
	Redis           RedisConfig
	HTTP            HTTPConfig
	Auth            AuthConfig
	Logger          LoggerConfig
}

type DBConfig struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string // sqlite file
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Addr returns host:port
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type HTTPConfig struct {
	Addr           string // empty disables the API
	GinMode        string
	AllowedOrigins []string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load reads the configuration from the environment and validates it
func Load() (*Config, error) {
	var errs []error

	watchInterval, err := time.ParseDuration(getEnvOrDefault("WATCH_INTERVAL", "5s"))
	if err != nil {
		errs = append(errs, fmt.Errorf("WATCH_INTERVAL: %w", err))
	}
	tokenTTL, err := time.ParseDuration(getEnvOrDefault("JWT_TTL", "720h"))
	if err != nil {
		errs = append(errs, fmt.Errorf("JWT_TTL: %w", err))
	}
	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		errs = append(errs, fmt.Errorf("REDIS_DB: %w", err))
	}

	cfg := &Config{
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		DefaultTimezone: getEnvOrDefault("DEFAULT_TIMEZONE", "UTC"),
		WatchInterval:   watchInterval,
		DB: DBConfig{
			Driver:   strings.ToLower(getEnvOrDefault("DB_DRIVER", "postgres")),
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "diabetes_companion"),
			SSLMode:  getEnvOrDefault("DB_SSL_MODE", "disable"),
			Path:     getEnvOrDefault("DB_PATH", "data/companion.db"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		HTTP: HTTPConfig{
			Addr:           os.Getenv("HTTP_ADDR"),
			GinMode:        getEnvOrDefault("GIN_MODE", "release"),
			AllowedOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  tokenTTL,
		},
		Logger: LoggerConfig{
			Level:      logger.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "logs/app.log"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	errs = append(errs, cfg.Validate())
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	var errs []error

	if c.TelegramToken == "" && c.HTTP.Addr == "" {
		errs = append(errs, errors.New("nothing to run: set TELEGRAM_BOT_TOKEN and/or HTTP_ADDR"))
	}
	switch c.DB.Driver {
	case "postgres":
	case "sqlite":
		if c.DB.Path == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DB.Driver))
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_TIMEZONE: %w", err))
	}
	if c.WatchInterval < 0 || (c.WatchInterval > 0 && c.WatchInterval < 100*time.Millisecond) {
		errs = append(errs, errors.New("WATCH_INTERVAL must be at least 100ms"))
	}
	if c.HTTP.Addr != "" {
		if len(c.Auth.JWTSecret) < 16 {
			errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters when HTTP_ADDR is set"))
		}
		if c.Auth.TokenTTL <= 0 {
			errs = append(errs, errors.New("JWT_TTL must be positive"))
		}
	}

	return errors.Join(errs...)
}
