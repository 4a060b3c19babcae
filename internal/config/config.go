package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	JWT     JWTConfig
	Gate    GateConfig
	Storage StorageConfig
	Notes   NotesConfig
	Billing BillingConfig
	Events  EventsConfig
}

type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
}

type GateConfig struct {
	// FreeDocLimit is the number of distinct documents a free user may
	// access before the gate answers payment-required.
	FreeDocLimit int
	// AdminEmails promote matching registrations to the admin role.
	AdminEmails []string
}

type StorageConfig struct {
	UploadDir      string
	MaxUploadBytes int64
}

type NotesConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type BillingConfig struct {
	SimulatePayments bool
	WebhookSecret    string
}

type EventsConfig struct {
	KafkaBrokers []string
	Topic        string
}

// LoadConfig reads configuration from the environment, with .env support for
// local development.
func LoadConfig() (*Config, error) {
	// Best effort: a missing .env is fine in production.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", ""),
			TokenTTL: getEnvDuration("TOKEN_TTL", 24*time.Hour),
		},
		Gate: GateConfig{
			FreeDocLimit: getEnvInt("FREE_DOC_LIMIT", 2),
			AdminEmails:  splitList(getEnv("ADMIN_EMAILS", "")),
		},
		Storage: StorageConfig{
			UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
			MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 25<<20),
		},
		Notes: NotesConfig{
			BaseURL: getEnv("NOTES_URL", ""),
			APIKey:  getEnv("NOTES_API_KEY", ""),
			Timeout: getEnvDuration("NOTES_TIMEOUT", 30*time.Second),
		},
		Billing: BillingConfig{
			SimulatePayments: getEnvBool("SIMULATE_PAYMENTS", true),
			WebhookSecret:    getEnv("BILLING_WEBHOOK_SECRET", ""),
		},
		Events: EventsConfig{
			KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:        getEnv("KAFKA_TOPIC", "forstudents.notifications"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWT.Secret == "" {
		if cfg.Environment == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWT.Secret = "dev-jwt-secret"
	}
	if cfg.Gate.FreeDocLimit < 0 {
		return nil, fmt.Errorf("FREE_DOC_LIMIT cannot be negative")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(v string) slog.Level {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsAdminEmail reports whether an email is on the configured admin
// allow-list. Matching is case-insensitive.
func (g GateConfig) IsAdminEmail(email string) bool {
	for _, e := range g.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}
