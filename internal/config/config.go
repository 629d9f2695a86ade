package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string
	Debug      bool

	// Database: sqlite (default), postgres or mysql. URL is required for
	// postgres/mysql; Path is the sqlite file.
	DatabaseType   string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string

	// Session signing secret and lifetime. The secret is read once here and
	// injected into the session manager; nothing else touches the env var.
	// GeneratedSecret marks the dev fallback where an ephemeral secret was
	// generated because SESSION_SECRET was absent.
	SessionSecret   string
	SessionDuration time.Duration
	GeneratedSecret bool

	AppBaseURL string

	// Amazon SES settings for invitation and reminder email. An empty
	// SESFromEmail disables sending.
	AWSRegion    string
	SESFromEmail string
	SESFromName  string

	// Google sign-in. An empty client ID disables the OAuth routes.
	GoogleClientID     string
	GoogleClientSecret string

	// Cron expression for the daily due-event reminder job.
	ReminderSchedule string
}

// Load reads configuration from the environment (optionally seeded from a
// .env file) with sensible defaults.
func Load() (*Config, error) {
	// Missing .env files are acceptable; configuration may come from the
	// environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("PORT", "8080"),
		Debug:              getEnv("DEBUG", "") == "true",
		DatabaseType:       strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DatabaseURL:        os.Getenv("DB_URL"),
		DatabasePath:       getEnv("DB_PATH", "./farmtracker.db"),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", "./migrations"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		SessionDuration:    7 * 24 * time.Hour,
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:8080"),
		AWSRegion:          getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail:       os.Getenv("SES_FROM_EMAIL"),
		SESFromName:        getEnv("SES_FROM_NAME", "Farm Tracker"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		ReminderSchedule:   getEnv("REMINDER_SCHEDULE", "0 7 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures required fields are populated. When SESSION_SECRET is
// absent an ephemeral secret is generated so development servers start
// without setup; sessions will not survive a restart in that mode.
func (c *Config) Validate() error {
	switch c.DatabaseType {
	case "sqlite", "sqlite3", "":
		if c.DatabasePath == "" {
			return fmt.Errorf("DB_PATH must be provided for sqlite")
		}
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DB_URL must be provided for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	if c.SessionSecret == "" {
		secret, err := generateSecret()
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		c.SessionSecret = secret
		c.GeneratedSecret = true
	}

	return nil
}

func generateSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
