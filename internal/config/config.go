// Package config provides process configuration for the folio binaries.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/folio/engine"
)

// Config holds all application configuration.
type Config struct {
	Addr      string
	LogLevel  string
	LogFormat string

	// Provider selects the model backend: "openai", "anthropic" or "mock".
	Provider       string
	Model          string
	EmbeddingModel string
	Stream         bool

	// Storage selects session/analytics persistence: "memory" or "sqlite".
	Storage string
	DBPath  string

	PassagesPath string
	PoliciesPath string

	Owner  OwnerConfig
	SMTP   SMTPConfig
	Twilio TwilioConfig

	RetrievalTimeout    time.Duration
	GenerationTimeout   time.Duration
	NotificationTimeout time.Duration
	AnalyticsTimeout    time.Duration
	TopK                int
}

// OwnerConfig describes the portfolio owner.
type OwnerConfig struct {
	Name               string
	Email              string
	Phone              string
	ResumeLinkTemplate string
}

// SMTPConfig enables resume link e-mails when Addr is set.
type SMTPConfig struct {
	Addr     string
	From     string
	Username string
	Password string
}

// TwilioConfig enables SMS notifications when AccountSID is set.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:           getEnv("FOLIO_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		Provider:       strings.ToLower(getEnv("FOLIO_PROVIDER", "mock")),
		Model:          getEnv("FOLIO_MODEL", ""),
		EmbeddingModel: getEnv("FOLIO_EMBEDDING_MODEL", ""),
		Stream:         getEnvBool("FOLIO_STREAM", false),
		Storage:        strings.ToLower(getEnv("FOLIO_STORAGE", "memory")),
		DBPath:         getEnv("FOLIO_DB_PATH", "./data/folio.db"),
		PassagesPath:   getEnv("FOLIO_PASSAGES", ""),
		PoliciesPath:   getEnv("FOLIO_POLICIES", ""),
		Owner: OwnerConfig{
			Name:               getEnv("FOLIO_OWNER_NAME", ""),
			Email:              getEnv("FOLIO_OWNER_EMAIL", ""),
			Phone:              getEnv("FOLIO_OWNER_PHONE", ""),
			ResumeLinkTemplate: getEnv("FOLIO_RESUME_LINK", ""),
		},
		SMTP: SMTPConfig{
			Addr:     getEnv("SMTP_ADDR", ""),
			From:     getEnv("SMTP_FROM", ""),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			From:       getEnv("TWILIO_FROM", ""),
		},
		RetrievalTimeout:    getEnvDuration("FOLIO_RETRIEVAL_TIMEOUT", engine.DefaultConfig.RetrievalTimeout),
		GenerationTimeout:   getEnvDuration("FOLIO_GENERATION_TIMEOUT", engine.DefaultConfig.GenerationTimeout),
		NotificationTimeout: getEnvDuration("FOLIO_NOTIFICATION_TIMEOUT", engine.DefaultConfig.NotificationTimeout),
		AnalyticsTimeout:    getEnvDuration("FOLIO_ANALYTICS_TIMEOUT", engine.DefaultConfig.AnalyticsTimeout),
		TopK:                getEnvInt("FOLIO_TOP_K", engine.DefaultConfig.TopK),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("FOLIO_ADDR cannot be empty")
	}
	switch c.Provider {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("FOLIO_PROVIDER must be openai, anthropic or mock, got %q", c.Provider)
	}
	switch c.Storage {
	case "memory":
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("FOLIO_DB_PATH cannot be empty with sqlite storage")
		}
	default:
		return fmt.Errorf("FOLIO_STORAGE must be memory or sqlite, got %q", c.Storage)
	}
	if c.RetrievalTimeout <= 0 || c.GenerationTimeout <= 0 || c.NotificationTimeout <= 0 || c.AnalyticsTimeout <= 0 {
		return fmt.Errorf("stage timeouts must be > 0")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("FOLIO_TOP_K must be > 0")
	}
	if c.SMTP.Addr != "" && c.SMTP.From == "" {
		return fmt.Errorf("SMTP_FROM is required when SMTP_ADDR is set")
	}
	if c.Twilio.AccountSID != "" {
		if c.Twilio.AuthToken == "" || c.Twilio.From == "" {
			return fmt.Errorf("TWILIO_AUTH_TOKEN and TWILIO_FROM are required when TWILIO_ACCOUNT_SID is set")
		}
		if c.Owner.Phone == "" {
			return fmt.Errorf("FOLIO_OWNER_PHONE is required for SMS notifications")
		}
	}
	return nil
}

// EmailEnabled reports whether resume link e-mails can be sent.
func (c *Config) EmailEnabled() bool { return c.SMTP.Addr != "" }

// SMSEnabled reports whether owner SMS notifications can be sent.
func (c *Config) SMSEnabled() bool { return c.Twilio.AccountSID != "" }

// EngineConfig returns the stage budgets for the flow controller.
func (c *Config) EngineConfig() engine.Config {
	ec := engine.DefaultConfig
	ec.RetrievalTimeout = c.RetrievalTimeout
	ec.GenerationTimeout = c.GenerationTimeout
	ec.NotificationTimeout = c.NotificationTimeout
	ec.AnalyticsTimeout = c.AnalyticsTimeout
	ec.TopK = c.TopK
	return ec
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
