package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "mock", cfg.Provider)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, 3*time.Second, cfg.RetrievalTimeout)
	assert.Equal(t, 10*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 4, cfg.TopK)
	assert.False(t, cfg.EmailEnabled())
	assert.False(t, cfg.SMSEnabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("FOLIO_PROVIDER", "Anthropic")
	t.Setenv("FOLIO_STORAGE", "sqlite")
	t.Setenv("FOLIO_GENERATION_TIMEOUT", "250ms")
	t.Setenv("FOLIO_TOP_K", "6")
	t.Setenv("FOLIO_STREAM", "yes")
	t.Setenv("SMTP_ADDR", "smtp.example.com:587")
	t.Setenv("SMTP_FROM", "folio@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "sqlite", cfg.Storage)
	assert.True(t, cfg.Stream)
	assert.True(t, cfg.EmailEnabled())

	ec := cfg.EngineConfig()
	assert.Equal(t, 250*time.Millisecond, ec.GenerationTimeout)
	assert.Equal(t, 6, ec.TopK)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("FOLIO_RETRIEVAL_TIMEOUT", "soon")
	t.Setenv("FOLIO_TOP_K", "many")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.RetrievalTimeout)
	assert.Equal(t, 4, cfg.TopK)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Addr: ":8080", Provider: "mock", Storage: "memory", DBPath: "x.db",
			RetrievalTimeout: time.Second, GenerationTimeout: time.Second,
			NotificationTimeout: time.Second, AnalyticsTimeout: time.Second, TopK: 4,
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		err    string
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }, "FOLIO_ADDR"},
		{"unknown provider", func(c *Config) { c.Provider = "llama" }, "FOLIO_PROVIDER"},
		{"unknown storage", func(c *Config) { c.Storage = "redis" }, "FOLIO_STORAGE"},
		{"sqlite without path", func(c *Config) { c.Storage = "sqlite"; c.DBPath = "" }, "FOLIO_DB_PATH"},
		{"zero timeout", func(c *Config) { c.GenerationTimeout = 0 }, "timeouts"},
		{"zero top k", func(c *Config) { c.TopK = 0 }, "FOLIO_TOP_K"},
		{"smtp without from", func(c *Config) { c.SMTP.Addr = "smtp:25" }, "SMTP_FROM"},
		{"twilio partial", func(c *Config) { c.Twilio.AccountSID = "AC1" }, "TWILIO_AUTH_TOKEN"},
		{"twilio without owner phone", func(c *Config) {
			c.Twilio = TwilioConfig{AccountSID: "AC1", AuthToken: "t", From: "+1"}
		}, "FOLIO_OWNER_PHONE"},
	}

	require.NoError(t, valid().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}
