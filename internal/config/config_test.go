package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/grocerybot/core/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadMergesYAMLAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: yaml-token
  admin_id: 42
shop:
  ask_payment_method: true
  delivery_fee: "7.50"
sheets:
  timeout: 3s
jobs:
  pending_digest: "@every 1h"
`)
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("SHEET_URL", "https://sheets.example/hook")

	cfg, err := Load(path, noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.AdminID)
	assert.Equal(t, coreconfig.RunModeLongpoll, cfg.Telegram.RunMode)
	assert.True(t, cfg.Shop.AskPaymentMethod)
	assert.Equal(t, "https://sheets.example/hook", cfg.Sheets.URL)
	assert.Equal(t, 3*time.Second, cfg.Sheets.Timeout)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.False(t, cfg.UsesPostgres())

	pricing, err := cfg.Shop.Pricing()
	require.NoError(t, err)
	assert.True(t, pricing.DeliveryFee.Equal(decimal.RequireFromString("7.5")))
	assert.True(t, pricing.FreeDeliveryThreshold.Equal(decimal.NewFromInt(50)))
	assert.Same(t, &cfg.Config, cfg.CoreConfig())
}

func TestLoadWithoutFileUsesEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("ADMIN_CHAT_ID", "99")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Telegram.AdminID)
}

func TestLoadReadsEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TELEGRAM_TOKEN=from-dotenv\nADMIN_CHAT_ID=5\n"), 0o600))
	// Registered so t.Setenv restores the variables godotenv sets.
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("ADMIN_CHAT_ID", "")
	require.NoError(t, os.Unsetenv("TELEGRAM_TOKEN"))
	require.NoError(t, os.Unsetenv("ADMIN_CHAT_ID"))

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Telegram.Token)
	assert.Equal(t, int64(5), cfg.Telegram.AdminID)
}

func TestNormalizeRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing admin", func(c *Config) { c.Telegram.AdminID = 0 }},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"postgres without host", func(c *Config) { c.Storage.Driver = StoragePostgres }},
		{"bad fee", func(c *Config) { c.Shop.DeliveryFee = "five" }},
		{"negative fee", func(c *Config) { c.Shop.DeliveryFee = "-1" }},
		{"bad cron", func(c *Config) { c.Jobs.PendingDigest = "every day" }},
		{"negative timeout", func(c *Config) { c.Sheets.Timeout = -time.Second }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Telegram.Token = "token"
			cfg.Telegram.AdminID = 1
			tc.mutate(cfg)
			assert.Error(t, cfg.Normalize())
		})
	}
}

func TestNormalizeAcceptsPostgres(t *testing.T) {
	cfg := Default()
	cfg.Telegram.Token = "token"
	cfg.Telegram.AdminID = 1
	cfg.Storage.Driver = " Postgres "
	cfg.Database.Host = "db"
	cfg.Database.Name = "grocery"
	require.NoError(t, cfg.Normalize())
	assert.True(t, cfg.UsesPostgres())
}

func TestSenderOptions(t *testing.T) {
	opts := SenderConfig{Workers: 2, MaxRetries: 1, RetryBackoffMS: 250}.Options()
	assert.Equal(t, 2, opts.Workers)
	assert.Equal(t, 250*time.Millisecond, opts.RetryBackoff)
}
