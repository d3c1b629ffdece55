// Package config loads the grocery bot configuration from YAML, .env files and
// the process environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	coreconfig "github.com/m3rciful/grocerybot/core/config"
	coredatabase "github.com/m3rciful/grocerybot/core/database"
	tgsender "github.com/m3rciful/grocerybot/core/telegram/sender"
	"github.com/m3rciful/grocerybot/internal/jobs"
	"github.com/m3rciful/grocerybot/internal/orders"
)

const (
	// StorageMemory keeps orders in process memory.
	StorageMemory = "memory"
	// StoragePostgres keeps orders in PostgreSQL.
	StoragePostgres = "postgres"
)

// StorageConfig selects the order ledger backend.
type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
}

// ShopConfig holds checkout behaviour and delivery pricing.
// Money values are decimal strings such as "5.00".
type ShopConfig struct {
	AskPaymentMethod      bool   `yaml:"ask_payment_method" envconfig:"SHOP_ASK_PAYMENT_METHOD"`
	FreeDeliveryThreshold string `yaml:"free_delivery_threshold" envconfig:"SHOP_FREE_DELIVERY_THRESHOLD"`
	DeliveryFee           string `yaml:"delivery_fee" envconfig:"SHOP_DELIVERY_FEE"`
}

// Pricing parses the configured money values.
func (s ShopConfig) Pricing() (orders.Pricing, error) {
	threshold, err := decimal.NewFromString(strings.TrimSpace(s.FreeDeliveryThreshold))
	if err != nil {
		return orders.Pricing{}, fmt.Errorf("shop.free_delivery_threshold: %w", err)
	}
	fee, err := decimal.NewFromString(strings.TrimSpace(s.DeliveryFee))
	if err != nil {
		return orders.Pricing{}, fmt.Errorf("shop.delivery_fee: %w", err)
	}
	if threshold.IsNegative() || fee.IsNegative() {
		return orders.Pricing{}, fmt.Errorf("shop pricing must not be negative")
	}
	return orders.Pricing{FreeDeliveryThreshold: threshold, DeliveryFee: fee}, nil
}

// CatalogConfig points at an optional YAML catalog. Empty uses the built-in one.
type CatalogConfig struct {
	Path string `yaml:"path" envconfig:"CATALOG_PATH"`
}

// SheetsConfig configures the spreadsheet webhook that mirrors new orders.
// An empty URL disables it.
type SheetsConfig struct {
	URL     string        `yaml:"url" envconfig:"SHEET_URL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"SHEET_TIMEOUT"`
}

// EventsConfig configures the NATS publisher. An empty URL disables it.
type EventsConfig struct {
	NATSURL       string `yaml:"nats_url" envconfig:"NATS_URL"`
	SubjectPrefix string `yaml:"subject_prefix" envconfig:"NATS_SUBJECT_PREFIX"`
	ClientName    string `yaml:"client_name" envconfig:"NATS_CLIENT_NAME"`
}

// HTTPConfig configures the read-only order API. An empty Listen disables it.
type HTTPConfig struct {
	Listen string `yaml:"listen" envconfig:"HTTP_LISTEN"`
	Token  string `yaml:"token" envconfig:"HTTP_TOKEN"`
}

// JobsConfig holds cron specs for background jobs. Empty disables a job.
type JobsConfig struct {
	PendingDigest string `yaml:"pending_digest" envconfig:"JOBS_PENDING_DIGEST"`
}

// SenderConfig tunes the outbound Telegram queue.
type SenderConfig struct {
	QueueSize      int `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	Workers        int `yaml:"workers" envconfig:"SENDER_WORKERS"`
	MaxRetries     int `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES"`
	RetryBackoffMS int `yaml:"retry_backoff_ms" envconfig:"SENDER_RETRY_BACKOFF_MS"`
	MaxDurationMS  int `yaml:"max_duration_ms" envconfig:"SENDER_MAX_DURATION_MS"`
}

// Options converts the section into dispatcher options.
func (s SenderConfig) Options() tgsender.Options {
	return tgsender.Options{
		QueueSize:    s.QueueSize,
		Workers:      s.Workers,
		MaxRetries:   s.MaxRetries,
		RetryBackoff: time.Duration(s.RetryBackoffMS) * time.Millisecond,
		MaxDuration:  time.Duration(s.MaxDurationMS) * time.Millisecond,
	}
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Storage  StorageConfig       `yaml:"storage"`
	Shop     ShopConfig          `yaml:"shop"`
	Catalog  CatalogConfig       `yaml:"catalog"`
	Sheets   SheetsConfig        `yaml:"sheets"`
	Events   EventsConfig        `yaml:"events"`
	HTTP     HTTPConfig          `yaml:"http"`
	Jobs     JobsConfig          `yaml:"jobs"`
	Sender   SenderConfig        `yaml:"sender"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Default returns a configuration with every optional value filled in.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Driver: StorageMemory},
		Shop: ShopConfig{
			FreeDeliveryThreshold: "50.00",
			DeliveryFee:           "5.00",
		},
		Sheets: SheetsConfig{Timeout: 10 * time.Second},
		Events: EventsConfig{SubjectPrefix: "orders", ClientName: "grocerybot"},
		Sender: SenderConfig{MaxRetries: 3},
		Database: coredatabase.Config{
			Port:           "5432",
			SSLMode:        "disable",
			MaxConnections: 10,
		},
	}
}

// Load reads the YAML file at path (optional) over Default, applies .env and
// environment overrides, then normalizes and validates the result.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if err := coreconfig.Decode(path, cfg, envFiles...); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize validates the configuration and canonicalizes enumerations.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if c.Telegram.AdminID == 0 {
		return fmt.Errorf("operator chat id is required (telegram.admin_id or ADMIN_CHAT_ID)")
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case "", StorageMemory:
		c.Storage.Driver = StorageMemory
	case StoragePostgres:
		if strings.TrimSpace(c.Database.Host) == "" || strings.TrimSpace(c.Database.Name) == "" {
			return fmt.Errorf("database.host and database.name are required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: memory, postgres", c.Storage.Driver)
	}

	if _, err := c.Shop.Pricing(); err != nil {
		return err
	}
	if c.Sheets.Timeout < 0 {
		return fmt.Errorf("sheets.timeout must be >= 0")
	}

	c.Jobs.PendingDigest = strings.TrimSpace(c.Jobs.PendingDigest)
	if c.Jobs.PendingDigest != "" {
		if err := jobs.ValidateSpec(c.Jobs.PendingDigest); err != nil {
			return fmt.Errorf("jobs.pending_digest: %w", err)
		}
	}

	c.HTTP.Listen = strings.TrimSpace(c.HTTP.Listen)
	c.Sheets.URL = strings.TrimSpace(c.Sheets.URL)
	c.Events.NATSURL = strings.TrimSpace(c.Events.NATSURL)
	return nil
}

// UsesPostgres reports whether orders live in PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.Storage.Driver == StoragePostgres
}
