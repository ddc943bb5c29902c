// Package config loads service configuration from an optional YAML file
// with environment variable overrides. Secrets are expected through the
// environment, never committed in the file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
)

// Config is the root configuration for one API instance.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Broker  BrokerConfig  `yaml:"broker"`
	Ledger  LedgerConfig  `yaml:"ledger"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SERVER_SHUTDOWN_TIMEOUT"`
}

// StorageConfig selects the ledger store: "memory" for a single-process
// in-memory ledger, "postgres" for the durable one.
type StorageConfig struct {
	Driver      string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	DatabaseURL string `yaml:"database_url" envconfig:"DATABASE_URL"`
	MaxConns    int32  `yaml:"max_conns" envconfig:"DATABASE_MAX_CONNS"`
}

type AuthConfig struct {
	// JWTSecret signs and verifies caller tokens (HS256). When empty the
	// API falls back to a plain account header, for local development only.
	JWTSecret string `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
}

// BrokerConfig configures the integration event publisher. An empty URL
// disables publishing.
type BrokerConfig struct {
	URL      string `yaml:"url" envconfig:"AMQP_URL"`
	Exchange string `yaml:"exchange" envconfig:"AMQP_EXCHANGE"`
}

type LedgerConfig struct {
	// PurchaseCap is the platform-wide per-buyer limit; zero keeps the
	// built-in default. Events may override it downward or upward.
	PurchaseCap uint32 `yaml:"purchase_cap" envconfig:"LEDGER_PURCHASE_CAP"`
	// InitialRates seeds the exchange rate table on first boot, keyed by
	// currency code, scaled by 10^12.
	InitialRates map[string]uint64 `yaml:"initial_rates"`
}

const (
	DefaultPort            = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultStorageDriver   = "memory"
	DefaultMaxConns        = 10
	DefaultExchange        = "ticketledger.events"
)

func defaultInitialRates() map[string]uint64 {
	return map[string]uint64{
		string(domain.CurrencyEUR): 1_080_000_000_000,
		string(domain.CurrencyGBP): 1_270_000_000_000,
		string(domain.CurrencyCAD): 730_000_000_000,
		string(domain.CurrencyAUD): 650_000_000_000,
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Storage.MaxConns == 0 {
		c.Storage.MaxConns = DefaultMaxConns
	}
	if c.Broker.Exchange == "" {
		c.Broker.Exchange = DefaultExchange
	}
	if c.Ledger.InitialRates == nil {
		c.Ledger.InitialRates = defaultInitialRates()
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("storage.database_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver must be memory or postgres, got %q", c.Storage.Driver)
	}

	for code, rate := range c.Ledger.InitialRates {
		if _, err := domain.ParseCurrency(code); err != nil {
			return fmt.Errorf("ledger.initial_rates: unsupported currency %q", code)
		}
		if rate == 0 {
			return fmt.Errorf("ledger.initial_rates: rate for %s must be > 0", code)
		}
	}
	return nil
}
