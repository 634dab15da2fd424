package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	shared "github.com/Tanmoy095/VaultShip/shared/config"
)

// Rate sources and estimate store backends selectable at startup.
const (
	RateSourceHTTP     = "http"
	RateSourcePostgres = "postgres"

	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config is the consolidation service configuration.
type Config struct {
	shared.CommonConfig

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":50052"`
	LogMode  string `env:"LOG_MODE" envDefault:"production"`

	PricingServiceURL string        `env:"PRICING_SERVICE_URL" envDefault:"http://localhost:8090"`
	PricingTimeout    time.Duration `env:"PRICING_TIMEOUT" envDefault:"10s"`
	RateSource        string        `env:"RATE_SOURCE" envDefault:"http"`
	DefaultCurrency   string        `env:"DEFAULT_CURRENCY" envDefault:"USD"`
	PlatformFeeRate   float64       `env:"PLATFORM_FEE_RATE" envDefault:"0.05"`

	EstimateStore string        `env:"ESTIMATE_STORE" envDefault:"memory"`
	EstimateTTL   time.Duration `env:"ESTIMATE_TTL" envDefault:"24h"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	MaxSessions   int           `env:"MAX_SESSIONS" envDefault:"10000"`

	OrderQueue        string `env:"ORDER_QUEUE" envDefault:"shipment_orders"`
	EventsTopic       string `env:"EVENTS_TOPIC" envDefault:"shipment-estimates"`
	WeightEventsTopic string `env:"WEIGHT_EVENTS_TOPIC" envDefault:"vault-item-weights"`
}

// LoadConfig reads the service config from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backend names and a negative fee rate.
func (c *Config) Validate() error {
	switch c.RateSource {
	case RateSourceHTTP, RateSourcePostgres:
	default:
		return fmt.Errorf("unknown RATE_SOURCE %q", c.RateSource)
	}
	switch c.EstimateStore {
	case StoreMemory, StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("unknown ESTIMATE_STORE %q", c.EstimateStore)
	}
	if c.PlatformFeeRate < 0 {
		return fmt.Errorf("PLATFORM_FEE_RATE must not be negative, got %v", c.PlatformFeeRate)
	}
	return nil
}
