package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort    int      `env:"HTTP_PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Remote storefront API
	APIBaseURL        string        `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"`
	APITimeout        time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
	APIMaxReadRetries int           `env:"API_MAX_READ_RETRIES" envDefault:"0"`

	// Circuit breaker around the remote API
	CBFailureRatio float64       `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32        `env:"CB_MIN_REQUESTS" envDefault:"5"`
	CBOpenTimeout  time.Duration `env:"CB_OPEN_TIMEOUT" envDefault:"30s"`

	// Storefront rules
	ShippingCost    int64  `env:"SHIPPING_COST" envDefault:"0"`
	DefaultSellerID string `env:"DEFAULT_SELLER_ID" envDefault:"1"`

	// Workspaces of users idle for longer than WorkspaceIdle are dropped.
	WorkspaceIdle  time.Duration `env:"WORKSPACE_IDLE" envDefault:"30m"`
	WorkspaceSweep time.Duration `env:"WORKSPACE_SWEEP_INTERVAL" envDefault:"1m"`

	// Redis voucher cache. Empty RedisAddr disables the cache.
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:""`
	RedisPass       string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	VoucherCacheTTL time.Duration `env:"VOUCHER_CACHE_TTL" envDefault:"1m"`

	// Kafka. No brokers disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// OpenTelemetry
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %q", c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API timeout must be positive, got %s", c.APITimeout)
	}
	if c.APIMaxReadRetries < 0 {
		return fmt.Errorf("API read retries must not be negative, got %d", c.APIMaxReadRetries)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("circuit breaker failure ratio must be in (0, 1], got %v", c.CBFailureRatio)
	}
	if c.ShippingCost < 0 {
		return fmt.Errorf("shipping cost must not be negative, got %d", c.ShippingCost)
	}
	if c.WorkspaceIdle <= 0 || c.WorkspaceSweep <= 0 {
		return fmt.Errorf("workspace idle and sweep durations must be positive")
	}
	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		return fmt.Errorf("OTel sample rate must be in [0, 1], got %v", c.OTelSampleRate)
	}
	return nil
}
