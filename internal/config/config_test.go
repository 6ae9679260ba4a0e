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

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Zero(t, cfg.ShippingCost)
	assert.Equal(t, "1", cfg.DefaultSellerID)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Zero(t, cfg.APIMaxReadRetries)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("API_BASE_URL", "https://toko-buahku.example.com/api")
	t.Setenv("SHIPPING_COST", "15000")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("VOUCHER_CACHE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "https://toko-buahku.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, int64(15000), cfg.ShippingCost)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.VoucherCacheTTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "HTTP_PORT", "70000"},
		{"relative base url", "API_BASE_URL", "/api"},
		{"negative shipping", "SHIPPING_COST", "-1"},
		{"negative retries", "API_MAX_READ_RETRIES", "-2"},
		{"zero failure ratio", "CB_FAILURE_RATIO", "0"},
		{"sample rate above one", "OTEL_SAMPLE_RATE", "1.5"},
		{"unparsable duration", "API_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
