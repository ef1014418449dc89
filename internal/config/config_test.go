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

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "https://www.ioc-sealevelmonitoring.org", cfg.IOCBaseURL)
	assert.Equal(t, "https://www.ndbc.noaa.gov", cfg.NDBCBaseURL)
	assert.Empty(t, cfg.StationsFile)
	assert.Equal(t, "https://earthquake.usgs.gov", cfg.USGSBaseURL)
	assert.Equal(t, 256, cfg.CatalogCacheSize)
	assert.Equal(t, time.Minute, cfg.CatalogCacheTTL)
	assert.Empty(t, cfg.ModelURL)
	assert.Equal(t, "tsunami_detection", cfg.ModelName)
	assert.Equal(t, 30*time.Second, cfg.ModelTimeout)
	assert.Equal(t, "model_metadata.json", cfg.ModelMetadataFile)
	assert.Equal(t, 0.1, cfg.AlertThreshold)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "tsunami-alerts", cfg.KafkaAlertTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("PROVIDER_TIMEOUT", "3s")
	t.Setenv("IOC_BASE_URL", "http://ioc.local")
	t.Setenv("NDBC_BASE_URL", "http://ndbc.local")
	t.Setenv("STATIONS_FILE", "/etc/tsunami/stations.yaml")
	t.Setenv("USGS_BASE_URL", "http://usgs.local")
	t.Setenv("CATALOG_CACHE_SIZE", "16")
	t.Setenv("CATALOG_CACHE_TTL", "5m")
	t.Setenv("MODEL_URL", "http://tfserving:8501")
	t.Setenv("MODEL_NAME", "focal")
	t.Setenv("MODEL_TIMEOUT", "2s")
	t.Setenv("MODEL_METADATA_FILE", "/models/meta.json")
	t.Setenv("ALERT_THRESHOLD", "0.25")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_ALERT_TOPIC", "alerts")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "http://ioc.local", cfg.IOCBaseURL)
	assert.Equal(t, "http://ndbc.local", cfg.NDBCBaseURL)
	assert.Equal(t, "/etc/tsunami/stations.yaml", cfg.StationsFile)
	assert.Equal(t, "http://usgs.local", cfg.USGSBaseURL)
	assert.Equal(t, 16, cfg.CatalogCacheSize)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, "http://tfserving:8501", cfg.ModelURL)
	assert.Equal(t, "focal", cfg.ModelName)
	assert.Equal(t, 2*time.Second, cfg.ModelTimeout)
	assert.Equal(t, "/models/meta.json", cfg.ModelMetadataFile)
	assert.Equal(t, 0.25, cfg.AlertThreshold)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "alerts", cfg.KafkaAlertTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"PROVIDER_TIMEOUT", "MODEL_TIMEOUT", "CATALOG_CACHE_TTL"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "-1s")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidAlertThreshold(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not a number", "high"},
		{"negative", "-0.1"},
		{"above one", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ALERT_THRESHOLD", tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "ALERT_THRESHOLD")
		})
	}
}

func TestLoad_InvalidCacheSizeFallsBack(t *testing.T) {
	t.Setenv("CATALOG_CACHE_SIZE", "0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.CatalogCacheSize)
}
