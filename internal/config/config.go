package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Telemetry providers.
	ProviderTimeout time.Duration
	IOCBaseURL      string
	NDBCBaseURL     string
	StationsFile    string // empty uses the embedded registry

	// Earthquake catalog.
	USGSBaseURL      string
	CatalogCacheSize int
	CatalogCacheTTL  time.Duration

	// Classifier.
	ModelURL          string
	ModelName         string
	ModelTimeout      time.Duration
	ModelMetadataFile string
	AlertThreshold    float64

	// Alert sink.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaAlertTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	providerTimeout, err := parsePositiveDuration("PROVIDER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	modelTimeout, err := parsePositiveDuration("MODEL_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("CATALOG_CACHE_TTL", "1m")
	if err != nil {
		return nil, err
	}

	threshold, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("ALERT_THRESHOLD", "0.1"), 64)
	if err != nil || threshold < 0 || threshold > 1 {
		return nil, errors.New("invalid ALERT_THRESHOLD: must be a number in [0, 1]")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ProviderTimeout: providerTimeout,
		IOCBaseURL:      sharedcfg.EnvOrDefault("IOC_BASE_URL", "https://www.ioc-sealevelmonitoring.org"),
		NDBCBaseURL:     sharedcfg.EnvOrDefault("NDBC_BASE_URL", "https://www.ndbc.noaa.gov"),
		StationsFile:    os.Getenv("STATIONS_FILE"),

		USGSBaseURL:      sharedcfg.EnvOrDefault("USGS_BASE_URL", "https://earthquake.usgs.gov"),
		CatalogCacheSize: parsePositiveInt("CATALOG_CACHE_SIZE", 256),
		CatalogCacheTTL:  cacheTTL,

		ModelURL:          os.Getenv("MODEL_URL"),
		ModelName:         sharedcfg.EnvOrDefault("MODEL_NAME", "tsunami_detection"),
		ModelTimeout:      modelTimeout,
		ModelMetadataFile: sharedcfg.EnvOrDefault("MODEL_METADATA_FILE", "model_metadata.json"),
		AlertThreshold:    threshold,

		KafkaEnabled:    os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAlertTopic: sharedcfg.EnvOrDefault("KAFKA_ALERT_TOPIC", "tsunami-alerts"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaAlertTopic == "" {
			return nil, errors.New("KAFKA_ALERT_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
