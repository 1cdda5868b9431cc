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

	// NeoWs API configuration.
	NeoWsBaseURL   string
	NeoWsAPIKey    string
	NeoWsTimeout   time.Duration
	NeoWsRateLimit float64
	NeoWsRateBurst int
	NeoWsCacheSize int

	FeedWindowDays  int
	RefreshInterval time.Duration

	// Optional Kafka sink for assessed objects.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// AuthToken gates the /api routes when non-empty.
	AuthToken string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	neowsTimeout, err := parsePositiveDuration("NEOWS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("NEOWS_RATE_LIMIT", "1"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid NEOWS_RATE_LIMIT: must be a positive number")
	}

	rateBurst, err := strconv.Atoi(sharedcfg.EnvOrDefault("NEOWS_RATE_BURST", "5"))
	if err != nil || rateBurst < 1 {
		return nil, errors.New("invalid NEOWS_RATE_BURST: must be at least 1")
	}

	windowDays, err := strconv.Atoi(sharedcfg.EnvOrDefault("FEED_WINDOW_DAYS", "3"))
	if err != nil || windowDays < 1 || windowDays > 7 {
		return nil, errors.New("invalid FEED_WINDOW_DAYS: must be 1-7")
	}

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	kafkaEnabled := kafkaBrokers != ""
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NeoWsBaseURL:   sharedcfg.EnvOrDefault("NEOWS_BASE_URL", "https://api.nasa.gov/neo/rest/v1"),
		NeoWsAPIKey:    sharedcfg.EnvOrDefault("NEOWS_API_KEY", "DEMO_KEY"),
		NeoWsTimeout:   neowsTimeout,
		NeoWsRateLimit: rateLimit,
		NeoWsRateBurst: rateBurst,
		NeoWsCacheSize: parseCacheSize(),

		FeedWindowDays:  windowDays,
		RefreshInterval: refreshInterval,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "neo-risk-assessments"),

		AuthToken: os.Getenv("AUTH_TOKEN"),
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
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

func parseCacheSize() int {
	if s := os.Getenv("NEOWS_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}
