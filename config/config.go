package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	ListenAddr  string
	Environment string

	// Backend configuration
	BackendBaseURL string
	RequestTimeout time.Duration

	// Redis configuration
	RedisURL    string
	RedisPrefix string

	// Session configuration
	SessionWindow    time.Duration
	WarningThreshold time.Duration

	// View configuration
	ScrollRestoreDelay time.Duration

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	NotifyChannel      string

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		ListenAddr:  getEnv("LISTEN_ADDR", ":8091"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Backend
		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8080/api"),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", "10s"),

		// Redis
		RedisURL:    getEnv("REDIS_URL", "localhost:6379"),
		RedisPrefix: getEnv("REDIS_PREFIX", "portal"),

		// Session
		SessionWindow:    getEnvAsDuration("SESSION_WINDOW", "300s"),
		WarningThreshold: getEnvAsDuration("SESSION_WARNING_THRESHOLD", "60s"),

		// View
		ScrollRestoreDelay: getEnvAsDuration("SCROLL_RESTORE_DELAY", "100ms"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		NotifyChannel:      getEnv("NOTIFY_CHANNEL", "gateway-payment-notifications"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9091"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
