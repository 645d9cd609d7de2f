// Package config loads the access service configuration from CADENCE_
// prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AttuneLearning/cadence-access/pkg/observability"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Redis         RedisConfig
	Departments   DepartmentsConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// RedisConfig holds the preference store configuration. An empty URL runs
// the service with in-memory preferences.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// DepartmentsConfig holds the upstream department service configuration.
type DepartmentsConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ObservabilityConfig holds logging, metrics, and tracing settings.
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("CADENCE_HOST", "0.0.0.0"),
			Port:            getEnv("CADENCE_PORT", "8080"),
			ReadTimeout:     getEnvDuration("CADENCE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("CADENCE_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("CADENCE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("CADENCE_SHUTDOWN_TIMEOUT", 30*time.Second),
			HealthPort:      getEnv("CADENCE_HEALTH_PORT", "9090"),
		},
		Redis: RedisConfig{
			URL:      getEnv("CADENCE_REDIS_URL", ""),
			Password: getEnv("CADENCE_REDIS_PASSWORD", ""),
			DB:       getEnvInt("CADENCE_REDIS_DB", 0),
		},
		Departments: DepartmentsConfig{
			BaseURL: getEnv("CADENCE_DEPARTMENT_API_URL", ""),
			Timeout: getEnvDuration("CADENCE_DEPARTMENT_API_TIMEOUT", 10*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:           observability.ParseLogLevel(getEnv("CADENCE_LOG_LEVEL", "info")),
			MetricsEnabled:     getEnvBool("CADENCE_METRICS_ENABLED", true),
			OTelEnabled:        getEnvBool("CADENCE_OTEL_ENABLED", false),
			OTelEndpoint:       getEnv("CADENCE_OTEL_ENDPOINT", "localhost:4317"),
			OTelServiceName:    getEnv("CADENCE_OTEL_SERVICE_NAME", "cadence-access"),
			OTelServiceVersion: getEnv("CADENCE_OTEL_SERVICE_VERSION", "1.0.0"),
			OTelInsecure:       getEnvBool("CADENCE_OTEL_INSECURE", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Departments.BaseURL == "" {
		return fmt.Errorf("department API URL is required")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
