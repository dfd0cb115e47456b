// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Trends      TrendsConfig
	Monitor     MonitorConfig
	Export      ExportConfig
	Log         LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// TrendsConfig holds search-interest acquisition configuration
type TrendsConfig struct {
	Language       string
	Timezone       int
	RequestDelay   time.Duration
	MaxRetries     int
	BaseDelay      time.Duration
	RequestTimeout time.Duration
	EventsTopic    string
}

// MonitorConfig holds trending monitor configuration
type MonitorConfig struct {
	Enabled  bool
	Interval time.Duration
	Geos     []string
}

// ExportConfig holds data export configuration
type ExportConfig struct {
	Dir string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "trendwatch"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Trends: TrendsConfig{
			Language:       getEnv("TRENDS_LANGUAGE", "en-US"),
			Timezone:       getEnvAsInt("TRENDS_TIMEZONE", 360),
			RequestDelay:   getEnvAsDuration("TRENDS_REQUEST_DELAY", 5*time.Second),
			MaxRetries:     getEnvAsInt("TRENDS_MAX_RETRIES", 5),
			BaseDelay:      getEnvAsDuration("TRENDS_BASE_DELAY", 10*time.Second),
			RequestTimeout: getEnvAsDuration("TRENDS_REQUEST_TIMEOUT", 30*time.Second),
			EventsTopic:    getEnv("TRENDS_EVENTS_TOPIC", "trends"),
		},
		Monitor: MonitorConfig{
			Enabled:  getEnvAsBool("MONITOR_ENABLED", true),
			Interval: getEnvAsDuration("MONITOR_INTERVAL", 10*time.Minute),
			Geos:     getEnvAsSlice("MONITOR_GEOS", []string{"US"}),
		},
		Export: ExportConfig{
			Dir: getEnv("EXPORT_DIR", filepath.Join(os.TempDir(), "trendwatch_exports")),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Trends.MaxRetries < 1 {
		return fmt.Errorf("TRENDS_MAX_RETRIES must be at least 1")
	}

	if config.Trends.RequestDelay < 0 {
		return fmt.Errorf("TRENDS_REQUEST_DELAY must not be negative")
	}

	if config.Monitor.Enabled && config.Monitor.Interval <= 0 {
		return fmt.Errorf("MONITOR_INTERVAL must be positive when the monitor is enabled")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
