package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Detection DetectionConfig
	Monitor   MonitorConfig
	Retention RetentionConfig
	Archive   ArchiveConfig
	Relay     RelayConfig
	Logging   LoggingConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// For SQLite
	Path string
}

// DetectionConfig contains server-side defaults applied when a request
// omits the corresponding parameter
type DetectionConfig struct {
	Contamination   float64
	Seed            int64
	RatioThreshold  float64
	StreakThreshold int
}

// MonitorConfig contains the Prometheus polling monitor configuration
type MonitorConfig struct {
	Enabled       bool
	PrometheusURL string
	QueriesPath   string
	Schedule      string
	QueryStep     time.Duration
	QueryRange    time.Duration
}

// RetentionConfig contains detection run retention configuration
type RetentionConfig struct {
	Enabled       bool
	Days          int
	SweepInterval time.Duration
	BatchSize     int
}

// ArchiveConfig contains S3 archival configuration for expired runs
type ArchiveConfig struct {
	Enabled bool
	Bucket  string
	Prefix  string
	Region  string
}

// RelayConfig contains the alert relay server configuration
type RelayConfig struct {
	Host       string
	Port       int
	BufferSize int
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string
	Format     string // json or console
	OutputPath string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "anomalyd"),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			Path:            getEnv("DB_PATH", "./anomalyd.db"),
		},
		Detection: DetectionConfig{
			Contamination:   getEnvAsFloat("DETECTION_CONTAMINATION", 0.05),
			Seed:            getEnvAsInt64("DETECTION_SEED", 42),
			RatioThreshold:  getEnvAsFloat("DETECTION_RATIO_THRESHOLD", 0.20),
			StreakThreshold: getEnvAsInt("DETECTION_STREAK_THRESHOLD", 20),
		},
		Monitor: MonitorConfig{
			Enabled:       getEnvAsBool("MONITOR_ENABLED", false),
			PrometheusURL: getEnv("MONITOR_PROMETHEUS_URL", "http://localhost:9090"),
			QueriesPath:   getEnv("MONITOR_QUERIES_PATH", "./queries.yaml"),
			Schedule:      getEnv("MONITOR_SCHEDULE", "@every 5m"),
			QueryStep:     getEnvAsDuration("MONITOR_QUERY_STEP", time.Minute),
			QueryRange:    getEnvAsDuration("MONITOR_QUERY_RANGE", 6*time.Hour),
		},
		Retention: RetentionConfig{
			Enabled:       getEnvAsBool("RETENTION_ENABLED", false),
			Days:          getEnvAsInt("RETENTION_DAYS", 30),
			SweepInterval: getEnvAsDuration("RETENTION_SWEEP_INTERVAL", 6*time.Hour),
			BatchSize:     getEnvAsInt("RETENTION_BATCH_SIZE", 500),
		},
		Archive: ArchiveConfig{
			Enabled: getEnvAsBool("ARCHIVE_ENABLED", false),
			Bucket:  getEnv("ARCHIVE_S3_BUCKET", ""),
			Prefix:  getEnv("ARCHIVE_S3_PREFIX", "detection-runs"),
			Region:  getEnv("ARCHIVE_S3_REGION", "us-east-1"),
		},
		Relay: RelayConfig{
			Host:       getEnv("RELAY_HOST", "0.0.0.0"),
			Port:       getEnvAsInt("RELAY_PORT", 8081),
			BufferSize: getEnvAsInt("RELAY_BUFFER_SIZE", 100),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Relay.Port < 1 || c.Relay.Port > 65535 {
		return fmt.Errorf("invalid relay port: %d", c.Relay.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Detection.Contamination <= 0 || c.Detection.Contamination > 0.5 {
		return fmt.Errorf("contamination must be in (0, 0.5], got %g", c.Detection.Contamination)
	}

	if c.Monitor.Enabled && c.Monitor.PrometheusURL == "" {
		return fmt.Errorf("MONITOR_PROMETHEUS_URL must be set when the monitor is enabled")
	}

	if c.Retention.Enabled && c.Retention.Days < 1 {
		return fmt.Errorf("RETENTION_DAYS must be at least 1, got %d", c.Retention.Days)
	}

	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return fmt.Errorf("ARCHIVE_S3_BUCKET must be set when archival is enabled")
	}

	if c.Relay.BufferSize < 1 {
		return fmt.Errorf("RELAY_BUFFER_SIZE must be at least 1, got %d", c.Relay.BufferSize)
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
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
