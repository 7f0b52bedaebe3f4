package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Maps     MapsConfig
	Planner  PlannerConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string // empty allows any origin
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// MapsConfig holds routing provider configuration.
type MapsConfig struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	MaxRetries    int
	RetryInterval time.Duration
}

// PlannerConfig holds trip planning bounds.
type PlannerConfig struct {
	MaxPassengers       int
	NearestDriversLimit int
	RouteLockTTL        time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			CORSOrigins:  getListEnv("SERVER_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "ridepool"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "ridepool-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Maps: MapsConfig{
			BaseURL:       getEnv("MAPS_BASE_URL", "https://maps.googleapis.com"),
			APIKey:        getEnv("MAPS_API_KEY", ""),
			Timeout:       getDurationEnv("MAPS_REQUEST_TIMEOUT", 5*time.Second),
			MaxRetries:    getIntEnv("MAPS_MAX_RETRIES", 2),
			RetryInterval: getDurationEnv("MAPS_RETRY_INTERVAL", 200*time.Millisecond),
		},
		Planner: PlannerConfig{
			MaxPassengers:       getIntEnv("PLANNER_MAX_PASSENGERS", 3),
			NearestDriversLimit: getIntEnv("PLANNER_NEAREST_DRIVERS_LIMIT", 7),
			RouteLockTTL:        getDurationEnv("PLANNER_ROUTE_LOCK_TTL", 30*time.Second),
		},
	}
}

// Validate checks that limits and timeouts are usable.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port == "" {
		errs = append(errs, "server.port is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		errs = append(errs, "database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, fmt.Sprintf("database.max_idle_conns must be 0-%d, got %d", c.Database.MaxOpenConns, c.Database.MaxIdleConns))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, "redis.addr is required")
	}
	if c.Maps.BaseURL == "" {
		errs = append(errs, "maps.base_url is required")
	}
	if c.Maps.Timeout <= 0 {
		errs = append(errs, "maps.timeout must be positive")
	}
	if c.Maps.MaxRetries < 0 {
		errs = append(errs, "maps.max_retries must not be negative")
	}
	if c.Maps.RetryInterval <= 0 {
		errs = append(errs, "maps.retry_interval must be positive")
	}
	if c.Planner.MaxPassengers <= 0 {
		errs = append(errs, fmt.Sprintf("planner.max_passengers must be positive, got %d", c.Planner.MaxPassengers))
	}
	if c.Planner.NearestDriversLimit <= 0 {
		errs = append(errs, fmt.Sprintf("planner.nearest_drivers_limit must be positive, got %d", c.Planner.NearestDriversLimit))
	}
	if c.Planner.RouteLockTTL <= 0 {
		errs = append(errs, "planner.route_lock_ttl must be positive")
	}
	if c.NewRelic.Enabled && c.NewRelic.LicenseKey == "" {
		errs = append(errs, "new_relic.license_key is required when new relic is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping empty items.
func getListEnv(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
