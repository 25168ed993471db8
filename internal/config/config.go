package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"infinite-experiment/flighttracker/internal/constants"
)

// Config represents the complete application configuration.
// Values are read from the environment; every field has a default except credentials.
type Config struct {
	AppEnv   string
	LogFile  string
	Server   ServerConfig
	OpenSky  OpenSkyConfig
	Schedule ScheduleConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Addr is the listen address (default: ":8080")
	Addr string

	// RefreshRateSeconds is the initial polling interval, bounded 15-60
	RefreshRateSeconds int

	// AllowedOrigins for CORS on the JSON API
	AllowedOrigins []string
}

// OpenSkyConfig contains state feed settings.
type OpenSkyConfig struct {
	BaseURL  string
	Username string
	Password string

	// SnapshotTTL is how long a fetched snapshot is reused. Independent of the refresh rate.
	SnapshotTTL time.Duration

	// Timeout bounds a single /states/all round trip
	Timeout time.Duration
}

// ScheduleConfig selects and describes the schedule source.
type ScheduleConfig struct {
	// Source is "csv" or "db"
	Source string

	CSVPath       string
	CarrierColumn string
	FlightColumn  string

	// ReloadInterval re-reads the source periodically; zero keeps the first load forever
	ReloadInterval time.Duration
}

// CacheConfig selects the snapshot cache backend.
type CacheConfig struct {
	// Backend is "memory" or "redis"
	Backend string
}

// DatabaseConfig holds the schedule database connection.
type DatabaseConfig struct {
	// Driver is "postgres", "sqlite" or empty for no database
	Driver string
	DSN    string
}

// RedisConfig holds the redis connection used by the redis cache backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads the configuration from the environment and validates it
func Load() (*Config, error) {
	refresh, err := intEnv("REFRESH_RATE_SECONDS", constants.DefaultRefreshRateSeconds)
	if err != nil {
		return nil, err
	}
	ttl, err := intEnv("SNAPSHOT_TTL_SECONDS", constants.DefaultSnapshotTTLSeconds)
	if err != nil {
		return nil, err
	}
	timeout, err := intEnv("OPENSKY_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	reload, err := intEnv("SCHEDULE_RELOAD_INTERVAL_SECONDS", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:  stringEnv("APP_ENV", "development"),
		LogFile: os.Getenv("LOG_FILE"),
		Server: ServerConfig{
			Addr:               stringEnv("HTTP_ADDR", ":8080"),
			RefreshRateSeconds: refresh,
			AllowedOrigins:     []string{"https://*", "http://localhost:8081"},
		},
		OpenSky: OpenSkyConfig{
			BaseURL:     stringEnv("OPENSKY_BASE_URL", constants.DefaultOpenSkyBaseURL),
			Username:    os.Getenv("OPENSKY_USERNAME"),
			Password:    os.Getenv("OPENSKY_PASSWORD"),
			SnapshotTTL: time.Duration(ttl) * time.Second,
			Timeout:     time.Duration(timeout) * time.Second,
		},
		Schedule: ScheduleConfig{
			Source:         stringEnv("SCHEDULE_SOURCE", "csv"),
			CSVPath:        stringEnv("SCHEDULE_CSV_PATH", "schedule.csv"),
			CarrierColumn:  stringEnv("SCHEDULE_CARRIER_COLUMN", "Carrier_Code"),
			FlightColumn:   stringEnv("SCHEDULE_FLIGHT_COLUMN", "Flight_No"),
			ReloadInterval: time.Duration(reload) * time.Second,
		},
		Cache: CacheConfig{
			Backend: stringEnv("CACHE_BACKEND", "memory"),
		},
		Database: DatabaseConfig{
			Driver: os.Getenv("DB_DRIVER"),
			DSN:    databaseDSN(),
		},
		Redis: RedisConfig{
			Addr:     fmt.Sprintf("%s:%s", stringEnv("REDIS_HOST", "localhost"), stringEnv("REDIS_PORT", "6379")),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field requirements
func (c *Config) Validate() error {
	if c.Server.RefreshRateSeconds < constants.MinRefreshRateSeconds ||
		c.Server.RefreshRateSeconds > constants.MaxRefreshRateSeconds {
		return fmt.Errorf("REFRESH_RATE_SECONDS must be between %d and %d, got %d",
			constants.MinRefreshRateSeconds, constants.MaxRefreshRateSeconds, c.Server.RefreshRateSeconds)
	}
	if c.OpenSky.SnapshotTTL <= 0 {
		return fmt.Errorf("SNAPSHOT_TTL_SECONDS must be positive")
	}
	if c.OpenSky.Timeout <= 0 {
		return fmt.Errorf("OPENSKY_TIMEOUT_SECONDS must be positive")
	}
	if c.Schedule.ReloadInterval < 0 {
		return fmt.Errorf("SCHEDULE_RELOAD_INTERVAL_SECONDS must not be negative")
	}

	switch c.Schedule.Source {
	case "csv":
		if c.Schedule.CSVPath == "" {
			return fmt.Errorf("SCHEDULE_CSV_PATH is required for the csv schedule source")
		}
	case "db":
		if c.Database.Driver == "" {
			return fmt.Errorf("DB_DRIVER is required for the db schedule source")
		}
	default:
		return fmt.Errorf("unknown SCHEDULE_SOURCE %q", c.Schedule.Source)
	}

	switch c.Database.Driver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}
	return nil
}

// databaseDSN prefers DB_DSN and otherwise builds a postgres DSN from PG_* variables
func databaseDSN() string {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return dsn
	}
	if os.Getenv("DB_DRIVER") != "postgres" {
		return ""
	}
	host := os.Getenv("PG_HOST")
	port := os.Getenv("PG_PORT")
	user := os.Getenv("PG_USER")
	dbname := os.Getenv("PG_DB")
	password := os.Getenv("PG_PASSWORD")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbname)
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
