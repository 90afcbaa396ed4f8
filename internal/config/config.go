package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	// CORSOrigins lists the seller front-end origins allowed to call the API.
	CORSOrigins []string

	DB     DatabaseConfig
	Redis  RedisConfig
	Worker WorkerConfig
}

// DatabaseConfig contains connection parameters for the catalog store.
// Driver selects between PostgreSQL (Host/Port/User/...) and an embedded
// SQLite file (Path).
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string
}

// RedisConfig contains Redis connection parameters. An empty Host disables
// the Redis event sink.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Stream   string
}

// WorkerConfig contains settings for the listing event worker.
type WorkerConfig struct {
	EventFlushInterval time.Duration
	EventBufferSize    int
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSOrigins = getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	// Database
	cfg.DB = DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", DriverPostgres),
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		Path:     getEnv("DB_PATH", "catalog.db"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		Stream:   getEnv("EVENT_STREAM", "listing-events"),
	}

	// Worker
	var err error
	if cfg.Worker.EventFlushInterval, err = parseDurationEnv("EVENT_FLUSH_INTERVAL", "2s"); err != nil {
		return nil, fmt.Errorf("invalid EVENT_FLUSH_INTERVAL: %w", err)
	}
	cfg.Worker.EventBufferSize = getEnvInt("EVENT_BUFFER_SIZE", 1024)
	if cfg.Worker.EventBufferSize <= 0 {
		return nil, errors.New("EVENT_BUFFER_SIZE must be positive")
	}

	switch cfg.DB.Driver {
	case DriverPostgres:
		if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
			return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
		}
	case DriverSQLite:
		if cfg.DB.Path == "" {
			return nil, errors.New("DB_PATH must be set when DB_DRIVER is sqlite")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want %q or %q)", cfg.DB.Driver, DriverPostgres, DriverSQLite)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvList splits a comma-separated environment variable, dropping blanks.
func getEnvList(key, def string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, def), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
