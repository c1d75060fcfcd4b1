// Package config provides configuration management for the API server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultStoreBackend    = BackendMemory
	DefaultHotelsFile      = "data/hotels.json"
	DefaultTokenTTL        = 24 * time.Hour
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvStoreBackend    = "APP_STORE_BACKEND"
	EnvDatabaseDSN     = "APP_DATABASE_DSN"
	EnvHotelsFile      = "APP_HOTELS_FILE"
	EnvTokenSecret     = "APP_TOKEN_SECRET" //nolint:gosec // env var name, not a credential
	EnvTokenTTL        = "APP_TOKEN_TTL"
	EnvSeedUsers       = "APP_SEED_USERS"
)

// Config holds the application configuration.
type Config struct {
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// Document store backend: memory or postgres.
	StoreBackend string
	DatabaseDSN  string

	// Flat-file hotel store.
	HotelsFile string

	// Token auth settings.
	TokenSecret string
	TokenTTL    time.Duration

	// Seed users (format: "user:password:role,user2:password2:role2").
	SeedUsers string
}

// SeedUser is a parsed entry of the seed users config.
type SeedUser struct {
	Username string
	Password string
	Role     string
}

// Validation errors.
var (
	ErrInvalidServerPort = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel   = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdown   = errors.New("shutdown timeout must be positive")
	ErrInvalidBackend    = errors.New("store backend must be one of: memory, postgres")
	ErrMissingDSN        = errors.New("database DSN must be set when store backend is postgres")
	ErrMissingSecret     = errors.New("token secret must be set")
	ErrInvalidTokenTTL   = errors.New("token TTL must be positive")
	ErrInvalidSeedUsers  = errors.New("seed users must be user:password:role entries")
)

// Load reads configuration from environment variables with defaults.
// Environment variables have priority over default values.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		StoreBackend:    DefaultStoreBackend,
		HotelsFile:      DefaultHotelsFile,
		TokenTTL:        DefaultTokenTTL,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if val := os.Getenv(EnvServerPort); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvServerPort, err)
		}
		c.ServerPort = port
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetricsEnabled, err)
		}
		c.MetricsEnabled = enabled
	}

	if val := os.Getenv(EnvStoreBackend); val != "" {
		c.StoreBackend = val
	}

	if val := os.Getenv(EnvDatabaseDSN); val != "" {
		c.DatabaseDSN = val
	}

	if val := os.Getenv(EnvHotelsFile); val != "" {
		c.HotelsFile = val
	}

	if val := os.Getenv(EnvTokenSecret); val != "" {
		c.TokenSecret = val
	}

	if val := os.Getenv(EnvTokenTTL); val != "" {
		ttl, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvTokenTTL, err)
		}
		c.TokenTTL = ttl
	}

	if val := os.Getenv(EnvSeedUsers); val != "" {
		c.SeedUsers = val
	}

	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdown
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseDSN == "" {
			return ErrMissingDSN
		}
	default:
		return ErrInvalidBackend
	}

	if c.TokenSecret == "" {
		return ErrMissingSecret
	}

	if c.TokenTTL <= 0 {
		return ErrInvalidTokenTTL
	}

	if _, err := c.SeedUserList(); err != nil {
		return err
	}

	return nil
}

// SeedUserList parses the seed users config into entries. An empty
// config yields no entries.
func (c *Config) SeedUserList() ([]SeedUser, error) {
	trimmed := strings.TrimSpace(c.SeedUsers)
	if trimmed == "" {
		return nil, nil
	}

	var users []SeedUser
	for _, entry := range strings.Split(trimmed, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, ErrInvalidSeedUsers
		}

		users = append(users, SeedUser{
			Username: parts[0],
			Password: parts[1],
			Role:     parts[2],
		})
	}

	return users, nil
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
