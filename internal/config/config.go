// Package config loads the epicmix command configuration from the
// environment and an optional .env file.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the epicmix command.
type Config struct {
	Username    string
	Password    string
	Environment string
	Timeout     time.Duration

	AppEnv   string
	LogLevel string
}

// Load loads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Username:    GetEnv("EPICMIX_USERNAME", ""),
		Password:    GetEnv("EPICMIX_PASSWORD", ""),
		Environment: GetEnv("EPICMIX_ENV", "PROD"),
		Timeout:     GetEnvDuration("EPICMIX_TIMEOUT", 30*time.Second),
		AppEnv:      GetEnv("APP_ENV", "prod"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Username == "" {
		errs = append(errs, errors.New("EPICMIX_USERNAME is required"))
	}
	if c.Password == "" {
		errs = append(errs, errors.New("EPICMIX_PASSWORD is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("EPICMIX_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// GetEnv returns the environment variable value for key, or def if unset or empty.
func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvDuration returns the environment variable value for key parsed as time.Duration, or def if unset or invalid.
func GetEnvDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return def
}
