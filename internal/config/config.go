// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Log    LogConfig
}

// ServerConfig holds the TCP command server settings.
type ServerConfig struct {
	Address       string
	Port          int
	Workers       int
	SnapshotDepth int
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Address:       getEnvString("SKOLL_ADDRESS", "0.0.0.0"),
			Port:          getEnvInt("SKOLL_PORT", 9001),
			Workers:       getEnvInt("SKOLL_WORKERS", 10),
			SnapshotDepth: getEnvInt("SKOLL_SNAPSHOT_DEPTH", 20),
		},
		Log: LogConfig{
			Level: getEnvString("SKOLL_LOG_LEVEL", "info"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.Workers <= 0 {
		return fmt.Errorf("invalid worker count: %d", c.Server.Workers)
	}
	if c.Server.SnapshotDepth <= 0 {
		return fmt.Errorf("invalid snapshot depth: %d", c.Server.SnapshotDepth)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
