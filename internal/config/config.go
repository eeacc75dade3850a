// Package config loads the neodbg settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Listen is the Neovim RPC address. Empty disables the mirror.
	Listen string
	// DelveAddr is the address of the headless Delve server.
	DelveAddr string

	// StopTimeout bounds the UI loop startup and shutdown.
	StopTimeout time.Duration
	// AutoStart starts the mirror with the console when Neovim is present.
	AutoStart bool
	// StackDepth is the number of frames loaded at each stop.
	StackDepth int
	// HostHeight fixes the console window height, zero keeps it.
	HostHeight int

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Listen:    getEnv("NVIM_LISTEN_ADDRESS", ""),
		DelveAddr: getEnv("NEODBG_DLV_ADDR", "127.0.0.1:2345"),

		StopTimeout: getEnvDuration("NEODBG_STOP_TIMEOUT", time.Second),
		AutoStart:   getEnvBool("NEODBG_AUTOSTART", true),
		StackDepth:  getEnvInt("NEODBG_STACK_DEPTH", 50),
		HostHeight:  getEnvInt("NEODBG_HOST_HEIGHT", 0),

		LogLevel:  getEnv("NEODBG_LOG_LEVEL", "info"),
		LogFormat: getEnv("NEODBG_LOG_FORMAT", "text"),
		LogFile:   getEnv("NEODBG_LOG_FILE", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DelveAddr == "" {
		return fmt.Errorf("NEODBG_DLV_ADDR is required")
	}
	if c.StopTimeout <= 0 {
		return fmt.Errorf("NEODBG_STOP_TIMEOUT must be positive, got %s", c.StopTimeout)
	}
	if c.StackDepth <= 0 {
		return fmt.Errorf("NEODBG_STACK_DEPTH must be positive, got %d", c.StackDepth)
	}
	if c.HostHeight < 0 {
		return fmt.Errorf("NEODBG_HOST_HEIGHT must not be negative, got %d", c.HostHeight)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("NEODBG_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
