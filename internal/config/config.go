package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the memory service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	LogLevel         string
	LogJSON          bool

	// MemoryBackendURL names the shared store; empty runs without memory.
	MemoryBackendURL     string
	MemoryConnectTimeout time.Duration
	MemoryOpTimeout      time.Duration

	STMWindow int
	STMTTL    time.Duration
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:             envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:     envOrDefault("APP_METRICS_NAMESPACE", "medmemory"),
		LogLevel:             envOrDefault("APP_LOG_LEVEL", "info"),
		LogJSON:              true,
		MemoryBackendURL:     strings.TrimSpace(os.Getenv("MEMORY_BACKEND_URL")),
		ShutdownTimeout:      15 * time.Second,
		MemoryConnectTimeout: 3 * time.Second,
		MemoryOpTimeout:      2 * time.Second,
		STMWindow:            20,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.LogJSON, err = boolFromEnv("APP_LOG_JSON", cfg.LogJSON)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryConnectTimeout, err = durationFromEnv("MEMORY_CONNECT_TIMEOUT", cfg.MemoryConnectTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.MemoryOpTimeout, err = durationFromEnv("MEMORY_OP_TIMEOUT", cfg.MemoryOpTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.STMWindow, err = intFromEnv("STM_MAX_CTX", cfg.STMWindow)
	if err != nil {
		return Config{}, err
	}
	cfg.STMTTL, err = durationFromEnv("STM_TTL", cfg.STMTTL)
	if err != nil {
		return Config{}, err
	}

	if cfg.STMWindow <= 0 {
		return Config{}, fmt.Errorf("STM_MAX_CTX must be positive")
	}
	if cfg.MemoryConnectTimeout <= 0 {
		return Config{}, fmt.Errorf("MEMORY_CONNECT_TIMEOUT must be positive")
	}
	if cfg.MemoryOpTimeout <= 0 {
		return Config{}, fmt.Errorf("MEMORY_OP_TIMEOUT must be positive")
	}
	if cfg.STMTTL < 0 {
		return Config{}, fmt.Errorf("STM_TTL must be >= 0")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
