// Package config loads server configuration from, in increasing priority:
// built-in defaults, an optional YAML file (WATERTAX_CONFIG), a .env file
// and process environment variables. Command-line flags are applied on top
// by cmd/server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Port        int      `yaml:"port"`
	LogLevel    string   `yaml:"log_level"`
	TariffFile  string   `yaml:"tariff_file"`
	CORSOrigins []string `yaml:"cors_origins"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Reminders ReminderConfig `yaml:"reminders"`
}

// ReminderConfig throttles outbound reminder dispatch.
type ReminderConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:            8080,
		LogLevel:        "info",
		CORSOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		Reminders: ReminderConfig{
			PerSecond: 5,
			Burst:     1,
		},
	}
}

// Load builds the configuration. A missing .env file is not an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("WATERTAX_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("WATERTAX_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WATERTAX_PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("WATERTAX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WATERTAX_TARIFF_FILE"); v != "" {
		cfg.TariffFile = v
	}
	if v := os.Getenv("WATERTAX_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("WATERTAX_REMINDER_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("WATERTAX_REMINDER_RATE: %w", err)
		}
		cfg.Reminders.PerSecond = rate
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	if c.Reminders.PerSecond <= 0 {
		return errors.New("config: reminders.per_second must be positive")
	}
	if c.Reminders.Burst < 1 {
		return errors.New("config: reminders.burst must be at least 1")
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
