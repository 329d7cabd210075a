// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/warp/statement-ledger/logging"
)

type Config struct {
	// Storage
	DBPath string

	// Input
	InvoicesDir string
	InvoicesExt string

	// Output
	GraphicsDir string
	ChartFile   string

	// HTTP Server
	Port string

	// Logging
	LogLevel  string
	LogFormat string

	// Cron spec for scheduled ingest. Empty disables it.
	IngestSchedule string
}

// Load reads .env (when present) and then the environment. Variables already
// set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the environment alone.
func FromEnv() *Config {
	return &Config{
		DBPath:         getEnv("LEDGER_DB_PATH", "invoices.db"),
		InvoicesDir:    getEnv("INVOICES_DIR", "invoices"),
		InvoicesExt:    getEnv("INVOICES_EXT", ".pdf"),
		GraphicsDir:    getEnv("GRAPHICS_DIR", "graphics"),
		ChartFile:      getEnv("CHART_FILE", "grafico_facturas.png"),
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		IngestSchedule: os.Getenv("INGEST_SCHEDULE"),
	}
}

// Validate returns every problem found, joined into one error.
func (c *Config) Validate() error {
	var problems []string

	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	}
	if c.InvoicesDir == "" {
		problems = append(problems, "invoices directory cannot be empty")
	}
	if !strings.HasPrefix(c.InvoicesExt, ".") || len(c.InvoicesExt) < 2 {
		problems = append(problems, fmt.Sprintf("invalid invoices extension '%s': must look like '.pdf'", c.InvoicesExt))
	}
	if c.ChartFile == "" {
		problems = append(problems, "chart file name cannot be empty")
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.IngestSchedule != "" {
		if _, err := cron.ParseStandard(c.IngestSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("invalid ingest schedule '%s': %v", c.IngestSchedule, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Logging returns the logger settings for component.
func (c *Config) Logging(component string) logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Format = c.LogFormat
	cfg.Component = component
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
