package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		DBPath:      "invoices.db",
		InvoicesDir: "invoices",
		InvoicesExt: ".pdf",
		GraphicsDir: "graphics",
		ChartFile:   "grafico_facturas.png",
		Port:        "8080",
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "valid schedule", mutate: func(c *Config) { c.IngestSchedule = "0 9 1 * *" }},
		{name: "json logs", mutate: func(c *Config) { c.LogFormat = "JSON" }},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "extension without dot",
			mutate:      func(c *Config) { c.InvoicesExt = "pdf" },
			errorString: "invalid invoices extension 'pdf'",
		},
		{
			name:        "empty database path",
			mutate:      func(c *Config) { c.DBPath = "" },
			errorString: "database path cannot be empty",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			errorString: `unknown log level "loud"`,
		},
		{
			name:        "bad log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			errorString: "invalid log format 'xml'",
		},
		{
			name:        "bad schedule",
			mutate:      func(c *Config) { c.IngestSchedule = "every tuesday" },
			errorString: "invalid ingest schedule 'every tuesday'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestConfig_ValidateCollectsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.DBPath = ""

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
	assert.Contains(t, err.Error(), "database path")
}

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"LEDGER_DB_PATH", "INVOICES_DIR", "INVOICES_EXT", "GRAPHICS_DIR", "CHART_FILE", "PORT", "LOG_LEVEL", "LOG_FORMAT", "INGEST_SCHEDULE"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "invoices.db", cfg.DBPath)
	assert.Equal(t, "invoices", cfg.InvoicesDir)
	assert.Equal(t, ".pdf", cfg.InvoicesExt)
	assert.Equal(t, "graphics", cfg.GraphicsDir)
	assert.Equal(t, "grafico_facturas.png", cfg.ChartFile)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.IngestSchedule)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LEDGER_DB_PATH", "/tmp/other.db")
	t.Setenv("INGEST_SCHEDULE", "@daily")

	cfg := FromEnv()

	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, "@daily", cfg.IngestSchedule)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("INVOICES_DIR=from-dotenv\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	// t.Setenv registers cleanup; godotenv then sees an unset variable.
	t.Setenv("INVOICES_DIR", "")
	os.Unsetenv("INVOICES_DIR")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.InvoicesDir)
}

func TestLoad_MissingDotEnvIsFine(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	_, err = Load()

	assert.NoError(t, err)
}
