package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"billgen/internal/logger"
)

// Config carries every setting the service needs. It is built once in main
// and passed explicitly; no component reads the environment on its own.
type Config struct {
	// Google Workspace configuration. Service-account credentials are read
	// by the API clients from GOOGLE_APPLICATION_CREDENTIALS or
	// GOOGLE_CREDENTIALS directly.
	SpreadsheetURL string

	// Sheet names within the spreadsheet
	ProjectsSheet    string
	InvoicesSheet    string
	CreditNotesSheet string
	ContractsSheet   string

	// Drive folder configuration
	DefaultFolderID string // Fallback when a project has no usable folder link
	OutputFolderID  string // Flat top-level folder receiving exported PDFs
	ParentFolderID  string // Parent under which per-project folders are created

	// Export behavior
	ExportDelay time.Duration // Single fixed wait before PDF export

	// List view caching
	CacheTTL time.Duration

	// Logging configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		SpreadsheetURL:   getEnv("SPREADSHEET_URL", ""),
		ProjectsSheet:    getEnv("PROJECTS_SHEET", "Projects"),
		InvoicesSheet:    getEnv("INVOICES_SHEET", "Invoices"),
		CreditNotesSheet: getEnv("CREDIT_NOTES_SHEET", "Credit Notes"),
		ContractsSheet:   getEnv("CONTRACTS_SHEET", "Contracts"),
		DefaultFolderID:  getEnv("DEFAULT_FOLDER_ID", ""),
		OutputFolderID:   getEnv("OUTPUT_FOLDER_ID", ""),
		ParentFolderID:   getEnv("PARENT_FOLDER_ID", ""),
		ExportDelay:      getEnvSeconds("EXPORT_DELAY_SECONDS", 3),
		CacheTTL:         getEnvSeconds("CACHE_TTL_SECONDS", 300),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:    getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:        getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.SpreadsheetURL == "" {
		return fmt.Errorf("SPREADSHEET_URL is required")
	}
	if c.DefaultFolderID == "" {
		return fmt.Errorf("DEFAULT_FOLDER_ID is required")
	}
	if c.OutputFolderID == "" {
		return fmt.Errorf("OUTPUT_FOLDER_ID is required")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(defaultValue) * time.Second
}
