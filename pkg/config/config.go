// Package config provides configuration management for the association
// back office. It loads configuration from environment variables and .env
// files.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	// DBPath is the SQLite database file path.
	DBPath string
	// SemestersFile is the YAML file holding the semester table.
	SemestersFile string
	// Currency is the single supported settlement currency code.
	Currency string
	// Processor is the author recorded on automatically posted transactions.
	Processor string
	// FeeAccounts names the revenue accounts the fee variants post against.
	FeeAccounts FeeAccountsConfig
}

// FeeAccountsConfig names the revenue account for each fee variant.
type FeeAccountsConfig struct {
	Registration string
	Semester     string
	Late         string
}

// Load loads configuration from environment variables.
// It automatically loads a .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	config := &Config{
		DBPath:        getEnvOrDefault("MEMBERFIN_DB_PATH", "./data/memberfin.db"),
		SemestersFile: getEnvOrDefault("MEMBERFIN_SEMESTERS_FILE", "./config/semesters.yaml"),
		Currency:      getEnvOrDefault("MEMBERFIN_CURRENCY", "EUR"),
		Processor:     getEnvOrDefault("MEMBERFIN_PROCESSOR", "memberfin"),
		FeeAccounts: FeeAccountsConfig{
			Registration: getEnvOrDefault("MEMBERFIN_REGISTRATION_FEE_ACCOUNT", "Registration fees"),
			Semester:     getEnvOrDefault("MEMBERFIN_SEMESTER_FEE_ACCOUNT", "Semester fees"),
			Late:         getEnvOrDefault("MEMBERFIN_LATE_FEE_ACCOUNT", "Late fees"),
		},
	}

	return config, nil
}

// Validate validates the configuration.
// It checks that all required fields are set.
func (c *Config) Validate() error {
	var missing []string
	checks := []struct {
		name  string
		value string
	}{
		{"MEMBERFIN_DB_PATH", c.DBPath},
		{"MEMBERFIN_SEMESTERS_FILE", c.SemestersFile},
		{"MEMBERFIN_CURRENCY", c.Currency},
		{"MEMBERFIN_REGISTRATION_FEE_ACCOUNT", c.FeeAccounts.Registration},
		{"MEMBERFIN_SEMESTER_FEE_ACCOUNT", c.FeeAccounts.Semester},
		{"MEMBERFIN_LATE_FEE_ACCOUNT", c.FeeAccounts.Late},
	}
	for _, check := range checks {
		if check.value == "" {
			missing = append(missing, check.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}
	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
