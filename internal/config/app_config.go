/*
Package config - Payroll Engine Application Configuration

==============================================================================
FILE: internal/config/app_config.go
==============================================================================

DESCRIPTION:
    Central application configuration for the payroll engine. Loads settings
    from environment variables, .env files, and optionally from HashiCorp
    Vault for production secrets management.

USER PERSPECTIVE:
    - Controls server port, database connection
    - Controls the fallback base salary used by the salary calculator
    - Controls batch driver tunables: default chunk size, per-employee
      timeout, inter-chunk yield
    - Grace minutes, Sunday-rule and sandwich-rule settings, TDS rate and
      PT threshold/amount are loaded but not read by any package: the day
      classifier takes grace from the resolved shift, and the Sunday rule,
      TDS and PT use constants in internal/attendance and internal/payroll

DEVELOPER GUIDELINES:
    OK to modify: Add new configuration fields, new env var mappings
    CAUTION: Changing default values (may affect existing deployments)
    Always add new fields with sensible defaults

CONFIGURATION SOURCES (priority order):
    1. HashiCorp Vault (if VAULT_ADDR is set)
    2. Environment variables
    3. .env file
    4. Default values in DefaultAppConfig()

==============================================================================
*/
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/vault/api"
	"github.com/joho/godotenv"
)

// AppConfig contains all application configuration.
type AppConfig struct {
	// Server configuration
	ServerPort int    `mapstructure:"SERVER_PORT"`
	Env        string `mapstructure:"ENVIRONMENT"`

	// Database configuration
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBDriver    string `mapstructure:"DB_DRIVER"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// CORS
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Attendance classification
	GraceMinutes        int  `mapstructure:"GRACE_MINUTES"`
	SundayRuleMinDays   int  `mapstructure:"SUNDAY_RULE_MIN_DAYS"`
	SandwichRuleEnabled bool `mapstructure:"SANDWICH_RULE_ENABLED"`

	// Salary calculation. FallbackBaseSalary is used, with a logged
	// warning, when an employee row has no basic salary recorded - a
	// missing salary must never resolve to zero pay.
	TDSRate            float64 `mapstructure:"TDS_RATE"`
	PTThreshold        float64 `mapstructure:"PT_THRESHOLD"`
	PTAmount           float64 `mapstructure:"PT_AMOUNT"`
	FallbackBaseSalary float64 `mapstructure:"FALLBACK_BASE_SALARY"`

	// Batch driver
	BatchChunkSize              int `mapstructure:"BATCH_CHUNK_SIZE"`
	BatchEmployeeTimeoutSeconds int `mapstructure:"BATCH_EMPLOYEE_TIMEOUT_SECONDS"`
	BatchChunkYieldMillis       int `mapstructure:"BATCH_CHUNK_YIELD_MILLIS"`

	// Vault client
	VaultClient *api.Client
}

// DefaultAppConfig returns configuration with default values.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		ServerPort:                  8080,
		Env:                         "development",
		DatabaseURL:                 "./payroll.db",
		DBDriver:                    "sqlite",
		LogLevel:                    "info",
		CORSAllowedOrigins:          "*",
		GraceMinutes:                10,
		SundayRuleMinDays:           5,
		SandwichRuleEnabled:         false,
		TDSRate:                     0.10,
		PTThreshold:                 12000,
		PTAmount:                    200,
		FallbackBaseSalary:          10000,
		BatchChunkSize:              10,
		BatchEmployeeTimeoutSeconds: 30,
		BatchChunkYieldMillis:       200,
	}
}

// LoadAppConfig loads all application configuration.
func LoadAppConfig() (*AppConfig, error) {
	// Load environment variables
	_ = godotenv.Load()

	config := DefaultAppConfig()

	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.ServerPort = port
		}
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Env = env
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.DatabaseURL = dbURL
	}
	if dbDriver := os.Getenv("DB_DRIVER"); dbDriver != "" {
		config.DBDriver = dbDriver
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.LogLevel = logLevel
	}
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.CORSAllowedOrigins = corsOrigins
	}
	if v := os.Getenv("GRACE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.GraceMinutes = n
		}
	}
	if v := os.Getenv("SUNDAY_RULE_MIN_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.SundayRuleMinDays = n
		}
	}
	if v := os.Getenv("SANDWICH_RULE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.SandwichRuleEnabled = b
		}
	}
	if v := os.Getenv("TDS_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.TDSRate = f
		}
	}
	if v := os.Getenv("PT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.PTThreshold = f
		}
	}
	if v := os.Getenv("PT_AMOUNT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.PTAmount = f
		}
	}
	if v := os.Getenv("FALLBACK_BASE_SALARY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.FallbackBaseSalary = f
		}
	}
	if v := os.Getenv("BATCH_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.BatchChunkSize = n
		}
	}
	if v := os.Getenv("BATCH_EMPLOYEE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.BatchEmployeeTimeoutSeconds = n
		}
	}
	if v := os.Getenv("BATCH_CHUNK_YIELD_MILLIS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.BatchChunkYieldMillis = n
		}
	}

	// Load secrets from Vault if configured
	if os.Getenv("VAULT_ADDR") != "" {
		if err := loadFromVault(config); err != nil {
			fmt.Printf("Warning: Could not load secrets from Vault: %v\n", err)
		}
	}

	return config, nil
}

// loadFromVault connects to Vault and loads secrets.
func loadFromVault(c *AppConfig) error {
	vaultConfig := api.DefaultConfig() // VAULT_ADDR and VAULT_TOKEN are read from env vars

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return fmt.Errorf("failed to create vault client: %w", err)
	}
	c.VaultClient = client

	secretPath := os.Getenv("VAULT_SECRET_PATH")
	if secretPath == "" {
		secretPath = "secret/data/payroll-engine" // Default path
	}

	secret, err := client.KVv2(secretPath).Get(context.Background(), "")
	if err != nil {
		return fmt.Errorf("failed to read secrets from vault path %s: %w", secretPath, err)
	}

	if dbURL, ok := secret.Data["DATABASE_URL"].(string); ok {
		c.DatabaseURL = dbURL
	}

	fmt.Println("Successfully loaded secrets from Vault")
	return nil
}

// IsProduction returns true if environment is production.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment returns true if environment is development.
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// IsTesting returns true if environment is testing.
func (c *AppConfig) IsTesting() bool {
	return c.Env == "testing"
}
