package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"finman/internal/core"
)

// Config carries every tunable the engine components receive at
// construction. Nothing in here is read from process-wide state after
// Load returns.
type Config struct {
	// Database
	SQLiteDBPath string

	// Logging
	LogLevel string

	// Account limits
	MaxAccountsPerUser int

	// Budget thresholds
	WarningThreshold  float64 // marks a budget view red
	ApproachThreshold float64 // pre-commit advisory warning

	// Ledger read path
	TransactionFeedLimit int

	// Validation limits
	MaxNameLength        int
	MaxDescriptionLength int
	MinPasswordLength    int
}

func Load() *Config {
	defaults := core.DefaultRules()
	return &Config{
		SQLiteDBPath: getEnv("FINMAN_DB_PATH", "./data/finman.db"),
		LogLevel:     getEnv("FINMAN_LOG_LEVEL", "info"),

		MaxAccountsPerUser: getEnvInt("FINMAN_MAX_ACCOUNTS", 5),

		WarningThreshold:  getEnvFloat("FINMAN_WARNING_THRESHOLD", 0.7),
		ApproachThreshold: getEnvFloat("FINMAN_APPROACH_THRESHOLD", 0.75),

		TransactionFeedLimit: getEnvInt("FINMAN_FEED_LIMIT", 50),

		MaxNameLength:        getEnvInt("FINMAN_MAX_NAME_LENGTH", defaults.MaxNameLength),
		MaxDescriptionLength: getEnvInt("FINMAN_MAX_DESC_LENGTH", defaults.MaxDescriptionLength),
		MinPasswordLength:    getEnvInt("FINMAN_MIN_PASSWORD_LENGTH", defaults.MinPasswordLength),
	}
}

// Rules assembles the entity validation limits.
func (c *Config) Rules() core.Rules {
	r := core.DefaultRules()
	r.MaxNameLength = c.MaxNameLength
	r.MaxDescriptionLength = c.MaxDescriptionLength
	r.MinPasswordLength = c.MinPasswordLength
	return r
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if c.MaxAccountsPerUser < 1 {
		errs = append(errs, fmt.Sprintf("invalid account limit %d: must be at least 1", c.MaxAccountsPerUser))
	}

	if c.WarningThreshold <= 0 || c.WarningThreshold > 1 {
		errs = append(errs, fmt.Sprintf("invalid warning threshold %v: must be in (0, 1]", c.WarningThreshold))
	}
	if c.ApproachThreshold <= 0 || c.ApproachThreshold > 1 {
		errs = append(errs, fmt.Sprintf("invalid approach threshold %v: must be in (0, 1]", c.ApproachThreshold))
	}

	if c.TransactionFeedLimit < 1 {
		errs = append(errs, fmt.Sprintf("invalid transaction feed limit %d: must be at least 1", c.TransactionFeedLimit))
	}

	if c.MaxNameLength < 1 {
		errs = append(errs, fmt.Sprintf("invalid max name length %d: must be at least 1", c.MaxNameLength))
	}
	if c.MaxDescriptionLength < 1 {
		errs = append(errs, fmt.Sprintf("invalid max description length %d: must be at least 1", c.MaxDescriptionLength))
	}
	if c.MinPasswordLength < 1 {
		errs = append(errs, fmt.Sprintf("invalid min password length %d: must be at least 1", c.MinPasswordLength))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
