// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aristath/rebound/internal/modules/universe"
	"github.com/aristath/rebound/internal/utils"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir      string // Base directory for all databases, always absolute
	LogLevel     string
	RulesFile    string // Optional YAML overlay for scoring rules
	ScanSchedule string // Six-field cron expression, empty disables scheduled scans
	Symbols      []string
	Port         int
	ScanLimit    int
	TopResults   int
	ScanWorkers  int
	CacheTTL     time.Duration
	DevMode      bool
	Backup       *BackupConfig
}

// BackupConfig holds S3 backup settings. Backups are off without a bucket.
type BackupConfig struct {
	Bucket    string
	Endpoint  string // Custom endpoint for S3-compatible stores (R2, MinIO)
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
	Schedule  string
}

// Enabled reports whether backups are configured
func (b *BackupConfig) Enabled() bool {
	return b != nil && b.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("REBOUND_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:      absDataDir,
		Port:         getEnvAsInt("GO_PORT", 8001),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		RulesFile:    getEnv("SCORING_RULES_FILE", ""),
		Symbols:      getEnvAsList("SCAN_SYMBOLS", universe.DefaultSymbols),
		ScanLimit:    getEnvAsInt("SCAN_LIMIT", 50),
		TopResults:   getEnvAsInt("SCAN_TOP_RESULTS", 20),
		ScanSchedule: getEnv("SCAN_SCHEDULE", "0 30 16 * * MON-FRI"),
		ScanWorkers:  getEnvAsInt("SCAN_WORKERS", 4),
		CacheTTL:     getEnvAsDuration("CACHE_TTL", 6*time.Hour),
		Backup:       loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Bucket:    getEnv("BACKUP_S3_BUCKET", ""),
		Endpoint:  getEnv("BACKUP_S3_ENDPOINT", ""),
		Region:    getEnv("BACKUP_S3_REGION", "auto"),
		AccessKey: getEnv("BACKUP_S3_ACCESS_KEY", ""),
		SecretKey: getEnv("BACKUP_S3_SECRET_KEY", ""),
		Prefix:    getEnv("BACKUP_S3_PREFIX", "backups"),
		Schedule:  getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
	}
}

// Validate checks ranges and schedule syntax
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ScanLimit <= 0 {
		return fmt.Errorf("scan limit must be positive, got %d", c.ScanLimit)
	}
	if c.TopResults <= 0 {
		return fmt.Errorf("top results must be positive, got %d", c.TopResults)
	}
	if c.ScanWorkers < 1 || c.ScanWorkers > 64 {
		return fmt.Errorf("scan workers must be between 1 and 64, got %d", c.ScanWorkers)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbol list is empty")
	}
	if err := validateSchedule("scan", c.ScanSchedule); err != nil {
		return err
	}
	if c.Backup.Enabled() {
		if err := validateSchedule("backup", c.Backup.Schedule); err != nil {
			return err
		}
		if (c.Backup.AccessKey == "") != (c.Backup.SecretKey == "") {
			return fmt.Errorf("backup access key and secret key must be set together")
		}
	}
	return nil
}

func validateSchedule(name, expr string) error {
	if expr == "" {
		return nil
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid %s schedule %q: %w", name, expr, err)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	return utils.ParseCSV(value)
}
