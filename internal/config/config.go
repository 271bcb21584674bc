package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	SendGrid   SendGridConfig   `yaml:"sendgrid"`
	JWT        JWTConfig        `yaml:"jwt"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
	Rental     RentalConfig     `yaml:"rental"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Settlement SettlementConfig `yaml:"settlement"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// SendGridConfig contains notification dispatch settings
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// JWTConfig contains bearer token settings for actor resolution
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// StorageConfig contains proof artifact storage settings
type StorageConfig struct {
	Type      string `yaml:"type"`       // "local" (others behind the same interface)
	UploadDir string `yaml:"upload_dir"` // for local storage
	BaseURL   string `yaml:"base_url"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// RentalConfig contains lifecycle policy values
type RentalConfig struct {
	// Rentals below this quantity are created directly in approved.
	AutoApproveMaxQuantity int32 `yaml:"auto_approve_max_quantity"`
	// Pending payments older than this are expired by the sweep and the
	// rental falls back toward cancelled.
	PaymentGracePeriodHours int `yaml:"payment_grace_period_hours"`
}

// PricingConfig contains money policy values. Rates are basis points
// (10000 = 100% / 1.0x) so money math stays integral.
type PricingConfig struct {
	CommissionRateBps           int32 `yaml:"commission_rate_bps"`
	LateFeeMultiplierBps        int32 `yaml:"late_fee_multiplier_bps"`
	CancellationProcessingCents int64 `yaml:"cancellation_processing_fee_cents"`
}

// SettlementConfig contains cash-commission settlement policy
type SettlementConfig struct {
	// Days a seller has to remit commission after a cash collection.
	WindowDays int `yaml:"window_days"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	MarkOverdueRentals    string `yaml:"mark_overdue_rentals"`
	ExpirePendingPayments string `yaml:"expire_pending_payments"`
	CommissionReminders   string `yaml:"commission_reminders"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.SendGrid.FromEmail = val
	}

	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if val := os.Getenv("COMMISSION_RATE_BPS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Pricing.CommissionRateBps)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration and fills policy defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}

	// Lifecycle defaults
	if c.Rental.AutoApproveMaxQuantity == 0 {
		c.Rental.AutoApproveMaxQuantity = 5
	}
	if c.Rental.PaymentGracePeriodHours == 0 {
		c.Rental.PaymentGracePeriodHours = 48
	}

	// Pricing defaults
	if c.Pricing.CommissionRateBps == 0 {
		c.Pricing.CommissionRateBps = 1000 // 10%
	}
	if c.Pricing.CommissionRateBps < 0 || c.Pricing.CommissionRateBps > 10000 {
		return fmt.Errorf("commission rate out of range: %d bps", c.Pricing.CommissionRateBps)
	}
	if c.Pricing.LateFeeMultiplierBps == 0 {
		c.Pricing.LateFeeMultiplierBps = 10000 // 1.0x daily rate
	}

	// Settlement defaults
	if c.Settlement.WindowDays == 0 {
		c.Settlement.WindowDays = 14
	}

	// Scheduler defaults
	if c.Scheduler.MarkOverdueRentals == "" {
		c.Scheduler.MarkOverdueRentals = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.ExpirePendingPayments == "" {
		c.Scheduler.ExpirePendingPayments = "0 30 2 * * *" // 2:30 AM UTC
	}
	if c.Scheduler.CommissionReminders == "" {
		c.Scheduler.CommissionReminders = "0 0 9 * * *" // 9 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
