package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Store       StoreConfig       `yaml:"store"`
	Database    DatabaseConfig    `yaml:"database"`
	JWT         JWTConfig         `yaml:"jwt"`
	Email       EmailConfig       `yaml:"email"`
	Log         LogConfig         `yaml:"log"`
	Circulation CirculationConfig `yaml:"circulation"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

// StoreConfig selects the entity store: "memory" for development, "postgres" otherwise
type StoreConfig struct {
	Type string `yaml:"type"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "postgres" (lib/pq) or "pgx"
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	User                   string `yaml:"user"`
	Password               string `yaml:"password"`
	Database               string `yaml:"database"`
	SSLMode                string `yaml:"ssl_mode"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	AutoMigrate            bool   `yaml:"auto_migrate"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret             string `yaml:"secret"`
	AccessTokenExpiry  int    `yaml:"access_token_expiry_minutes"`
	RefreshTokenExpiry int    `yaml:"refresh_token_expiry_minutes"`
}

// EmailConfig contains SendGrid settings. Without an API key emails are only logged.
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// CirculationConfig tunes the loan/reservation workflow
type CirculationConfig struct {
	LoanPeriodDays     int `yaml:"loan_period_days"`
	MaxConflictRetries int `yaml:"max_conflict_retries"`
	RetryBackoffMillis int `yaml:"retry_backoff_millis"`
}

// SchedulerConfig contains cron schedule settings (with seconds field)
type SchedulerConfig struct {
	SendOverdueReminders string `yaml:"send_overdue_reminders"`
}

// Load reads configuration from a YAML file. An empty path loads defaults and
// environment overrides only.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.overrideWithEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func envInt(name string, dst *int) {
	if val := os.Getenv(name); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func envString(name string, dst *string) {
	if val := os.Getenv(name); val != "" {
		*dst = val
	}
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Store
	envString("STORE_TYPE", &c.Store.Type)

	// Database
	envString("DB_DRIVER", &c.Database.Driver)
	envString("DB_HOST", &c.Database.Host)
	envInt("DB_PORT", &c.Database.Port)
	envString("DB_USER", &c.Database.User)
	envString("DB_PASSWORD", &c.Database.Password)
	envString("DB_NAME", &c.Database.Database)
	envString("DB_SSL_MODE", &c.Database.SSLMode)
	if val := os.Getenv("DB_AUTO_MIGRATE"); val != "" {
		c.Database.AutoMigrate, _ = strconv.ParseBool(val)
	}

	// JWT
	envString("JWT_SECRET", &c.JWT.Secret)

	// Email
	envString("SENDGRID_API_KEY", &c.Email.SendGridAPIKey)
	envString("EMAIL_FROM", &c.Email.FromEmail)

	// Server
	envString("SERVER_HOST", &c.Server.Host)
	envInt("SERVER_PORT", &c.Server.Port)

	// Log
	envString("LOG_LEVEL", &c.Log.Level)
	envString("LOG_FORMAT", &c.Log.Format)

	// Circulation
	envInt("LOAN_PERIOD_DAYS", &c.Circulation.LoanPeriodDays)
	envInt("MAX_CONFLICT_RETRIES", &c.Circulation.MaxConflictRetries)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 15
	}
	if c.Store.Type == "" {
		c.Store.Type = StorePostgres
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPQ
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}
	if c.JWT.RefreshTokenExpiry == 0 {
		c.JWT.RefreshTokenExpiry = 7 * 24 * 60
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "Library"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Circulation.LoanPeriodDays == 0 {
		c.Circulation.LoanPeriodDays = 31
	}
	if c.Circulation.MaxConflictRetries == 0 {
		c.Circulation.MaxConflictRetries = 3
	}
	if c.Circulation.RetryBackoffMillis == 0 {
		c.Circulation.RetryBackoffMillis = 20
	}
	if c.Scheduler.SendOverdueReminders == "" {
		c.Scheduler.SendOverdueReminders = "0 0 8 * * *" // 8 AM UTC
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	if err := validation.ValidateStruct(&c.Store,
		validation.Field(&c.Store.Type, validation.Required, validation.In(StoreMemory, StorePostgres)),
	); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	if c.Store.Type == StorePostgres {
		if err := validation.ValidateStruct(&c.Database,
			validation.Field(&c.Database.Driver, validation.Required, validation.In(DriverPQ, DriverPGX)),
			validation.Field(&c.Database.Host, validation.Required),
			validation.Field(&c.Database.Port, validation.Min(1), validation.Max(65535)),
			validation.Field(&c.Database.User, validation.Required),
			validation.Field(&c.Database.Database, validation.Required),
			validation.Field(&c.Database.MaxOpenConns, validation.Min(0)),
			validation.Field(&c.Database.MaxIdleConns, validation.Min(0)),
		); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if err := validation.ValidateStruct(&c.JWT,
		validation.Field(&c.JWT.Secret, validation.Required, validation.Length(32, 0)),
	); err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	if err := validation.ValidateStruct(&c.Email,
		validation.Field(&c.Email.FromEmail, is.Email),
	); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	if c.Email.SendGridAPIKey != "" && c.Email.FromEmail == "" {
		return fmt.Errorf("email: from_email is required when a SendGrid key is set")
	}

	if err := validation.ValidateStruct(&c.Circulation,
		validation.Field(&c.Circulation.LoanPeriodDays, validation.Min(1), validation.Max(365)),
		validation.Field(&c.Circulation.MaxConflictRetries, validation.Min(0), validation.Max(10)),
		validation.Field(&c.Circulation.RetryBackoffMillis, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("circulation: %w", err)
	}

	if err := validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Format, validation.In("json", "text")),
	); err != nil {
		return fmt.Errorf("log: %w", err)
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

func (c *Config) LoanPeriod() time.Duration {
	return time.Duration(c.Circulation.LoanPeriodDays) * 24 * time.Hour
}

func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.Circulation.RetryBackoffMillis) * time.Millisecond
}

func (c *Config) ConnMaxLifetime() time.Duration {
	return time.Duration(c.Database.ConnMaxLifetimeMinutes) * time.Minute
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTokenExpiry) * time.Minute
}
