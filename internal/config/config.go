package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the loan ledger service
type Config struct {
	Server   ServerConfig   `mapstructure:",squash"`
	Database DatabaseConfig `mapstructure:",squash"`
	Redis    RedisConfig    `mapstructure:",squash"`
	Ledger   LedgerConfig   `mapstructure:",squash"`
	CEP      CEPConfig      `mapstructure:",squash"`
	Logging  LoggingConfig  `mapstructure:",squash"`
}

type ServerConfig struct {
	Port string `mapstructure:"SERVER_PORT"`
	Host string `mapstructure:"SERVER_HOST"`
	Env  string `mapstructure:"ENV"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"DATABASE_HOST"`
	Port     string `mapstructure:"DATABASE_PORT"`
	Name     string `mapstructure:"DATABASE_NAME"`
	User     string `mapstructure:"DATABASE_USER"`
	Password string `mapstructure:"DATABASE_PASSWORD"`
	SSLMode  string `mapstructure:"DATABASE_SSLMODE"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type LedgerConfig struct {
	OverdueThresholdDays int    `mapstructure:"OVERDUE_THRESHOLD_DAYS"`
	SummaryCacheTTL      string `mapstructure:"SUMMARY_CACHE_TTL"`
	ExportMaxRows        int    `mapstructure:"EXPORT_MAX_ROWS"`
	OverdueScanSchedule  string `mapstructure:"OVERDUE_SCAN_SCHEDULE"`
}

type CEPConfig struct {
	BaseURL  string `mapstructure:"CEP_BASE_URL"`
	Timeout  string `mapstructure:"CEP_TIMEOUT"`
	CacheTTL string `mapstructure:"CEP_CACHE_TTL"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_HOST", "localhost")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_NAME", "loan_ledger")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("OVERDUE_THRESHOLD_DAYS", 90)
	viper.SetDefault("SUMMARY_CACHE_TTL", "10m")
	viper.SetDefault("EXPORT_MAX_ROWS", 10000)
	viper.SetDefault("OVERDUE_SCAN_SCHEDULE", "0 0 6 * * *")
	viper.SetDefault("CEP_BASE_URL", "https://viacep.com.br/ws")
	viper.SetDefault("CEP_TIMEOUT", "5s")
	viper.SetDefault("CEP_CACHE_TTL", "24h")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("DATABASE_HOST and DATABASE_NAME are required")
	}

	if c.Ledger.OverdueThresholdDays <= 0 {
		return fmt.Errorf("OVERDUE_THRESHOLD_DAYS must be greater than 0")
	}

	if c.Ledger.ExportMaxRows <= 0 {
		return fmt.Errorf("EXPORT_MAX_ROWS must be greater than 0")
	}

	if _, err := time.ParseDuration(c.Ledger.SummaryCacheTTL); err != nil {
		return fmt.Errorf("SUMMARY_CACHE_TTL must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.CEP.Timeout); err != nil {
		return fmt.Errorf("CEP_TIMEOUT must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.CEP.CacheTTL); err != nil {
		return fmt.Errorf("CEP_CACHE_TTL must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// DSN builds the Postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// OverdueThreshold returns the overdue threshold as a duration
func (c *Config) OverdueThreshold() time.Duration {
	return time.Duration(c.Ledger.OverdueThresholdDays) * 24 * time.Hour
}

// SummaryCacheTTL returns the summary cache TTL as a duration
func (c *Config) SummaryCacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Ledger.SummaryCacheTTL)
	return ttl
}

// CEPTimeout returns the CEP client timeout as a duration
func (c *Config) CEPTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.CEP.Timeout)
	return timeout
}

// CEPCacheTTL returns the CEP cache TTL as a duration
func (c *Config) CEPCacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.CEP.CacheTTL)
	return ttl
}
