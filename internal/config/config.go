// Package config provides configuration management for the trade journal.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Auth        AuthConfig        `mapstructure:"auth" validate:"required"`
	Calibration CalibrationConfig `mapstructure:"calibration" validate:"required"`
	Reference   ReferenceConfig   `mapstructure:"reference"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Address                string `mapstructure:"address" validate:"required"`
	ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	IdleTimeoutSeconds     int    `mapstructure:"idle_timeout_seconds" validate:"required,gt=0"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
	MaxBodyBytes           int64  `mapstructure:"max_body_bytes" validate:"required,gt=0"`
}

// AuthConfig represents login configuration
type AuthConfig struct {
	Users              []UserConfig `mapstructure:"users" validate:"dive"`
	LoginRatePerMinute float64      `mapstructure:"login_rate_per_minute" validate:"required,gt=0"`
	LoginBurst         int          `mapstructure:"login_burst" validate:"required,gt=0"`
	ThrottleTTLMinutes int          `mapstructure:"throttle_ttl_minutes" validate:"required,gt=0"`
}

// UserConfig is one entry of the credential store. Passwords are stored as
// bcrypt hashes only.
type UserConfig struct {
	UserID       string `mapstructure:"user_id" validate:"required"`
	Username     string `mapstructure:"username" validate:"required"`
	DisplayName  string `mapstructure:"display_name"`
	PasswordHash string `mapstructure:"password_hash" validate:"required,bcrypt"`
}

// CalibrationConfig represents growth-model calibration settings
type CalibrationConfig struct {
	DefaultPolicy   string       `mapstructure:"default_policy" validate:"required,oneof=full half quarter piecewise power-law calibrated"`
	DefaultFraction float64      `mapstructure:"default_fraction" validate:"required,gt=0,lte=1"`
	Tiers           []TierConfig `mapstructure:"tiers" validate:"dive"`
	ScanRadius      float64      `mapstructure:"scan_radius" validate:"required,gt=0"`
	ScanStep        float64      `mapstructure:"scan_step" validate:"required,gt=0"`
	TopK            int          `mapstructure:"top_k" validate:"gte=0"`
	GridMin         float64      `mapstructure:"grid_min" validate:"gte=0,lte=1"`
	GridMax         float64      `mapstructure:"grid_max" validate:"required,gt=0,lte=1"`
	GridStep        float64      `mapstructure:"grid_step" validate:"required,gt=0"`
	Workers         int          `mapstructure:"workers" validate:"gte=0"`
	MaxCases        int          `mapstructure:"max_cases" validate:"required,gt=0"`
	ScheduleEnabled bool         `mapstructure:"schedule_enabled"`
	Schedule        string       `mapstructure:"schedule" validate:"omitempty,cron"`
}

// TierConfig maps an expected-value threshold to a Kelly fraction
type TierConfig struct {
	MinExpectedValue float64 `mapstructure:"min_expected_value"`
	Fraction         float64 `mapstructure:"fraction" validate:"required,gt=0,lte=1"`
}

// ReferenceConfig represents the external target-profit calculator
type ReferenceConfig struct {
	URL            string  `mapstructure:"url" validate:"omitempty,url"`
	APIKey         string  `mapstructure:"api_key"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}

// ReadTimeout returns the server read timeout
func (s *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the server write timeout
func (s *ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns the server idle timeout
func (s *ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown deadline
func (s *ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// Timeout returns the reference client timeout
func (r *ReferenceConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}
