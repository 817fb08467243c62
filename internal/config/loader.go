// Package config provides configuration management for the trade journal.
package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

var envPlaceholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

const (
	envPrefix         = "TRADE_JOURNAL"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()

	expanded := expandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := expandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// expandEnv replaces ${NAME} placeholders only. Bare $ sequences such as
// bcrypt hashes are left untouched.
func expandEnv(s string) string {
	return envPlaceholder.ReplaceAllStringFunc(s, func(m string) string {
		return os.Getenv(envPlaceholder.FindStringSubmatch(m)[1])
	})
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// TRADE_JOURNAL_DATABASE_HOST overrides database.host
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "trade-journal")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "trade_journal")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 15)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("auth.login_rate_per_minute", 10)
	v.SetDefault("auth.login_burst", 5)
	v.SetDefault("auth.throttle_ttl_minutes", 15)

	v.SetDefault("calibration.default_policy", "piecewise")
	v.SetDefault("calibration.default_fraction", 0.5)
	v.SetDefault("calibration.scan_radius", 0.05)
	v.SetDefault("calibration.scan_step", 0.01)
	v.SetDefault("calibration.top_k", 5)
	v.SetDefault("calibration.grid_min", 0.05)
	v.SetDefault("calibration.grid_max", 1.0)
	v.SetDefault("calibration.grid_step", 0.01)
	v.SetDefault("calibration.workers", 0)
	v.SetDefault("calibration.max_cases", 500)
	v.SetDefault("calibration.schedule_enabled", false)
	v.SetDefault("calibration.schedule", "0 3 * * *")

	v.SetDefault("reference.timeout_seconds", 15)
	v.SetDefault("reference.max_retries", 3)
	v.SetDefault("reference.rate_limit", 5)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
