package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	invalidYAMLPath              = "testdata/invalid_yaml.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	tradeJournalName             = "trade-journal"
	developmentEnv               = "development"
	invalidEnv                   = "invalid"
	localhostHost                = "localhost"
	postgresPort                 = 5432
	postgresPrefix               = "postgres://"
	testAppName                  = "test-app"
	testDBPassword               = "TEST_DB_PASSWORD"
	expandedSecretValue          = "expanded_secret_value"
	validPasswordHash            = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

func loadValid(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}
	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}
	return cfg
}

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg := loadValid(t)

	if cfg.App.Name != tradeJournalName {
		t.Errorf("expected app name '%s', got '%s'", tradeJournalName, cfg.App.Name)
	}
	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}
	if cfg.Database.Host != localhostHost {
		t.Errorf("expected database host '%s', got '%s'", localhostHost, cfg.Database.Host)
	}
	if cfg.Database.Port != postgresPort {
		t.Errorf("expected database port %d, got %d", postgresPort, cfg.Database.Port)
	}
	if len(cfg.Calibration.Tiers) != 3 {
		t.Fatalf("expected 3 calibration tiers, got %d", len(cfg.Calibration.Tiers))
	}
	if cfg.Calibration.Tiers[0].Fraction != 0.8712 {
		t.Errorf("expected first tier fraction 0.8712, got %v", cfg.Calibration.Tiers[0].Fraction)
	}
	if len(cfg.Auth.Users) != 1 || cfg.Auth.Users[0].Username != "trader" {
		t.Errorf("expected one auth user 'trader', got %+v", cfg.Auth.Users)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	if _, err := Load(nonexistentConfigPath); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	if _, err := Load(invalidYAMLPath); err == nil {
		t.Fatal("expected parse error for malformed yaml")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("TRADE_JOURNAL_APP_NAME", testAppName)

	cfg := loadValid(t)
	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestLoadConfigExpansion tests ${VAR} placeholder expansion
func TestLoadConfigExpansion(t *testing.T) {
	t.Setenv(testDBPassword, expandedSecretValue)

	cfg := loadValid(t)
	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected expanded password '%s', got '%s'", expandedSecretValue, cfg.Database.Password)
	}
}

// TestLoadConfigKeepsBcryptHash tests that bare $ sequences survive expansion
func TestLoadConfigKeepsBcryptHash(t *testing.T) {
	t.Setenv("a", "mangled")
	t.Setenv("N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", "mangled")

	cfg := loadValid(t)
	if cfg.Auth.Users[0].PasswordHash != validPasswordHash {
		t.Errorf("expected password hash '%s', got '%s'", validPasswordHash, cfg.Auth.Users[0].PasswordHash)
	}

	cfg, err := LoadWithDefaults(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}
	if cfg.Auth.Users[0].PasswordHash != validPasswordHash {
		t.Errorf("expected password hash '%s' with defaults, got '%s'", validPasswordHash, cfg.Auth.Users[0].PasswordHash)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("JOURNAL_TOKEN", "secret")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"braced placeholder", "token: ${JOURNAL_TOKEN}", "token: secret"},
		{"unset placeholder", "token: ${JOURNAL_UNSET_VALUE}", "token: "},
		{"bare dollar name", "token: $JOURNAL_TOKEN", "token: $JOURNAL_TOKEN"},
		{"bcrypt hash", validPasswordHash, validPasswordHash},
		{"unterminated brace", "token: ${JOURNAL_TOKEN", "token: ${JOURNAL_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnv(tt.input); got != tt.want {
				t.Errorf("expandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg.App.Name != tradeJournalName {
		t.Errorf("expected default app name, got '%s'", cfg.App.Name)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("expected default address ':8080', got '%s'", cfg.Server.Address)
	}
	if cfg.Calibration.DefaultPolicy != "piecewise" {
		t.Errorf("expected default policy 'piecewise', got '%s'", cfg.Calibration.DefaultPolicy)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadWithDefaultsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("app:\n  log_level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if cfg.App.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", cfg.App.LogLevel)
	}
	if cfg.Database.Port != postgresPort {
		t.Errorf("expected default port %d, got %d", postgresPort, cfg.Database.Port)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg := loadValid(t)
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg := loadValid(t)
	cfg.App.Environment = invalidEnv

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
	if !strings.Contains(err.Error(), "Environment") {
		t.Errorf("expected error to name the Environment field, got: %v", err)
	}
}

func TestValidateInvalidLogLevel(t *testing.T) {
	cfg := loadValid(t)
	cfg.App.LogLevel = "verbose"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}

func TestValidateInvalidCron(t *testing.T) {
	cfg := loadValid(t)
	cfg.Calibration.Schedule = "every tuesday"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid cron expression")
	}
	if !strings.Contains(err.Error(), "cron") {
		t.Errorf("expected cron validation error, got: %v", err)
	}
}

func TestValidateCronDescriptor(t *testing.T) {
	cfg := loadValid(t)
	cfg.Calibration.Schedule = "@every 1h"

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected descriptor schedule to validate, got %v", err)
	}
}

func TestValidateInvalidPasswordHash(t *testing.T) {
	cfg := loadValid(t)
	cfg.Auth.Users[0].PasswordHash = "plaintext"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for non-bcrypt password hash")
	}
}

func TestValidateDuplicateUsername(t *testing.T) {
	cfg := loadValid(t)
	cfg.Auth.Users = append(cfg.Auth.Users, cfg.Auth.Users[0])

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for duplicate username")
	}
}

func TestValidateTierFractionBounds(t *testing.T) {
	cfg := loadValid(t)
	cfg.Calibration.Tiers[1].Fraction = 1.5

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for tier fraction above 1")
	}
}

func TestValidateUnknownPolicy(t *testing.T) {
	cfg := loadValid(t)
	cfg.Calibration.DefaultPolicy = "double-kelly"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for unknown default policy")
	}
}

// TestValidateConnectionPoolSettings tests connection pool cross-field validation
func TestValidateConnectionPoolSettings(t *testing.T) {
	cfg := loadValid(t)
	cfg.Database.MaxIdleConnections = 20
	cfg.Database.MaxConnections = 10

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when max_idle_connections > max_connections")
	}
}

func TestValidateGridBounds(t *testing.T) {
	cfg := loadValid(t)
	cfg.Calibration.GridMin = 0.9
	cfg.Calibration.GridMax = 0.5

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error when grid_min > grid_max")
	}
}

// TestValidateProductionSSL tests production SSL requirement
func TestValidateProductionSSL(t *testing.T) {
	cfg := loadValid(t)
	cfg.App.Environment = "production"
	cfg.Database.SSLMode = "disable"

	if err := Validate(cfg); err == nil {
		t.Fatal("expected validation error for production without SSL")
	}

	cfg.Database.SSLMode = "require"
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected production with SSL to validate, got %v", err)
	}
}

// TestDatabaseDSN tests DSN generation
func TestDatabaseDSN(t *testing.T) {
	cfg := loadValid(t)
	dsn := cfg.GetDatabaseDSN()

	if !strings.HasPrefix(dsn, postgresPrefix) {
		t.Errorf("expected DSN to start with '%s', got '%s'", postgresPrefix, dsn)
	}
	if !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("expected DSN to carry sslmode, got '%s'", dsn)
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := loadValid(t)
	if !cfg.IsDevelopment() || cfg.IsStaging() || cfg.IsProduction() {
		t.Errorf("expected development helpers to match environment '%s'", cfg.App.Environment)
	}
}

func TestParseSecretData(t *testing.T) {
	out := &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`{"database_password":"pw","reference_api_key":"key","user_password_hashes":{"trader":"$2a$10$abc"}}`),
	}

	secrets, err := parseSecretData(out)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if secrets.DatabasePassword != "pw" || secrets.ReferenceAPIKey != "key" {
		t.Errorf("unexpected secrets: %+v", secrets)
	}

	if _, err := parseSecretData(&secretsmanager.GetSecretValueOutput{}); err == nil {
		t.Fatal("expected error for empty secret payload")
	}
	if _, err := parseSecretData(&secretsmanager.GetSecretValueOutput{SecretString: aws.String("{")}); err == nil {
		t.Fatal("expected error for malformed secret JSON")
	}
}

func TestOverlaySecretsOnConfig(t *testing.T) {
	cfg := loadValid(t)
	overlaySecretsOnConfig(cfg, &SecretsOverlay{
		DatabasePassword: "from-aws",
		ReferenceAPIKey:  "ref-key",
		UserPasswordHash: map[string]string{"trader": "new-hash", "ghost": "ignored"},
	})

	if cfg.Database.Password != "from-aws" {
		t.Errorf("expected overlaid password, got '%s'", cfg.Database.Password)
	}
	if cfg.Reference.APIKey != "ref-key" {
		t.Errorf("expected overlaid api key, got '%s'", cfg.Reference.APIKey)
	}
	if cfg.Auth.Users[0].PasswordHash != "new-hash" {
		t.Errorf("expected overlaid hash, got '%s'", cfg.Auth.Users[0].PasswordHash)
	}
	if len(cfg.Auth.Users) != 1 {
		t.Errorf("expected unknown usernames to be ignored, got %d users", len(cfg.Auth.Users))
	}
}
