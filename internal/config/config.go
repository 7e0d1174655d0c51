package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	DriverSQLite     = "sqlite"
	DriverSurreal    = "surrealdb"
	DefaultSQLiteDSN = "file:txsandbox.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
)

// Config holds all harness configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Surreal  SurrealConfig  `yaml:"surreal"`
	Sandbox  SandboxConfig  `yaml:"sandbox"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig selects the engine the harness opens transactions on
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SurrealConfig holds SurrealDB connection settings
type SurrealConfig struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	Namespace string `yaml:"namespace"`
	Database  string `yaml:"database"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
}

// SandboxConfig holds the transaction boundary policy
type SandboxConfig struct {
	CommitOnFailure     bool `yaml:"commit_on_failure"`
	WrapEachTest        bool `yaml:"wrap_each_test"`
	WrapEachNestedSuite bool `yaml:"wrap_each_nested_suite"`
	WrapNestedSuiteBody bool `yaml:"wrap_nested_suite_body"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    DefaultSQLiteDSN,
		},
		Surreal: SurrealConfig{
			Host:      "localhost",
			Port:      "8000",
			Namespace: "txsandbox",
			Database:  "test",
			User:      "root",
			Password:  "root",
		},
		Sandbox: SandboxConfig{
			WrapEachTest:        true,
			WrapEachNestedSuite: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := Default()
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile reads a YAML file over the defaults. Environment variables still
// take precedence over the file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Database.Driver = getEnv("TXSANDBOX_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("TXSANDBOX_DB_DSN", c.Database.DSN)

	c.Surreal.Host = getEnv("TXSANDBOX_SURREAL_HOST", c.Surreal.Host)
	c.Surreal.Port = getEnv("TXSANDBOX_SURREAL_PORT", c.Surreal.Port)
	c.Surreal.Namespace = getEnv("TXSANDBOX_SURREAL_NAMESPACE", c.Surreal.Namespace)
	c.Surreal.Database = getEnv("TXSANDBOX_SURREAL_DATABASE", c.Surreal.Database)
	c.Surreal.User = getEnv("TXSANDBOX_SURREAL_USER", c.Surreal.User)
	c.Surreal.Password = getEnv("TXSANDBOX_SURREAL_PASSWORD", c.Surreal.Password)

	c.Sandbox.CommitOnFailure = getBoolEnv("TXSANDBOX_COMMIT_ON_FAILURE", c.Sandbox.CommitOnFailure)
	c.Sandbox.WrapEachTest = getBoolEnv("TXSANDBOX_WRAP_EACH_TEST", c.Sandbox.WrapEachTest)
	c.Sandbox.WrapEachNestedSuite = getBoolEnv("TXSANDBOX_WRAP_NESTED_SUITES", c.Sandbox.WrapEachNestedSuite)
	c.Sandbox.WrapNestedSuiteBody = getBoolEnv("TXSANDBOX_WRAP_SUITE_BODY", c.Sandbox.WrapNestedSuiteBody)

	c.Log.Level = strings.ToLower(getEnv("TXSANDBOX_LOG_LEVEL", c.Log.Level))
}

// IsSurreal returns true when the SurrealDB engine is selected
func (c *Config) IsSurreal() bool {
	return c.Database.Driver == DriverSurreal
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Driver == "" {
		errs = append(errs, errors.New("TXSANDBOX_DB_DRIVER is required"))
	}

	if c.IsSurreal() {
		if err := c.Surreal.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("SurrealDB: %w", err))
		}
	} else if c.Database.Driver != "" && c.Database.DSN == "" {
		errs = append(errs, fmt.Errorf("TXSANDBOX_DB_DSN is required for driver '%s'", c.Database.Driver))
	}

	if c.Sandbox.WrapNestedSuiteBody && !c.Sandbox.WrapEachNestedSuite {
		errs = append(errs, errors.New("TXSANDBOX_WRAP_SUITE_BODY requires TXSANDBOX_WRAP_NESTED_SUITES"))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("TXSANDBOX_LOG_LEVEL must be 'debug', 'info', 'warn', or 'error', got '%s'", c.Log.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks that all required SurrealDB fields are present
func (s SurrealConfig) Validate() error {
	var missing []string
	if s.Host == "" {
		missing = append(missing, "TXSANDBOX_SURREAL_HOST")
	}
	if s.Port == "" {
		missing = append(missing, "TXSANDBOX_SURREAL_PORT")
	}
	if s.Namespace == "" {
		missing = append(missing, "TXSANDBOX_SURREAL_NAMESPACE")
	}
	if s.Database == "" {
		missing = append(missing, "TXSANDBOX_SURREAL_DATABASE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
