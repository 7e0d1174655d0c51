package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_Validate_ValidConfig(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_MissingDriver(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing TXSANDBOX_DB_DRIVER")
	}
	if !strings.Contains(err.Error(), "TXSANDBOX_DB_DRIVER") {
		t.Errorf("expected error to mention TXSANDBOX_DB_DRIVER, got: %v", err)
	}
}

func TestConfig_Validate_MissingDSN(t *testing.T) {
	cfg := Default()
	cfg.Database.DSN = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing TXSANDBOX_DB_DSN")
	}
	if !strings.Contains(err.Error(), "TXSANDBOX_DB_DSN") {
		t.Errorf("expected error to mention TXSANDBOX_DB_DSN, got: %v", err)
	}
}

func TestConfig_Validate_SurrealIgnoresDSN(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = DriverSurreal
	cfg.Database.DSN = ""

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_SurrealMissingFields(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = DriverSurreal
	cfg.Surreal.Host = ""
	cfg.Surreal.Namespace = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for incomplete SurrealDB settings")
	}
	for _, field := range []string{"TXSANDBOX_SURREAL_HOST", "TXSANDBOX_SURREAL_NAMESPACE"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error to mention %s, got: %v", field, err)
		}
	}
	if strings.Contains(err.Error(), "TXSANDBOX_SURREAL_PORT") {
		t.Errorf("did not expect TXSANDBOX_SURREAL_PORT in: %v", err)
	}
}

func TestConfig_Validate_SuiteBodyNeedsNestedSuites(t *testing.T) {
	cfg := Default()
	cfg.Sandbox.WrapEachNestedSuite = false
	cfg.Sandbox.WrapNestedSuiteBody = true

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for TXSANDBOX_WRAP_SUITE_BODY without nested suites")
	}
	if !strings.Contains(err.Error(), "TXSANDBOX_WRAP_SUITE_BODY") {
		t.Errorf("expected error to mention TXSANDBOX_WRAP_SUITE_BODY, got: %v", err)
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Sandbox: SandboxConfig{WrapNestedSuiteBody: true},
		Log:     LogConfig{Level: "loud"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}

	errStr := err.Error()
	expectedFields := []string{"TXSANDBOX_DB_DRIVER", "TXSANDBOX_WRAP_SUITE_BODY", "TXSANDBOX_LOG_LEVEL"}
	for _, field := range expectedFields {
		if !strings.Contains(errStr, field) {
			t.Errorf("expected error to mention %s, got: %v", field, err)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"TXSANDBOX_DB_DRIVER", "TXSANDBOX_DB_DSN", "TXSANDBOX_COMMIT_ON_FAILURE",
		"TXSANDBOX_WRAP_EACH_TEST", "TXSANDBOX_WRAP_NESTED_SUITES", "TXSANDBOX_WRAP_SUITE_BODY",
		"TXSANDBOX_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected driver %q, got %q", DriverSQLite, cfg.Database.Driver)
	}
	if !cfg.Sandbox.WrapEachTest || !cfg.Sandbox.WrapEachNestedSuite {
		t.Error("expected tests and nested suites to be wrapped by default")
	}
	if cfg.Sandbox.CommitOnFailure || cfg.Sandbox.WrapNestedSuiteBody {
		t.Error("expected commit-on-failure and suite body wrapping off by default")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level info, got %q", cfg.Log.Level)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TXSANDBOX_DB_DSN", "file:other.db")
	t.Setenv("TXSANDBOX_COMMIT_ON_FAILURE", "true")
	t.Setenv("TXSANDBOX_WRAP_EACH_TEST", "false")
	t.Setenv("TXSANDBOX_WRAP_SUITE_BODY", "not-a-bool")
	t.Setenv("TXSANDBOX_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.DSN != "file:other.db" {
		t.Errorf("expected DSN override, got %q", cfg.Database.DSN)
	}
	if !cfg.Sandbox.CommitOnFailure {
		t.Error("expected commit-on-failure from env")
	}
	if cfg.Sandbox.WrapEachTest {
		t.Error("expected wrap-each-test disabled from env")
	}
	if cfg.Sandbox.WrapNestedSuiteBody {
		t.Error("expected an unparsable bool to keep the default")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected lowercased log level, got %q", cfg.Log.Level)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("TXSANDBOX_DB_DSN", "")
	t.Setenv("TXSANDBOX_LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "txsandbox.yaml")
	data := []byte(`database:
  driver: sqlite
  dsn: file:from-file.db
sandbox:
  commit_on_failure: true
  wrap_nested_suite_body: true
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Database.DSN != "file:from-file.db" {
		t.Errorf("expected DSN from file, got %q", cfg.Database.DSN)
	}
	if !cfg.Sandbox.CommitOnFailure || !cfg.Sandbox.WrapNestedSuiteBody {
		t.Error("expected sandbox settings from file")
	}
	if !cfg.Sandbox.WrapEachTest {
		t.Error("expected defaults to survive for keys missing from the file")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected env to win over file, got %q", cfg.Log.Level)
	}
	if cfg.Surreal.Host != "localhost" {
		t.Errorf("expected default surreal host, got %q", cfg.Surreal.Host)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("database: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestConfig_IsSurreal(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Driver: DriverSurreal}}
	if !cfg.IsSurreal() {
		t.Error("expected IsSurreal() to return true")
	}

	cfg.Database.Driver = DriverSQLite
	if cfg.IsSurreal() {
		t.Error("expected IsSurreal() to return false for sqlite")
	}
}
