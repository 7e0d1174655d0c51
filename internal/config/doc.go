// Package config manages harness configuration.
//
// Configuration starts from defaults, is optionally overlaid by a YAML file
// and is finally overridden by environment variables:
//
//	cfg, err := config.Load()              // defaults + env
//	cfg, err := config.LoadFile("tx.yaml") // defaults + file + env
//	if err := cfg.Validate(); err != nil { ... }
//
// # Configuration Groups
//
//   - DatabaseConfig: engine driver and DSN
//   - SurrealConfig: SurrealDB connection settings
//   - SandboxConfig: which tests and suites get a transaction boundary
//   - LogConfig: log level
//
// # Environment Variables
//
//	TXSANDBOX_DB_DRIVER          - sqlite (default) or surrealdb
//	TXSANDBOX_DB_DSN             - DSN for SQL drivers
//	TXSANDBOX_COMMIT_ON_FAILURE  - commit a failing test's boundary (default: false)
//	TXSANDBOX_WRAP_EACH_TEST     - one boundary per test (default: true)
//	TXSANDBOX_WRAP_NESTED_SUITES - one boundary per nested suite (default: true)
//	TXSANDBOX_WRAP_SUITE_BODY    - second boundary around a nested suite's body
//	TXSANDBOX_LOG_LEVEL          - debug, info, warn or error (default: info)
//	TXSANDBOX_SURREAL_HOST       - SurrealDB host (default: localhost)
//	TXSANDBOX_SURREAL_PORT       - SurrealDB port (default: 8000)
//	TXSANDBOX_SURREAL_NAMESPACE  - SurrealDB namespace
//	TXSANDBOX_SURREAL_DATABASE   - SurrealDB database
//	TXSANDBOX_SURREAL_USER       - SurrealDB user
//	TXSANDBOX_SURREAL_PASSWORD   - SurrealDB password
//
// # File Format
//
//	database:
//	  driver: sqlite
//	  dsn: file:test.db
//	sandbox:
//	  commit_on_failure: true
//	  wrap_nested_suite_body: true
//	log:
//	  level: debug
package config
