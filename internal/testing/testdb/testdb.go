package testdb

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/forgo/txsandbox/internal/ambient"
	"github.com/forgo/txsandbox/internal/database"
)

// TestDB provides an isolated database environment for testing.
type TestDB struct {
	Engine    *database.SQL
	Namespace *ambient.Namespace
	DSN       string
	t         testing.TB
}

type options struct {
	migrations fs.FS
	dir        string
}

// Option customizes New.
type Option func(*options)

// WithMigrations applies the *.sql files under dir of fsys after opening.
func WithMigrations(fsys fs.FS, dir string) Option {
	return func(o *options) {
		o.migrations = fsys
		o.dir = dir
	}
}

var (
	// counterMu protects the namespace counter
	counterMu sync.Mutex
	counter   int64
)

// getTestConfig returns the driver and DSN from the environment, or a
// temporary SQLite file under dir.
func getTestConfig(dir string) (string, string) {
	driver := os.Getenv("TXSANDBOX_TEST_DB_DRIVER")
	dsn := os.Getenv("TXSANDBOX_TEST_DB_DSN")
	if driver != "" && dsn != "" {
		return driver, dsn
	}
	path := filepath.Join(dir, "sandbox.db")
	return database.DriverSQLite, "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// uniqueNamespace generates a unique namespace name for test isolation
func uniqueNamespace() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// New creates a new isolated test database with migrations applied.
// Cleanup is registered on t.
func New(t testing.TB, opts ...Option) *TestDB {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	driver, dsn := getTestConfig(t.TempDir())
	engine, err := database.OpenSQL(ctx, driver, dsn)
	if err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	ns := ambient.NewRegistry().CreateNamespace(uniqueNamespace())
	engine.UseNamespace(ns)

	tdb := &TestDB{
		Engine:    engine,
		Namespace: ns,
		DSN:       dsn,
		t:         t,
	}
	t.Cleanup(tdb.Close)

	if o.migrations != nil {
		if err := database.Migrate(ctx, engine.DB(), o.migrations, o.dir); err != nil {
			t.Fatalf("testdb: migrations failed: %v", err)
		}
	}

	return tdb
}

// Close closes the pool. New registers it on t.Cleanup.
func (tdb *TestDB) Close() {
	if tdb.Engine == nil {
		return
	}
	_ = tdb.Engine.Close()
}

// Ctx returns a context with a reasonable timeout for test operations.
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// Chain returns a context carrying a fresh ambient chain.
func (tdb *TestDB) Chain() context.Context {
	return tdb.Namespace.Fork(tdb.Ctx())
}

// MustExec executes a statement outside any transaction and fails the test on error.
func (tdb *TestDB) MustExec(query string, args ...any) {
	tdb.t.Helper()
	if _, err := tdb.Engine.DB().ExecContext(tdb.Ctx(), query, args...); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}

// Count returns the committed row count of table, ignoring any open transaction.
func (tdb *TestDB) Count(table string) int {
	tdb.t.Helper()
	return tdb.CountIn(context.Background(), table)
}

// CountIn returns the row count of table as seen by the chain of ctx.
func (tdb *TestDB) CountIn(ctx context.Context, table string) int {
	tdb.t.Helper()
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := tdb.Engine.Querier(ctx).QueryRowContext(ctx, query).Scan(&n); err != nil {
		tdb.t.Fatalf("testdb: count %s failed: %v", table, err)
	}
	return n
}
