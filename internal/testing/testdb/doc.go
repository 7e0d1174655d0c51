// Package testdb provides test database utilities for txsandbox.
//
// The testdb package hands every test a private SQLite database with its
// own ambient namespace, applies migrations and registers cleanup.
//
// # Test Database Setup
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//
//	    // tdb.Engine is bound to tdb.Namespace
//	}
//
// # Migrations
//
//	tdb := testdb.New(t, testdb.WithMigrations(users.Migrations, "migrations"))
//
// # Shared Database
//
// Set TXSANDBOX_TEST_DB_DRIVER and TXSANDBOX_TEST_DB_DSN to run against an
// existing database instead of a temporary file.
//
// # Timeout Context
//
//	ctx := tdb.Ctx() // 10 second timeout, cancelled on cleanup
package testdb
