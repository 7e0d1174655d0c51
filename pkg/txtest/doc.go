// Package txtest runs test suites inside transactions that are rolled back
// after every test.
//
// A Harness binds a database engine to the sandbox manager. Run instruments
// a suite tree once and executes it in a fresh ambient chain:
//
//	engine, _ := database.OpenSQL(ctx, database.DriverSQLite, dsn)
//	engine.UseNamespace(ambient.Default.CreateNamespace("app"))
//
//	h, err := txtest.New(txtest.DefaultOptions(engine))
//	if err != nil {
//		t.Fatal(err)
//	}
//
//	root := suite.New()
//	root.Describe("users", func(s *suite.Suite) {
//		s.It("creates a user", func(ctx context.Context, t suite.T) {
//			_, err := users.Create(ctx, req) // joins the test's savepoint
//			require.NoError(t, err)
//		})
//	})
//	h.Run(t, root)
//
// Application code joins the current test's transaction by asking the engine
// for its querier with the context it was handed, e.g.
// engine.Querier(ctx).ExecContext(ctx, ...).
//
// # Boundaries
//
// With WrapEachTest every test opens its own boundary. With
// WrapEachNestedSuite every non-root suite opens one around its hooks and
// tests, and the suite's tests open savepoints inside it. WrapNestedSuiteBody
// adds a second savepoint around the suite body.
//
// # Failures
//
// Boundaries are rolled back, except that a failing test or suite is
// committed when CommitOnFailure is set so its rows can be inspected.
// Committing a savepoint from test code while CommitOnFailure is off emits
// EventSandboxBreached and logs a warning.
//
// # Plain go test
//
// Transactional wraps one test function in a root boundary, and package
// txsuite does the same for testify suites.
package txtest
