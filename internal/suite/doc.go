// Package suite provides a small suite-tree test runner with ordered hooks.
//
// A tree is built from a root suite with nested Describe blocks, It tests and
// four hook lists per suite:
//
//	root := suite.New()
//	root.Describe("Users", func(s *suite.Suite) {
//		s.Before("seed", func(ctx context.Context, _ suite.Runnable) error {
//			return seed(ctx)
//		})
//		s.It("creates a user", func(ctx context.Context, t suite.T) {
//			require.NoError(t, users.Create(ctx, "alice"))
//		})
//	})
//	suite.Run(ctx, suite.Go(t), root)
//
// # Execution Order
//
// Run walks the tree depth first. For each suite it runs the before-all
// hooks, then every test, then every child suite, then the after-all hooks.
// A test runs the before-each hooks of its ancestors from the root down, its
// body, and the after-each hooks from its own suite back up to the root.
//
// After-hooks run for every level whose before-hooks started, including when
// a before-hook or the test body failed. A failing before-all hook skips the
// tests and child suites of its suite.
//
// # Scopes
//
// A suite or test can carry a Scoper. The runner forks the context through
// it before running the node, so every hook, body and child of that node
// shares one derived context.
//
// # Drivers
//
// Go adapts a *testing.T. NewRecorder runs a tree outside of go test, for
// instance from a CLI, and records failures and log lines per subtest.
package suite
