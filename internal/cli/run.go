package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/forgo/txsandbox/internal/database"
	"github.com/forgo/txsandbox/internal/repository"
	"github.com/forgo/txsandbox/internal/suite"
	"github.com/forgo/txsandbox/pkg/txtest"
)

// ErrSuiteFailed is returned by the run command when a test or hook failed.
var ErrSuiteFailed = errors.New("demo suite failed")

type runFlags struct {
	fail            bool
	commitOnFailure bool
	wrapSuiteBody   bool
	quiet           bool
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the demo suites inside sandboxed transactions",
		Long: `Run executes the demo suites against the configured database. Each
boundary that opens or resolves is printed as it happens, followed by the
outcome of every test.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("commit-on-failure") {
				cfg.Sandbox.CommitOnFailure = f.commitOnFailure
			}
			if cmd.Flags().Changed("wrap-suite-body") {
				cfg.Sandbox.WrapNestedSuiteBody = f.wrapSuiteBody
				if f.wrapSuiteBody {
					cfg.Sandbox.WrapEachNestedSuite = true
				}
			}

			ctx := cmd.Context()
			logger := newLogger(cmd, cfg)
			out := cmd.OutOrStdout()

			engine, err := openSQL(ctx, cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			h, err := txtest.New(txtest.Options{
				Engine:               engine,
				CommitOnFailure:      cfg.Sandbox.CommitOnFailure,
				WrapEachTest:         cfg.Sandbox.WrapEachTest,
				WrapEachNestedSuite:  cfg.Sandbox.WrapEachNestedSuite,
				WrapNestedSuiteBody:  cfg.Sandbox.WrapNestedSuiteBody,
				OnTransactionStarted: printEvent(out, "started transaction", f.quiet),
				OnCommitted:          printEvent(out, "committed transaction", f.quiet),
				OnRolledBack:         printEvent(out, "rolled back transaction", f.quiet),
				OnSandboxBreached:    printEvent(out, "sandbox breached by", false),
				Logger:               logger,
			})
			if err != nil {
				return err
			}

			users := repository.NewUserRepository(engine).WithHashCost(bcrypt.MinCost)
			root := demoTree(users, f.fail)
			rec := suite.NewRecorder("txdemo")
			if err := h.Execute(ctx, rec, root); err != nil {
				return err
			}

			report(out, root, rec)
			if rec.Failed() {
				logger.Warn("demo suite failed", "commit_on_failure", cfg.Sandbox.CommitOnFailure)
				return ErrSuiteFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&f.fail, "fail", false, "make the create tests fail after inserting")
	cmd.Flags().BoolVar(&f.commitOnFailure, "commit-on-failure", false, "commit the work of failing tests (env: TXSANDBOX_COMMIT_ON_FAILURE)")
	cmd.Flags().BoolVar(&f.wrapSuiteBody, "wrap-suite-body", false, "open a second boundary around each nested suite body (env: TXSANDBOX_WRAP_SUITE_BODY)")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "only print the summary")
	return cmd
}

// printEvent writes one line per event. Savepoints are named by their
// savepoint name, roots by their id.
func printEvent(w io.Writer, verb string, quiet bool) func(tx database.Tx, descriptor string) {
	if quiet {
		return nil
	}
	return func(tx database.Tx, descriptor string) {
		fmt.Fprintf(w, "%s %s %s\n", verb, txLabel(tx), descriptor)
	}
}

func txLabel(tx database.Tx) string {
	if named, ok := database.Unwrap(tx).(interface{ Name() string }); ok && named.Name() != "" {
		return named.Name()
	}
	return tx.ID()
}

func report(w io.Writer, root *suite.Suite, rec *suite.Recorder) {
	fmt.Fprintln(w)
	root.Walk(func(s *suite.Suite) {
		for _, test := range s.Tests() {
			fmt.Fprintf(w, "%-8s %s\n", test.State(), test.FullTitle())
		}
	})
	rec.Walk(func(r *suite.Recorder) {
		if !r.Failed() {
			return
		}
		for _, line := range r.Logs() {
			fmt.Fprintf(w, "  %s: %s\n", r.Name(), line)
		}
	})
}
