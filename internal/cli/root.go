// Package cli implements the txdemo command line: it migrates and seeds the
// example database and runs the sandboxed demo suites against it.
package cli

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/forgo/txsandbox/internal/config"
	"github.com/forgo/txsandbox/internal/logging"
)

// Version information set by the release build
var (
	version = "dev"
	commit  = "none"
)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	config   string
	driver   string
	dsn      string
	logLevel string
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "txdemo",
		Short: "Run test suites inside rolled back database transactions",
		Long: `txdemo drives the transactional test sandbox against the example database.

Every nested suite and every test runs inside its own transaction or
savepoint. Boundaries are rolled back when they end, so the database is left
exactly as it was before the run. With --commit-on-failure the work of failing
tests is committed instead, leaving it behind for inspection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.config, "config", "c", "", "config file path (YAML)")
	pf.StringVar(&g.driver, "driver", "", "database driver: sqlite or surrealdb (env: TXSANDBOX_DB_DRIVER)")
	pf.StringVar(&g.dsn, "dsn", "", "database DSN (env: TXSANDBOX_DB_DSN)")
	pf.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (env: TXSANDBOX_LOG_LEVEL)")

	cmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(g),
		newPingCmd(g),
		newMigrateCmd(g),
		newSeedCmd(g),
		newRunCmd(g),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "txdemo %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
			return nil
		},
	}
}

// load resolves the configuration: defaults, then the config file, then the
// environment, then flags.
func (g *globalFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.config != "" {
		cfg, err = config.LoadFile(g.config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if g.driver != "" {
		cfg.Database.Driver = g.driver
	}
	if g.dsn != "" {
		cfg.Database.DSN = g.dsn
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(cmd.ErrOrStderr(), level)
}
