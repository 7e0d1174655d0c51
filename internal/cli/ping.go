package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgo/txsandbox/internal/database"
)

func newPingCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured database is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := newLogger(cmd, cfg)

			if cfg.IsSurreal() {
				engine := database.NewSurreal(surrealConfig(cfg))
				if err := engine.Connect(ctx); err != nil {
					return err
				}
				defer engine.Close()
				if err := engine.Ping(ctx); err != nil {
					return err
				}
				logger.Debug("surrealdb reachable", "host", cfg.Surreal.Host, "port", cfg.Surreal.Port)
				fmt.Fprintf(cmd.OutOrStdout(), "ok %s %s:%s\n", cfg.Database.Driver, cfg.Surreal.Host, cfg.Surreal.Port)
				return nil
			}

			engine, err := database.OpenSQL(ctx, cfg.Database.Driver, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer engine.Close()
			logger.Debug("database reachable", "driver", cfg.Database.Driver)
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", cfg.Database.Driver)
			return nil
		},
	}
}
