package cli

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/forgo/txsandbox/internal/repository"
)

func newMigrateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the example schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			engine, err := openSQL(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			newLogger(cmd, cfg).Info("schema up to date", "driver", cfg.Database.Driver)
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}

func newSeedCmd(g *globalFlags) *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the example database with users, orchestras and instruments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := newLogger(cmd, cfg)

			engine, err := openSQL(ctx, cfg)
			if err != nil {
				return err
			}
			defer engine.Close()

			users := repository.NewUserRepository(engine)
			existing, err := users.Count(ctx)
			if err != nil {
				return err
			}
			if existing > 0 {
				logger.Info("database already seeded", "users", existing)
				fmt.Fprintf(cmd.OutOrStdout(), "already seeded: %d users\n", existing)
				return nil
			}

			rng := rand.New(rand.NewPCG(seed, seed))
			err = repository.WithTransaction(ctx, engine, func(ctx context.Context) error {
				return repository.Seed(ctx, engine, rng)
			})
			if err != nil {
				return fmt.Errorf("seeding: %w", err)
			}

			orchestras := repository.NewOrchestraRepository(engine)
			nUsers, err := users.Count(ctx)
			if err != nil {
				return err
			}
			nOrchestras, err := orchestras.Count(ctx)
			if err != nil {
				return err
			}
			nInstruments, err := orchestras.CountInstruments(ctx)
			if err != nil {
				return err
			}

			logger.Info("database seeded", "users", nUsers, "orchestras", nOrchestras, "instruments", nInstruments)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded: %d users, %d orchestras, %d instruments\n", nUsers, nOrchestras, nInstruments)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for instrument types and purchase dates")
	return cmd
}
