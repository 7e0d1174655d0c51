package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/txsandbox/internal/ambient"
	"github.com/forgo/txsandbox/internal/config"
	"github.com/forgo/txsandbox/internal/database"
	"github.com/forgo/txsandbox/internal/repository"
)

// NamespaceName is the ambient namespace the command line binds its engine to.
const NamespaceName = "txdemo"

var errSQLOnly = errors.New("the example schema needs a database/sql driver")

// openSQL opens the configured database/sql engine, binds it to the process
// namespace and applies the example migrations.
func openSQL(ctx context.Context, cfg *config.Config) (*database.SQL, error) {
	if cfg.IsSurreal() {
		return nil, fmt.Errorf("%w, got %q", errSQLOnly, cfg.Database.Driver)
	}

	engine, err := database.OpenSQL(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	engine.UseNamespace(ambient.Default.CreateNamespace(NamespaceName))

	if err := database.Migrate(ctx, engine.DB(), repository.Migrations, repository.MigrationsDir); err != nil {
		_ = engine.Close()
		return nil, err
	}
	return engine, nil
}

func surrealConfig(cfg *config.Config) database.Config {
	return database.Config{
		Host:      cfg.Surreal.Host,
		Port:      cfg.Surreal.Port,
		User:      cfg.Surreal.User,
		Password:  cfg.Surreal.Password,
		Namespace: cfg.Surreal.Namespace,
		Database:  cfg.Surreal.Database,
	}
}
