// Package repository implements the data access layer of the example
// application.
//
// Each repository struct handles the operations for one entity. Repositories
// never hold a transaction themselves: every query goes through the Source's
// Querier for the call's context, which is the ambient transaction when a
// test boundary is open and the connection pool otherwise.
//
//	users := repository.NewUserRepository(engine)
//	user, err := users.Create(ctx, &model.CreateUserRequest{Username: "jack-sparrow"})
//
// # Schema
//
// Migrations holds the SQL schema, applied with database.Migrate:
//
//	database.Migrate(ctx, engine.DB(), repository.Migrations, repository.MigrationsDir)
//
// # Errors
//
// Lookups return database.ErrNotFound and unique violations
// database.ErrDuplicate, both wrapped with context. Invalid requests return a
// *model.ValidationError.
package repository
