// Package helpers provides test assertions for database state.
//
//	helpers.AssertRowCount(t, ctx, engine, "users", 1)
//	helpers.AssertRecordExists(t, ctx, engine, "users", user.ID)
//
// Every assertion queries through the engine's Querier for ctx, so it sees
// what the test's transaction sees. Pass context.Background() to look at
// committed state only.
package helpers
