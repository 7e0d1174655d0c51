// Package fixtures provides test data factories for the example application.
//
// Factories write through the repositories, so rows land in whatever
// transaction the given context carries:
//
//	f := fixtures.New(tdb.Engine)
//	user := f.CreateUser(t, ctx)
//	user := f.CreateUser(t, ctx, fixtures.WithUsername("jack-sparrow"))
//	orchestra := f.CreateOrchestra(t, ctx, fixtures.WithInstruments(3))
//
// Unique names are generated automatically:
//
//	user1 := f.CreateUser(t, ctx) // user_3f2a9c...
//	user2 := f.CreateUser(t, ctx) // user_b81d07...
package fixtures
