// Package ambient provides task-local storage carried on context.Context.
//
// A Namespace hands out private slots. Code running inside a slot (and any
// goroutine or deferred callback started from the same context) reads and
// writes the same values without passing them around explicitly.
//
// # Chains
//
// A chain starts with Run or Fork:
//
//	ns := ambient.NewRegistry().CreateNamespace("db")
//	err := ns.Run(ctx, func(ctx context.Context) error {
//	    _ = ns.Set(ctx, "transaction", tx)
//	    v, _ := ns.Get(ctx, "transaction") // tx
//	    return nil
//	})
//
// Forking an active chain creates a child slot. Reads fall back to the
// enclosing slots, writes only touch the child. Independent Run calls never
// observe each other's values.
//
// # Callbacks
//
// Bind captures the slot active in a context so a callback invoked later,
// from a timer or another goroutine, still sees it:
//
//	cb := ns.Bind(ctx, func(ctx context.Context) { ... })
//	time.AfterFunc(time.Second, func() { cb(context.Background()) })
//
// Every operation outside a chain returns ErrNoContext.
package ambient
