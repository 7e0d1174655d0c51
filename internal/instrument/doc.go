// Package instrument wraps a suite tree in transaction boundaries.
//
// Apply makes one pre-order pass over the tree before it runs and registers
// hooks that open and stop boundaries around tests and nested suites:
//
//	root hooks:   before each -> Open(test)       after each -> Stop(test)
//	nested suite: before all  -> Open(suite)      after all  -> Stop(suite)
//	              before all  -> Open(suite body) after all  -> Stop(suite body)
//
// Boundary hooks are inserted at the front of before lists and at the back of
// after lists, so they wrap every user hook. The failure flag handed to Stop is
// read from the subtree when the after hook runs.
//
// Wrapped tests and suites also receive a scope. The runner forks the ambient
// chain for them, so a boundary opened in a nested suite becomes the root
// that the suite's tests open savepoints under.
package instrument
