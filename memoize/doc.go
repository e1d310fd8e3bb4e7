// Package memoize wraps deterministic functions so repeated invocations
// with structurally equal arguments are answered from the persistent store
// instead of recomputed, across process restarts.
//
// A Memoizer owns the memoization protocol: derive the key, consult the
// optional in-memory tier, then the persistent store, and fall back to the
// wrapped function on a miss or an unreadable entry. Write failures are
// logged and swallowed so caching problems never abort the computation
// itself; the only errors a wrapped call can surface are the function's own.
//
// Since Go methods cannot have type parameters, the typed wrappers are
// provided as package-level functions:
//
//	m := memoize.New(store)
//	multiply := memoize.Func2(m, "Multiply", func(x, y int) int {
//		return x * y
//	})
//
//	multiply(5, 3) // computes and persists 15
//	multiply(5, 3) // answered from the cache, even in a later process
//
// Results containing record types must be registered on the store's
// serializer before the first cached call is replayed from disk.
package memoize
