// Package cache persists the results of deterministic calls to durable
// storage, keyed by a hash of the call identity and its arguments.
//
// # Overview
//
// The package exports two main pieces:
//
//   - KeyDeriver: builds stable cache keys from a call name and argument values
//   - Store: a file-per-entry persistent store with corruption quarantine
//
// Keys are derived by encoding the argument tuple through the codec package,
// rendering the encoded form to canonical text, and hashing it. Structurally
// equal arguments always produce the same key across process restarts, which
// is what lets a wrapped function skip recomputation after a restart.
//
// # Basic Usage
//
//	store, err := cache.NewStore(cache.DefaultConfig())
//	if err != nil {
//		// the cache directory could not be created: fatal
//	}
//
//	keys := cache.NewKeyDeriver(store.Serializer())
//	key, err := keys.DeriveKey("Multiply", []any{5, 3}, nil)
//
//	res, err := store.Get(key)
//	switch res.Outcome {
//	case cache.OutcomeHit:
//		// res.Value holds the decoded result
//	case cache.OutcomeMiss, cache.OutcomeCorrupted:
//		// compute, then store.Set(key, value)
//	}
//
// # Lookup Outcomes
//
// A lookup distinguishes three outcomes rather than overloading one error
// channel: a hit carries the decoded value and its creation timestamp, a
// miss is not an error, and a corrupted entry is deleted on the spot and
// reported as CorruptionError so the caller can recompute. A store that
// cannot be read or written degrades to "always recompute", never to
// "return wrong data".
//
// # Storage Layout
//
// One file per entry inside the configured directory, named <key>.msgpack.
// Each file holds a versioned envelope (format version, owning key, creation
// timestamp, payload) so truncated or stale files are detected as corruption
// instead of being misread. Entries under a fixed key are logically
// immutable: concurrent writers of the same key can only race toward the
// same value, so last-writer-wins is safe and no locking is performed.
//
// For wrapping functions directly, see the memoize package. For the optional
// in-memory hot tier in front of the store, see MemoryConfig.
package cache
