package memoize

import (
	"log/slog"
	"time"

	"github.com/goliatone/go-persistent-cache/cache"
)

// Store is the subset of the persistent store the memoizer consumes.
// *cache.Store satisfies it.
type Store interface {
	Get(key string) (cache.Result, error)
	GetInto(key string, dst any) (cache.Result, error)
	Set(key string, value any) error
	Clear(callName string) error
	ClearAll() error
}

// Memoizer intercepts calls to wrapped functions and delegates to the
// persistent store. One Memoizer can back any number of wrapped functions;
// the call name keeps their key spaces apart.
type Memoizer struct {
	store  Store
	keys   cache.KeyDeriver
	memory cache.MemoryCache
	expiry time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Memoizer.
type Option func(*Memoizer)

// WithKeyDeriver overrides the default key deriver. Pass one sharing the
// store's serializer when record arguments are in play.
func WithKeyDeriver(kd cache.KeyDeriver) Option {
	return func(m *Memoizer) {
		if kd != nil {
			m.keys = kd
		}
	}
}

// WithMemoryCache fronts the persistent store with an in-process hot tier.
func WithMemoryCache(mc cache.MemoryCache) Option {
	return func(m *Memoizer) { m.memory = mc }
}

// WithExpiry treats persisted entries older than d as stale: they are
// recomputed and rewritten instead of returned. Zero means entries never
// expire.
func WithExpiry(d time.Duration) Option {
	return func(m *Memoizer) { m.expiry = d }
}

// WithLogger enables warnings on the swallowed failure paths (unreadable
// entries, failed writes, unserializable arguments). Nil keeps it silent.
func WithLogger(l *slog.Logger) Option {
	return func(m *Memoizer) { m.logger = l }
}

// New creates a Memoizer over the given store.
func New(store Store, opts ...Option) *Memoizer {
	m := &Memoizer{
		store: store,
		keys:  cache.NewKeyDeriver(nil),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Func1 wraps a single-argument deterministic function.
func Func1[A, R any](m *Memoizer, name string, fn func(A) R) func(A) R {
	return func(a A) R {
		return lookupOrCompute(m, name, []any{a}, func() R { return fn(a) })
	}
}

// Func2 wraps a two-argument deterministic function.
func Func2[A, B, R any](m *Memoizer, name string, fn func(A, B) R) func(A, B) R {
	return func(a A, b B) R {
		return lookupOrCompute(m, name, []any{a, b}, func() R { return fn(a, b) })
	}
}

// Func3 wraps a three-argument deterministic function.
func Func3[A, B, C, R any](m *Memoizer, name string, fn func(A, B, C) R) func(A, B, C) R {
	return func(a A, b B, c C) R {
		return lookupOrCompute(m, name, []any{a, b, c}, func() R { return fn(a, b, c) })
	}
}

// Do runs the memoization protocol for one call with explicit positional and
// named arguments. Unlike the typed FuncN wrappers, a hit returns the
// generically decoded value (records as their registered types, sequences as
// []any), so it suits callers that work with dynamic shapes. A compute error
// is returned as-is and nothing is cached.
func (m *Memoizer) Do(name string, args []any, kwargs map[string]any, compute func() (any, error)) (any, error) {
	key, err := m.keys.DeriveKey(name, args, kwargs)
	if err != nil {
		m.logw("arguments are not serializable; skipping cache", "call", name, "error", err)
		return compute()
	}

	if m.memory != nil {
		if v, ok := m.memory.Get(key); ok {
			return v, nil
		}
	}

	res, err := m.store.Get(key)
	if err == nil && res.Outcome == cache.OutcomeHit && m.fresh(res) {
		m.memSet(key, res.Value)
		return res.Value, nil
	}
	if err != nil {
		m.logw("treating unreadable cache entry as a miss", "call", name, "key", key, "error", err)
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}
	m.persist(name, key, value)
	return value, nil
}

// Invalidate drops every cached result recorded under name, in both tiers.
func (m *Memoizer) Invalidate(name string) error {
	if m.memory != nil {
		m.memory.DeletePrefix(cache.KeyPrefix(name))
	}
	return m.store.Clear(name)
}

// InvalidateAll drops every cached result in the namespace.
func (m *Memoizer) InvalidateAll() error {
	if m.memory != nil {
		m.memory.DeletePrefix("")
	}
	return m.store.ClearAll()
}

func lookupOrCompute[R any](m *Memoizer, name string, args []any, compute func() R) R {
	key, err := m.keys.DeriveKey(name, args, nil)
	if err != nil {
		m.logw("arguments are not serializable; skipping cache", "call", name, "error", err)
		return compute()
	}

	if m.memory != nil {
		if v, ok := m.memory.Get(key); ok {
			if r, ok := v.(R); ok {
				return r
			}
		}
	}

	var out R
	res, err := m.store.GetInto(key, &out)
	if err == nil && res.Outcome == cache.OutcomeHit && m.fresh(res) {
		m.memSet(key, out)
		return out
	}
	if err != nil {
		m.logw("treating unreadable cache entry as a miss", "call", name, "key", key, "error", err)
	}

	out = compute()
	m.persist(name, key, out)
	return out
}

func (m *Memoizer) persist(name, key string, value any) {
	if err := m.store.Set(key, value); err != nil {
		m.logw("could not persist result; continuing uncached", "call", name, "key", key, "error", err)
	}
	m.memSet(key, value)
}

func (m *Memoizer) logw(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}

func (m *Memoizer) memSet(key string, value any) {
	if m.memory != nil {
		m.memory.Set(key, value)
	}
}

// fresh reports whether a hit is still usable under the configured expiry.
func (m *Memoizer) fresh(res cache.Result) bool {
	if m.expiry <= 0 {
		return true
	}
	if res.CreatedAt.IsZero() {
		return false
	}
	return m.now().Sub(res.CreatedAt) < m.expiry
}
