package memoize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-persistent-cache/cache"
	"github.com/goliatone/go-persistent-cache/pkg/testsupport"
)

func newTestStore(t *testing.T, dir string) *cache.Store {
	t.Helper()

	store, err := cache.NewStore(cache.Config{Dir: dir})
	require.NoError(t, err)
	return store
}

func TestFunc2_MemoizesDeterministicCalls(t *testing.T) {
	m := New(newTestStore(t, t.TempDir()))

	calls := 0
	multiply := Func2(m, "Multiply", func(a, b int) int {
		calls++
		return a * b
	})

	assert.Equal(t, 15, multiply(5, 3))
	assert.Equal(t, 15, multiply(5, 3))
	assert.Equal(t, 1, calls, "second call must be served from the cache")
}

func TestFunc2_DistinctArgumentsComputeSeparately(t *testing.T) {
	m := New(newTestStore(t, t.TempDir()))

	calls := 0
	multiply := Func2(m, "Multiply", func(a, b int) int {
		calls++
		return a * b
	})

	assert.Equal(t, 15, multiply(5, 3))
	assert.Equal(t, 15, multiply(3, 5), "argument order is part of the key")
	assert.Equal(t, 40, multiply(10, 4))
	assert.Equal(t, 3, calls)
}

func TestMemoizer_EntriesSurviveRestart(t *testing.T) {
	dir := t.TempDir()

	first := New(newTestStore(t, dir))
	greet := Func1(first, "Greet", func(name string) string {
		return "hello " + name
	})
	assert.Equal(t, "hello ada", greet("ada"))

	// A new memoizer over the same directory stands in for a fresh process.
	second := New(newTestStore(t, dir))
	calls := 0
	greetAgain := Func1(second, "Greet", func(name string) string {
		calls++
		return "hello " + name
	})

	assert.Equal(t, "hello ada", greetAgain("ada"))
	assert.Zero(t, calls, "restart must be answered from disk")
}

type summary struct {
	Account string
	Total   float64
	Lines   []string
}

func TestFunc1_RecordResultsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	build := func(account string) summary {
		return summary{Account: account, Total: 99.5, Lines: []string{"a", "b"}}
	}

	first := New(newTestStore(t, dir))
	assert.Equal(t, build("acme"), Func1(first, "Summarize", build)("acme"))

	second := New(newTestStore(t, dir))
	calls := 0
	cached := Func1(second, "Summarize", func(account string) summary {
		calls++
		return build(account)
	})

	assert.Equal(t, build("acme"), cached("acme"))
	assert.Zero(t, calls)
}

func TestMemoizer_RecomputesAfterCorruption(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	m := New(store)

	calls := 0
	multiply := Func2(m, "Multiply", func(a, b int) int {
		calls++
		return a * b
	})

	require.Equal(t, 15, multiply(5, 3))
	require.Equal(t, 1, calls)

	key, err := cache.NewKeyDeriver(nil).DeriveKey("Multiply", []any{5, 3}, nil)
	require.NoError(t, err)
	testsupport.CorruptEntry(t, store.Dir(), key, []byte("scrambled bytes"))

	assert.Equal(t, 15, multiply(5, 3))
	assert.Equal(t, 2, calls, "corrupted entry must be recomputed")

	assert.Equal(t, 15, multiply(5, 3))
	assert.Equal(t, 2, calls, "the rewrite heals the entry")
}

func TestMemoizer_Expiry(t *testing.T) {
	m := New(newTestStore(t, t.TempDir()), WithExpiry(time.Hour))

	calls := 0
	multiply := Func2(m, "Multiply", func(a, b int) int {
		calls++
		return a * b
	})

	require.Equal(t, 15, multiply(5, 3))
	require.Equal(t, 1, calls)

	// Within the expiry window the entry is served.
	assert.Equal(t, 15, multiply(5, 3))
	assert.Equal(t, 1, calls)

	// Two hours later the entry is stale and recomputed.
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 15, multiply(5, 3))
	assert.Equal(t, 2, calls)

	// The rewrite carries a fresh timestamp.
	m.now = time.Now
	assert.Equal(t, 15, multiply(5, 3))
	assert.Equal(t, 2, calls)
}

func TestMemoizer_Do(t *testing.T) {
	m := New(newTestStore(t, t.TempDir()))

	calls := 0
	compute := func() (any, error) {
		calls++
		return 42, nil
	}

	first, err := m.Do("Answer", []any{"q"}, map[string]any{"deep": true}, compute)
	require.NoError(t, err)
	assert.Equal(t, 42, first)

	// A hit decodes generically, so integers come back as int64.
	second, err := m.Do("Answer", []any{"q"}, map[string]any{"deep": true}, compute)
	require.NoError(t, err)
	assert.EqualValues(t, 42, second)
	assert.Equal(t, 1, calls)

	// Different named arguments derive a different key.
	_, err = m.Do("Answer", []any{"q"}, map[string]any{"deep": false}, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestMemoizer_DoComputeErrorIsNotCached(t *testing.T) {
	m := New(newTestStore(t, t.TempDir()))

	boom := errors.New("boom")
	calls := 0

	_, err := m.Do("Flaky", nil, nil, func() (any, error) {
		calls++
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	got, err := m.Do("Flaky", nil, nil, func() (any, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls, "the failed attempt must not have been cached")
}

func TestMemoizer_InvalidateIsSelective(t *testing.T) {
	m := New(newTestStore(t, t.TempDir()))

	mulCalls, addCalls := 0, 0
	multiply := Func2(m, "Multiply", func(a, b int) int {
		mulCalls++
		return a * b
	})
	add := Func2(m, "Add", func(a, b int) int {
		addCalls++
		return a + b
	})

	multiply(5, 3)
	add(5, 3)

	require.NoError(t, m.Invalidate("Multiply"))

	multiply(5, 3)
	add(5, 3)
	assert.Equal(t, 2, mulCalls, "invalidated call must recompute")
	assert.Equal(t, 1, addCalls, "other calls keep their entries")
}

func TestMemoizer_InvalidateAll(t *testing.T) {
	m := New(newTestStore(t, t.TempDir()))

	calls := 0
	multiply := Func2(m, "Multiply", func(a, b int) int {
		calls++
		return a * b
	})

	multiply(5, 3)
	require.NoError(t, m.InvalidateAll())
	multiply(5, 3)

	assert.Equal(t, 2, calls)
}

func TestMemoizer_MemoryTierServesWithoutDisk(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	mc, err := cache.NewMemoryCache(cache.DefaultMemoryConfig())
	require.NoError(t, err)
	m := New(store, WithMemoryCache(mc))

	calls := 0
	multiply := Func2(m, "Multiply", func(a, b int) int {
		calls++
		return a * b
	})

	require.Equal(t, 15, multiply(5, 3))

	// Drop the durable copy; the hot tier still answers.
	require.NoError(t, store.ClearAll())

	assert.Equal(t, 15, multiply(5, 3))
	assert.Equal(t, 1, calls)
}

func TestMemoizer_UnserializableArgumentsComputeUncached(t *testing.T) {
	m := New(newTestStore(t, t.TempDir()))

	calls := 0
	drain := Func1(m, "Drain", func(ch chan int) int {
		calls++
		return len(ch)
	})

	ch := make(chan int, 3)
	drain(ch)
	drain(ch)

	assert.Equal(t, 2, calls, "unserializable arguments bypass the cache entirely")
}

// flakyStore fails every write while delegating reads to the real store.
type flakyStore struct {
	Store
	setErr error
}

func (f *flakyStore) Set(key string, value any) error { return f.setErr }

func TestMemoizer_WriteFailuresNeverAbortTheCall(t *testing.T) {
	store := newTestStore(t, t.TempDir())
	m := New(&flakyStore{Store: store, setErr: errors.New("disk full")})

	calls := 0
	multiply := Func2(m, "Multiply", func(a, b int) int {
		calls++
		return a * b
	})

	assert.Equal(t, 15, multiply(5, 3), "the computed value is returned despite the failed write")
	assert.Equal(t, 15, multiply(5, 3))
	assert.Equal(t, 2, calls, "nothing was persisted, so every call recomputes")
}
