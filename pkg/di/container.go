// Package di provides dependency injection for the persistent cache
// components. It manages singleton instances of the type registry, the
// serializer, the store and the key deriver, and provides a factory for
// memoizers wired to all of them.
package di

import (
	"github.com/goliatone/go-persistent-cache/cache"
	"github.com/goliatone/go-persistent-cache/codec"
	"github.com/goliatone/go-persistent-cache/memoize"
)

// Container wires the cache components around one shared registry so that
// keys, stored payloads and decoded results all agree on record types.
type Container struct {
	registry   *codec.Registry
	serializer *codec.Serializer
	store      *cache.Store
	keys       cache.KeyDeriver
	memory     cache.MemoryCache
	config     cache.Config
}

// NewContainer creates a container for the provided configuration. The
// memory tier is constructed only when cfg.Memory is set.
func NewContainer(cfg cache.Config) (*Container, error) {
	registry := codec.NewRegistry()
	serializer := codec.New(registry)

	store, err := cache.NewStore(cfg, cache.WithSerializer(serializer))
	if err != nil {
		return nil, err
	}

	var memory cache.MemoryCache
	if cfg.Memory != nil {
		memory, err = cache.NewMemoryCache(*cfg.Memory)
		if err != nil {
			return nil, err
		}
	}

	return &Container{
		registry:   registry,
		serializer: serializer,
		store:      store,
		keys:       cache.NewKeyDeriver(serializer),
		memory:     memory,
		config:     cfg,
	}, nil
}

// NewContainerWithDefaults creates a container using default configuration.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig())
}

// Register records the record types that cached results and arguments may
// contain, on the shared registry.
func (c *Container) Register(samples ...any) error {
	return c.registry.Register(samples...)
}

// Registry returns the shared type registry.
func (c *Container) Registry() *codec.Registry { return c.registry }

// Serializer returns the shared serializer instance.
func (c *Container) Serializer() *codec.Serializer { return c.serializer }

// Store returns the singleton persistent store.
func (c *Container) Store() *cache.Store { return c.store }

// KeyDeriver returns the singleton key deriver instance.
func (c *Container) KeyDeriver() cache.KeyDeriver { return c.keys }

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() cache.Config { return c.config }

// NewMemoizer creates a memoizer wired to the container's store, key
// deriver and memory tier. Additional options are applied last so callers
// can still override any of them.
func (c *Container) NewMemoizer(opts ...memoize.Option) *memoize.Memoizer {
	base := []memoize.Option{memoize.WithKeyDeriver(c.keys)}
	if c.memory != nil {
		base = append(base, memoize.WithMemoryCache(c.memory))
	}
	return memoize.New(c.store, append(base, opts...)...)
}
