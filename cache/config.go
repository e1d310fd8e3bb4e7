package cache

import (
	"errors"
	"time"

	"github.com/goliatone/go-persistent-cache/internal/memcache"
)

// DefaultDir is the cache directory used when none is configured.
const DefaultDir = ".cache"

// Config exposes configuration options for the persistent store.
type Config struct {
	// Dir is the directory that owns the cache namespace, one file per
	// entry. It is created at construction if absent.
	Dir string

	// Memory optionally fronts the persistent store with an in-process hot
	// tier so repeated hits skip disk I/O. Nil disables the tier; the disk
	// remains the durable source of truth either way.
	Memory *MemoryConfig
}

// MemoryConfig mirrors the underlying in-memory tier options.
type MemoryConfig struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{Dir: DefaultDir}
}

// DefaultMemoryConfig returns the default options for the in-memory tier.
func DefaultMemoryConfig() MemoryConfig {
	return convertMemoryFromInternal(memcache.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.Dir == "" {
		return &ConfigError{Field: "Dir", Message: "must not be empty"}
	}
	if c.Memory != nil {
		if err := c.Memory.toInternal().Validate(); err != nil {
			return convertMemcacheError(err)
		}
	}
	return nil
}

// MemoryCache is the optional in-process tier consulted before the disk
// store. Implementations must be safe for concurrent use.
type MemoryCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Delete(key string)
	DeletePrefix(prefix string)
}

// NewMemoryCache constructs the default in-memory tier implementation for
// the given configuration.
func NewMemoryCache(cfg MemoryConfig) (MemoryCache, error) {
	tier, err := memcache.NewSturdycTier(cfg.toInternal())
	if err != nil {
		return nil, convertMemcacheError(err)
	}
	return tier, nil
}

func (c MemoryConfig) toInternal() memcache.Config {
	return memcache.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
	}
}

func convertMemoryFromInternal(cfg memcache.Config) MemoryConfig {
	return MemoryConfig{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
	}
}

func convertMemcacheError(err error) error {
	var ce *memcache.ConfigError
	if errors.As(err, &ce) {
		return &ConfigError{Field: "Memory." + ce.Field, Message: ce.Message}
	}
	return err
}
