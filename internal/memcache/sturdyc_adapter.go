// Package memcache adapts a sturdyc client into the in-process hot tier
// that can sit in front of the persistent store. The tier is a pure
// accelerator: it holds already-computed values for fast repeated lookups
// within one process, while the disk store remains the durable source of
// truth across restarts.
package memcache

import (
	"strings"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc tier.
type Config struct {
	// Capacity defines the maximum number of entries the tier can hold.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent
	// access. Must be greater than 0.
	NumShards int

	// TTL is the time-to-live for tier entries. Entries older than this are
	// refetched from the persistent store. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict when
	// the tier reaches capacity. Must be between 1 and 100.
	EvictionPercentage int
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          64,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "memcache: config error in field " + e.Field + ": " + e.Message
}

// sturdycTier wraps a sturdyc client providing the hot-tier behaviour.
type sturdycTier struct {
	client *sturdyc.Client[any]
}

// NewSturdycTier validates the configuration and initializes a sturdyc
// client with the provided settings.
func NewSturdycTier(cfg Config) (*sturdycTier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
	)
	return &sturdycTier{client: client}, nil
}

// Get returns the tier entry for key, if one is live.
func (t *sturdycTier) Get(key string) (any, bool) {
	return t.client.Get(key)
}

// Set records a value for key in the tier.
func (t *sturdycTier) Set(key string, value any) {
	t.client.Set(key, value)
}

// Delete removes a single entry from the tier.
func (t *sturdycTier) Delete(key string) {
	t.client.Delete(key)
}

// DeletePrefix removes every tier entry whose key starts with prefix. An
// empty prefix removes everything.
func (t *sturdycTier) DeletePrefix(prefix string) {
	for _, key := range t.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			t.client.Delete(key)
		}
	}
}
