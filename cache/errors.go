package cache

import "fmt"

// ConfigError reports an invalid configuration value at construction time.
// It is fatal: the store cannot be built around a bad namespace.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "cache: config error in field " + e.Field + ": " + e.Message
}

// CorruptionError reports a persisted entry that could not be decoded. The
// offending file has already been quarantined (deleted best-effort) by the
// time this error surfaces; callers are expected to treat the key as a miss
// and recompute.
type CorruptionError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *CorruptionError) Error() string {
	return fmt.Sprintf("cache: corrupted cache file %s: %v", e.Path, e.Err)
}

// Unwrap exposes the decode failure that triggered the quarantine.
func (e *CorruptionError) Unwrap() error { return e.Err }

// WriteError reports a value that could not be encoded or persisted. The
// computation that produced the value is unaffected; callers typically log
// and continue without caching.
type WriteError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("cache: failed to write cache entry %q: %v", e.Key, e.Err)
}

// Unwrap exposes the underlying encode or I/O failure.
func (e *WriteError) Unwrap() error { return e.Err }
