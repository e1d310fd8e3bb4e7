package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-persistent-cache/codec"
)

// entryExt is the extension of persisted entry files; the content is a
// msgpack-encoded envelope.
const entryExt = ".msgpack"

// envelopeVersion guards the on-disk layout. Entries carrying an unknown
// version are treated as corrupted rather than misread.
const envelopeVersion = 1

// envelope is the persisted unit, one per entry file. The owning key is
// stored redundantly so a file that was truncated, cross-copied or renamed
// fails validation instead of answering for the wrong arguments.
type envelope struct {
	Version   int       `msgpack:"version"`
	Key       string    `msgpack:"key"`
	CreatedAt time.Time `msgpack:"created_at"`
	Payload   any       `msgpack:"payload"`
}

// Store persists encoded values under a cache directory, one file per key.
// Entries are logically immutable once written; they leave the namespace
// only through Clear/ClearAll or corruption quarantine. A Store performs no
// cross-process coordination: concurrent writers of one key race toward the
// same value, and a torn read is converted into a quarantined miss.
type Store struct {
	dir        string
	serializer *codec.Serializer
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSerializer sets the serializer used to encode and decode payloads.
// Pass a serializer whose registry knows the record types you cache.
func WithSerializer(s *codec.Serializer) Option {
	return func(st *Store) {
		if s != nil {
			st.serializer = s
		}
	}
}

// WithLogger enables best-effort warnings (quarantine deletions that fail,
// unremovable files during clear). A nil logger keeps the store silent.
func WithLogger(l *slog.Logger) Option {
	return func(st *Store) { st.logger = l }
}

// NewStore ensures cfg.Dir exists as a directory and returns a store scoped
// to it. It fails with ConfigError when the path exists and is not a
// directory, or when the directory cannot be created.
func NewStore(cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if info, err := os.Stat(cfg.Dir); err == nil && !info.IsDir() {
		return nil, &ConfigError{
			Field:   "Dir",
			Message: fmt.Sprintf("%q exists and is not a directory", cfg.Dir),
		}
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, &ConfigError{
			Field:   "Dir",
			Message: fmt.Sprintf("cannot create %q: %v", cfg.Dir, err),
		}
	}

	st := &Store{dir: cfg.Dir, serializer: codec.New(nil)}
	for _, opt := range opts {
		opt(st)
	}
	return st, nil
}

// Dir returns the directory owning this store's namespace.
func (s *Store) Dir() string { return s.dir }

// Serializer exposes the payload serializer so callers can register record
// types on its registry.
func (s *Store) Serializer() *codec.Serializer { return s.serializer }

// Get looks up the entry for key. An absent file is a miss, not an error.
// A present file that fails to decode is deleted best-effort and reported
// as OutcomeCorrupted with a CorruptionError.
func (s *Store) Get(key string) (Result, error) {
	env, res, err := s.readEnvelope(key)
	if err != nil || res.Outcome != OutcomeHit {
		return res, err
	}
	value, err := s.serializer.Decode(env.Payload)
	if err != nil {
		return s.quarantine(key, err)
	}
	res.Value = value
	return res, nil
}

// GetInto is Get with a typed destination: on a hit the payload is decoded
// into dst, which must be a non-nil pointer. Result.Value stays nil.
func (s *Store) GetInto(key string, dst any) (Result, error) {
	env, res, err := s.readEnvelope(key)
	if err != nil || res.Outcome != OutcomeHit {
		return res, err
	}
	if err := s.serializer.DecodeInto(env.Payload, dst); err != nil {
		return s.quarantine(key, err)
	}
	return res, nil
}

// Set encodes value and writes it to the entry file for key, replacing any
// prior content. Encode and I/O failures surface as WriteError; they must
// never abort the computation that produced value.
func (s *Store) Set(key string, value any) error {
	encoded, err := s.serializer.Encode(value)
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	env := envelope{
		Version:   envelopeVersion,
		Key:       key,
		CreatedAt: time.Now().UTC(),
		Payload:   encoded,
	}
	data, err := msgpack.Marshal(&env)
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	if err := os.WriteFile(s.entryPath(key), data, 0o644); err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}

// Delete removes the entry for key, if present.
func (s *Store) Delete(key string) error {
	if err := os.Remove(s.entryPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear deletes every entry whose key was derived for callName. Individual
// deletion failures are swallowed so one unremovable file never blocks the
// rest.
func (s *Store) Clear(callName string) error {
	prefix := KeyPrefix(callName)
	return s.clearMatching(func(name string) bool {
		return strings.HasPrefix(name, prefix)
	})
}

// ClearAll deletes every entry in the namespace, with the same best-effort
// per-file semantics as Clear.
func (s *Store) ClearAll() error {
	return s.clearMatching(func(string) bool { return true })
}

// Size sums the byte length of every entry file in the namespace.
// Inaccessible files are skipped rather than failing the whole operation.
func (s *Store) Size() (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), entryExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func (s *Store) entryPath(key string) string {
	return filepath.Join(s.dir, key+entryExt)
}

func (s *Store) readEnvelope(key string) (*envelope, Result, error) {
	path := s.entryPath(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, Result{Outcome: OutcomeMiss}, nil
	}
	if err != nil {
		res, qerr := s.quarantine(key, err)
		return nil, res, qerr
	}

	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		res, qerr := s.quarantine(key, err)
		return nil, res, qerr
	}
	if env.Version != envelopeVersion {
		res, qerr := s.quarantine(key, fmt.Errorf("unknown envelope version %d", env.Version))
		return nil, res, qerr
	}
	if env.Key != key {
		res, qerr := s.quarantine(key, fmt.Errorf("envelope key %q does not match entry file", env.Key))
		return nil, res, qerr
	}

	return &env, Result{Outcome: OutcomeHit, CreatedAt: env.CreatedAt}, nil
}

// quarantine deletes a corrupted entry file (best-effort, secondary failures
// swallowed) and reports the corruption. The entry never transitions back to
// present except through a fresh Set.
func (s *Store) quarantine(key string, cause error) (Result, error) {
	path := s.entryPath(key)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logw("could not remove corrupted cache file", "path", path, "error", err)
	}
	return Result{Outcome: OutcomeCorrupted}, &CorruptionError{Path: path, Err: cause}
}

func (s *Store) clearMatching(match func(name string) bool) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, entryExt) || !match(name) {
			continue
		}
		path := filepath.Join(s.dir, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logw("could not remove cache file", "path", path, "error", err)
		}
	}
	return nil
}

func (s *Store) logw(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
