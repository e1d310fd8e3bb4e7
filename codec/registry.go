package codec

import (
	"reflect"
	"sync"
)

// Registry maps fully-qualified type names to the struct types used to
// reconstruct records during decoding. Calling code registers every record
// type it wants to round-trip; decoding a name that was never registered
// fails with SerializationError instead of relying on ambient reflection.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewRegistry creates an empty type registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]reflect.Type)}
}

// Register records the concrete struct type of each sample under its
// fully-qualified name (package path plus type name). Pointer samples are
// dereferenced, so Register(&User{}) and Register(User{}) are equivalent.
func (r *Registry) Register(samples ...any) error {
	for _, sample := range samples {
		t := structTypeOf(sample)
		if t == nil {
			return serializationErrorf("codec: cannot register non-struct type %T", sample)
		}
		if t.Name() == "" {
			return serializationErrorf("codec: cannot register unnamed type %s", t)
		}
		r.put(qualifiedName(t), t)
	}
	return nil
}

// RegisterName records the sample's struct type under an explicit name,
// overriding the derived fully-qualified name. Useful when decoding data
// written by a build with a different package path.
func (r *Registry) RegisterName(name string, sample any) error {
	if name == "" {
		return serializationErrorf("codec: registered name must not be empty")
	}
	t := structTypeOf(sample)
	if t == nil {
		return serializationErrorf("codec: cannot register non-struct type %T", sample)
	}
	r.put(name, t)
	return nil
}

// Lookup resolves a registered type name.
func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

func (r *Registry) put(name string, t reflect.Type) {
	r.mu.Lock()
	r.types[name] = t
	r.mu.Unlock()
}

func structTypeOf(sample any) reflect.Type {
	t := reflect.TypeOf(sample)
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

func qualifiedName(t reflect.Type) string {
	return t.PkgPath() + "." + t.Name()
}
