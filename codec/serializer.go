package codec

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Reserved keys in the encoded form of a record.
const (
	kindKey   = "kind"
	typeKey   = "type"
	fieldsKey = "fields"

	kindRecord = "record"
	kindObject = "object"
)

// circularRefPrefix opens the marker emitted in place of a subtree that
// refers back to one of its ancestors.
const circularRefPrefix = "<circular reference to "

func circularRefMarker(t reflect.Type) string {
	return circularRefPrefix + t.String() + ">"
}

// IsCircularRefMarker reports whether a string stands in for a cyclic
// subtree that was cut during encoding. Markers survive decoding unchanged;
// the cycle is not reconstructible.
func IsCircularRefMarker(s string) bool {
	return strings.HasPrefix(s, circularRefPrefix)
}

// Serializer converts values between their native representation and the
// encoded form. It owns no state beyond the registry used for record
// reconstruction; Encode and Decode are pure with respect to their inputs
// and safe for concurrent use.
type Serializer struct {
	registry *Registry
}

// New creates a Serializer backed by the given registry. A nil registry
// yields a serializer that can encode anything but decode no records.
func New(registry *Registry) *Serializer {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Serializer{registry: registry}
}

// Registry returns the registry used for record reconstruction, so callers
// can register their types on a serializer they did not construct.
func (s *Serializer) Registry() *Registry { return s.registry }

// Encode converts v into the encoded form. Values reachable through
// pointers, slices and maps are cycle-checked against their ancestors on the
// current traversal path: a back edge is replaced by a circular-reference
// marker, while the same value appearing in sibling positions is encoded
// fully each time.
func (s *Serializer) Encode(v any) (any, error) {
	return s.encode(v, make(map[uintptr]struct{}))
}

func (s *Serializer) encode(v any, visiting map[uintptr]struct{}) (any, error) {
	if v == nil {
		return nil, nil
	}
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return int64(u), nil
		}
		return u, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil

	case reflect.Func:
		return nil, serializationErrorf("codec: functions cannot be serialized")

	case reflect.Pointer:
		return s.encodePointer(rv, visiting)

	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		id := rv.Pointer()
		if _, ok := visiting[id]; ok {
			return circularRefMarker(rv.Type()), nil
		}
		visiting[id] = struct{}{}
		defer delete(visiting, id)
		return s.encodeSequence(rv, visiting)

	case reflect.Array:
		return s.encodeSequence(rv, visiting)

	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		id := rv.Pointer()
		if _, ok := visiting[id]; ok {
			return circularRefMarker(rv.Type()), nil
		}
		visiting[id] = struct{}{}
		defer delete(visiting, id)
		return s.encodeMapping(rv, visiting)

	case reflect.Struct:
		return s.encodeRecord(rv, kindRecord, visiting)
	}

	return nil, serializationErrorf("codec: unable to serialize value of type %s", rv.Type())
}

func (s *Serializer) encodePointer(rv reflect.Value, visiting map[uintptr]struct{}) (any, error) {
	if rv.IsNil() {
		return nil, nil
	}
	id := rv.Pointer()
	if _, ok := visiting[id]; ok {
		return circularRefMarker(rv.Type().Elem()), nil
	}
	visiting[id] = struct{}{}
	defer delete(visiting, id)

	elem := rv.Elem()
	if elem.Kind() == reflect.Struct {
		if t, ok := elem.Interface().(time.Time); ok {
			return t.UTC().Format(time.RFC3339Nano), nil
		}
		return s.encodeRecord(elem, kindObject, visiting)
	}
	return s.encode(elem.Interface(), visiting)
}

func (s *Serializer) encodeSequence(rv reflect.Value, visiting map[uintptr]struct{}) (any, error) {
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		enc, err := s.encode(rv.Index(i).Interface(), visiting)
		if err != nil {
			return nil, err
		}
		out[i] = enc
	}
	return out, nil
}

func (s *Serializer) encodeMapping(rv reflect.Value, visiting map[uintptr]struct{}) (any, error) {
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, err := s.encodeMapKey(iter.Key(), visiting)
		if err != nil {
			return nil, err
		}
		val, err := s.encode(iter.Value().Interface(), visiting)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

// encodeMapKey canonicalizes a mapping key to its string rendering. Scalar
// keys only: a key that encodes to a sequence, mapping or record has no
// stable string form.
func (s *Serializer) encodeMapKey(kv reflect.Value, visiting map[uintptr]struct{}) (string, error) {
	enc, err := s.encode(kv.Interface(), visiting)
	if err != nil {
		return "", err
	}
	switch k := enc.(type) {
	case string:
		return k, nil
	case bool:
		return strconv.FormatBool(k), nil
	case int64:
		return strconv.FormatInt(k, 10), nil
	case uint64:
		return strconv.FormatUint(k, 10), nil
	case float64:
		return strconv.FormatFloat(k, 'g', -1, 64), nil
	}
	return "", serializationErrorf("codec: unsupported mapping key type %s", kv.Type())
}

func (s *Serializer) encodeRecord(rv reflect.Value, kind string, visiting map[uintptr]struct{}) (any, error) {
	t := rv.Type()

	fields := make(map[string]any)
	exported := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		exported++
		enc, err := s.encode(rv.Field(i).Interface(), visiting)
		if err != nil {
			return nil, err
		}
		fields[f.Name] = enc
	}

	// Anonymous structs carry no reconstructible identity; their field set
	// is encoded as a plain mapping instead of a tagged record.
	if t.Name() == "" {
		return fields, nil
	}

	if exported == 0 && t.NumField() > 0 {
		return nil, serializationErrorf("codec: unable to serialize value of type %s: no exported fields", t)
	}

	return map[string]any{
		kindKey:   kind,
		typeKey:   qualifiedName(t),
		fieldsKey: fields,
	}, nil
}
