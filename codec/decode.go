package codec

import (
	"math"
	"reflect"
	"strconv"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// Decode reconstructs a value from its encoded form. Primitives and
// circular-reference markers pass through unchanged; sequences and mappings
// are decoded recursively; tagged records are resolved through the registry
// and fail with SerializationError when the type name is unknown.
//
// For acyclic values whose record types are registered,
// Decode(Encode(v)) reproduces a value equal to v.
func (s *Serializer) Decode(encoded any) (any, error) {
	encoded = normalize(encoded)

	switch x := encoded.(type) {
	case nil, bool, int64, uint64, float64, string:
		return x, nil

	case []any:
		out := make([]any, len(x))
		for i, elem := range x {
			dec, err := s.Decode(elem)
			if err != nil {
				return nil, err
			}
			out[i] = dec
		}
		return out, nil

	case map[string]any:
		if name, kind, ok := recordTag(x); ok {
			return s.decodeRecord(name, kind, x)
		}
		out := make(map[string]any, len(x))
		for k, v := range x {
			dec, err := s.Decode(v)
			if err != nil {
				return nil, err
			}
			out[k] = dec
		}
		return out, nil
	}

	return nil, serializationErrorf("codec: cannot decode value of type %T", encoded)
}

// DecodeInto decodes an encoded form into a typed destination, restoring
// exact field and element types. dst must be a non-nil pointer.
func (s *Serializer) DecodeInto(encoded any, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return serializationErrorf("codec: decode destination must be a non-nil pointer, got %T", dst)
	}
	return s.decodeInto(encoded, rv.Elem())
}

// normalize collapses the scalar and container variants different transports
// produce into the canonical encoded-form shapes, so decoding does not
// depend on which wire format carried the tree.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return normalizeUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return normalizeUint(x)
	case float32:
		return float64(x)
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			ks, ok := k.(string)
			if !ok {
				ks = scalarKeyString(k)
			}
			out[ks] = val
		}
		return out
	}
	return v
}

func normalizeUint(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

func scalarKeyString(k any) string {
	switch x := normalize(k).(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return ""
}

func recordTag(m map[string]any) (name, kind string, ok bool) {
	k, ok := m[kindKey].(string)
	if !ok || (k != kindRecord && k != kindObject) {
		return "", "", false
	}
	n, ok := m[typeKey].(string)
	if !ok || n == "" {
		return "", "", false
	}
	if _, ok := m[fieldsKey]; !ok {
		return "", "", false
	}
	return n, k, true
}

func (s *Serializer) decodeRecord(name, kind string, m map[string]any) (any, error) {
	t, ok := s.registry.Lookup(name)
	if !ok {
		return nil, serializationErrorf("codec: failed to deserialize record: type %q is not registered", name)
	}
	fields, ok := normalize(m[fieldsKey]).(map[string]any)
	if !ok {
		return nil, serializationErrorf("codec: malformed record encoding for %q", name)
	}

	inst := reflect.New(t)
	if err := s.decodeFields(fields, inst.Elem()); err != nil {
		return nil, err
	}
	if kind == kindObject {
		return inst.Interface(), nil
	}
	return inst.Elem().Interface(), nil
}

func (s *Serializer) decodeFields(fields map[string]any, dst reflect.Value) error {
	t := dst.Type()
	for name, raw := range fields {
		f, ok := t.FieldByName(name)
		if !ok || !f.IsExported() {
			return serializationErrorf("codec: type %s has no field %q", t, name)
		}
		if err := s.decodeInto(raw, dst.FieldByIndex(f.Index)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) decodeInto(encoded any, dst reflect.Value) error {
	encoded = normalize(encoded)

	if encoded == nil {
		dst.SetZero()
		return nil
	}

	switch dst.Kind() {
	case reflect.Interface:
		dec, err := s.Decode(encoded)
		if err != nil {
			return err
		}
		dv := reflect.ValueOf(dec)
		if !dv.Type().AssignableTo(dst.Type()) {
			return serializationErrorf("codec: cannot assign %T to %s", dec, dst.Type())
		}
		dst.Set(dv)
		return nil

	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return s.decodeInto(encoded, dst.Elem())
	}

	switch x := encoded.(type) {
	case bool:
		if dst.Kind() != reflect.Bool {
			return decodeMismatch(x, dst)
		}
		dst.SetBool(x)
		return nil

	case int64:
		return setIntScalar(dst, x)

	case uint64:
		switch dst.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if dst.OverflowUint(x) {
				return serializationErrorf("codec: value %d overflows %s", x, dst.Type())
			}
			dst.SetUint(x)
			return nil
		case reflect.Float32, reflect.Float64:
			dst.SetFloat(float64(x))
			return nil
		}
		return decodeMismatch(x, dst)

	case float64:
		switch dst.Kind() {
		case reflect.Float32, reflect.Float64:
			dst.SetFloat(x)
			return nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			// Tolerate integral floats: text transports render 5 and 5.0 alike.
			if x == math.Trunc(x) && !dst.OverflowInt(int64(x)) {
				dst.SetInt(int64(x))
				return nil
			}
		}
		return decodeMismatch(x, dst)

	case string:
		if dst.Type() == timeType {
			t, err := time.Parse(time.RFC3339Nano, x)
			if err != nil {
				return serializationErrorf("codec: cannot parse %q as time.Time", x)
			}
			dst.Set(reflect.ValueOf(t))
			return nil
		}
		if dst.Kind() != reflect.String {
			return decodeMismatch(x, dst)
		}
		dst.SetString(x)
		return nil

	case []any:
		return s.decodeSequenceInto(x, dst)

	case map[string]any:
		return s.decodeMappingInto(x, dst)
	}

	return serializationErrorf("codec: cannot decode value of type %T into %s", encoded, dst.Type())
}

func (s *Serializer) decodeSequenceInto(x []any, dst reflect.Value) error {
	switch dst.Kind() {
	case reflect.Slice:
		out := reflect.MakeSlice(dst.Type(), len(x), len(x))
		for i, elem := range x {
			if err := s.decodeInto(elem, out.Index(i)); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	case reflect.Array:
		if dst.Len() != len(x) {
			return serializationErrorf("codec: sequence of length %d does not fit %s", len(x), dst.Type())
		}
		for i, elem := range x {
			if err := s.decodeInto(elem, dst.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return decodeMismatch(x, dst)
}

func (s *Serializer) decodeMappingInto(x map[string]any, dst reflect.Value) error {
	if name, kind, tagged := recordTag(x); tagged {
		if dst.Kind() == reflect.Struct {
			fields, ok := normalize(x[fieldsKey]).(map[string]any)
			if !ok {
				return serializationErrorf("codec: malformed record encoding for %q", name)
			}
			return s.decodeFields(fields, dst)
		}
		dec, err := s.decodeRecord(name, kind, x)
		if err != nil {
			return err
		}
		dv := reflect.ValueOf(dec)
		if !dv.Type().AssignableTo(dst.Type()) {
			return serializationErrorf("codec: cannot assign record %q to %s", name, dst.Type())
		}
		dst.Set(dv)
		return nil
	}

	switch dst.Kind() {
	case reflect.Struct:
		return s.decodeFields(x, dst)
	case reflect.Map:
		out := reflect.MakeMapWithSize(dst.Type(), len(x))
		for k, v := range x {
			key, err := decodeMapKey(k, dst.Type().Key())
			if err != nil {
				return err
			}
			val := reflect.New(dst.Type().Elem()).Elem()
			if err := s.decodeInto(v, val); err != nil {
				return err
			}
			out.SetMapIndex(key, val)
		}
		dst.Set(out)
		return nil
	}
	return decodeMismatch(x, dst)
}

// decodeMapKey restores a canonicalized string key to the destination map's
// key type.
func decodeMapKey(raw string, kt reflect.Type) (reflect.Value, error) {
	out := reflect.New(kt).Elem()
	switch kt.Kind() {
	case reflect.String:
		out.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || out.OverflowInt(n) {
			return out, serializationErrorf("codec: cannot parse mapping key %q as %s", raw, kt)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || out.OverflowUint(n) {
			return out, serializationErrorf("codec: cannot parse mapping key %q as %s", raw, kt)
		}
		out.SetUint(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return out, serializationErrorf("codec: cannot parse mapping key %q as %s", raw, kt)
		}
		out.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return out, serializationErrorf("codec: cannot parse mapping key %q as %s", raw, kt)
		}
		out.SetFloat(f)
	default:
		return out, serializationErrorf("codec: unsupported mapping key type %s", kt)
	}
	return out, nil
}

func setIntScalar(dst reflect.Value, x int64) error {
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if dst.OverflowInt(x) {
			return serializationErrorf("codec: value %d overflows %s", x, dst.Type())
		}
		dst.SetInt(x)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if x < 0 || dst.OverflowUint(uint64(x)) {
			return serializationErrorf("codec: value %d overflows %s", x, dst.Type())
		}
		dst.SetUint(uint64(x))
		return nil
	case reflect.Float32, reflect.Float64:
		dst.SetFloat(float64(x))
		return nil
	}
	return decodeMismatch(x, dst)
}

func decodeMismatch(encoded any, dst reflect.Value) error {
	return serializationErrorf("codec: cannot decode %T into %s", encoded, dst.Type())
}
