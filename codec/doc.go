// Package codec converts arbitrary Go values into a canonical encoded form
// and reconstructs them from it.
//
// # Encoded Form
//
// The encoded form is a tree built from five shapes only:
//
//   - primitives: nil, bool, int64, uint64, float64, string
//   - sequences: []any
//   - mappings: map[string]any with canonicalized string keys
//
// Structs are encoded as a tagged mapping carrying a "kind" discriminator
// ("record" for struct values, "object" for pointers to structs), the type's
// fully-qualified name, and a "fields" mapping of the exported field data.
// A subtree that refers back to one of its ancestors is replaced by a marker
// string naming the cyclic type; the marker is not resolvable back into
// the cycle.
//
// Because the encoded form contains nothing but plain primitives, sequences
// and mappings, it can be rendered to a deterministic text form for hashing
// and handed to any self-describing wire format for storage.
//
// # Record Reconstruction
//
// Decoding a record requires mapping its fully-qualified name back to a Go
// type. The Registry holds that mapping explicitly: calling code registers
// every struct type it wants to round-trip, and decoding an unregistered
// name fails with SerializationError rather than guessing from ambient
// reflection. Reconstruction always goes through a freshly allocated value
// with fields assigned one by one; there is no uninitialized construction.
//
// # Usage
//
//	reg := codec.NewRegistry()
//	_ = reg.Register(Invoice{})
//
//	s := codec.New(reg)
//	encoded, err := s.Encode(Invoice{Number: 42})
//	// ...persist encoded...
//	back, err := s.Decode(encoded) // back is an Invoice
//
// For statically-typed destinations, DecodeInto restores exact element and
// field types (numeric widths, typed slices and maps, nested structs):
//
//	var inv Invoice
//	err := s.DecodeInto(encoded, &inv)
//
// # Unsupported Values
//
// Functions and channels cannot be serialized and fail with
// SerializationError, as does any value that is neither a primitive, a
// sequence, a mapping, nor a struct with at least one exported field.
package codec
