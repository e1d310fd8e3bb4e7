package cache

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/goliatone/go-persistent-cache/codec"
)

// KeySeparator joins the call name and the argument digest in a cache key.
const KeySeparator = "_"

// KeyPrefix returns the prefix shared by every key derived for callName,
// used for selective clearing.
func KeyPrefix(callName string) string {
	return callName + KeySeparator
}

// KeyDeriver builds a stable cache key from a call name and its argument
// values. Structurally equal arguments must always yield the same key;
// any difference in argument structure must, with overwhelming probability,
// yield a different one.
type KeyDeriver interface {
	DeriveKey(callName string, args []any, kwargs map[string]any) (string, error)
}

// defaultKeyDeriver hashes the canonical rendering of the encoded argument
// tuple. The digest is a 64-bit xxhash written as 16 hex characters, so keys
// look like "Multiply_9a1f3c5d7e2b4a60".
type defaultKeyDeriver struct {
	serializer *codec.Serializer
}

// NewKeyDeriver creates the default key deriver. A nil serializer gets a
// fresh one; pass the store's serializer when record arguments are in play
// so both sides share one registry.
func NewKeyDeriver(serializer *codec.Serializer) KeyDeriver {
	if serializer == nil {
		serializer = codec.New(nil)
	}
	return &defaultKeyDeriver{serializer: serializer}
}

// DeriveKey encodes the (args, kwargs) pair, renders the encoded form to
// canonical text and digests it. The JSON rendering sorts mapping keys, so
// insertion order never leaks into the key; sequence order is significant
// and does.
// Unserializable arguments propagate codec.SerializationError.
func (d *defaultKeyDeriver) DeriveKey(callName string, args []any, kwargs map[string]any) (string, error) {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	encoded, err := d.serializer.Encode([]any{args, kwargs})
	if err != nil {
		return "", err
	}

	canonical, err := json.Marshal(encoded)
	if err != nil {
		return "", &codec.SerializationError{
			Msg: fmt.Sprintf("cache: cannot render canonical form for %q", callName),
			Err: err,
		}
	}

	return fmt.Sprintf("%s%s%016x", callName, KeySeparator, xxhash.Sum64(canonical)), nil
}
