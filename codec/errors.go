package codec

import "fmt"

// SerializationError reports a value that could not be converted to or from
// the encoded form: an unsupported type on encode, or an unresolvable or
// malformed record on decode.
type SerializationError struct {
	Msg string
	Err error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Unwrap exposes the underlying cause, if any.
func (e *SerializationError) Unwrap() error { return e.Err }

func serializationErrorf(format string, args ...any) *SerializationError {
	return &SerializationError{Msg: fmt.Sprintf(format, args...)}
}
