package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeMismatch is matched by every decode failure: the bytes are not the
	// encoding of the requested type.
	ErrTypeMismatch = errors.New("encoded value does not match the requested type")

	// ErrUnsupportedType is returned when asked to encode or decode a Go type
	// outside the supported set.
	ErrUnsupportedType = errors.New("unsupported value type")
)

// DecodeError describes where and why decoding stopped.
type DecodeError struct {
	Type   string // Kind being read when decoding failed
	Offset int    // Byte offset into the input
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s at offset %d: %s", e.Type, e.Offset, e.Reason)
}

// Unwrap lets errors.Is(err, ErrTypeMismatch) hold for every DecodeError.
func (e *DecodeError) Unwrap() error {
	return ErrTypeMismatch
}
