package domain

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/fgardt/lldap/internal/codec"
)

// Encodable lists the value kinds an attribute can carry.
type Encodable interface {
	string | int64 | []byte | time.Time | JpegPhoto
}

// Serialized is an encoded attribute value. The bytes carry no type tag: the
// reader must know which type to decode into, normally from the attribute's
// AttributeType. The bytes are held in a string so the value is immutable and
// comparable with ==.
type Serialized struct {
	data string
}

// Serialize encodes v. Encoding a supported kind cannot fail; a failure
// indicates a bug in the codec and panics.
func Serialize[T Encodable](v T) Serialized {
	var raw any = v
	if photo, ok := raw.(JpegPhoto); ok {
		raw = []byte(photo.data)
	}

	encoded, err := codec.Marshal(raw)
	if err != nil {
		panic(fmt.Sprintf("domain: serializing %T: %v", v, err))
	}
	return Serialized{data: string(encoded)}
}

// SerializedFromBytes wraps bytes read back from storage or transport. The
// bytes are copied and not interpreted.
func SerializedFromBytes(b []byte) Serialized {
	return Serialized{data: string(b)}
}

// Decode decodes s as a T. The error matches codec.ErrTypeMismatch when the
// bytes are not an encoding of T, and ErrInvalidImage when T is JpegPhoto and
// the embedded bytes are not a valid image.
func Decode[T Encodable](s Serialized) (T, error) {
	var out T

	switch target := any(&out).(type) {
	case *JpegPhoto:
		var raw []byte
		if err := codec.Unmarshal([]byte(s.data), &raw); err != nil {
			return out, err
		}
		photo, err := NewJpegPhoto(raw)
		if err != nil {
			return out, err
		}
		*target = photo
	default:
		if err := codec.Unmarshal([]byte(s.data), target); err != nil {
			return out, err
		}
	}

	return out, nil
}

// MustDecode decodes a value whose type is known to be correct, such as one
// read under its schema's AttributeType. A mismatch is an internal
// inconsistency and panics.
func MustDecode[T Encodable](s Serialized) T {
	return Expect[T](s, "serialized value has unexpected type")
}

// Expect is MustDecode with a caller-supplied panic message.
func Expect[T Encodable](s Serialized, message string) T {
	v, err := Decode[T](s)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", message, err))
	}
	return v
}

// Bytes returns a copy of the encoded bytes.
func (s Serialized) Bytes() []byte {
	return []byte(s.data)
}

// Len returns the encoded size in bytes.
func (s Serialized) Len() int {
	return len(s.data)
}

// Render returns a best-effort readable form of the value for logs and tests:
// the text if the bytes decode as a string, otherwise the decimal value if they
// are exactly an int64, otherwise a fingerprint of the raw bytes. It never fails.
func (s Serialized) Render() string {
	if text, err := Decode[string](s); err == nil {
		return text
	}

	if len(s.data) == codec.Int64Len {
		if i, err := Decode[int64](s); err == nil {
			return strconv.FormatInt(i, 10)
		}
	}

	return fmt.Sprintf("hash: 0x%016X", xxhash.Sum64String(s.data))
}

// String implements fmt.Stringer using Render.
func (s Serialized) String() string {
	return fmt.Sprintf("Serialized(%q)", s.Render())
}

// Value implements driver.Valuer for a binary column.
func (s Serialized) Value() (driver.Value, error) {
	return []byte(s.data), nil
}

// Scan implements sql.Scanner.
func (s *Serialized) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		*s = SerializedFromBytes(v)
		return nil
	case nil:
		*s = Serialized{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Serialized", src)
	}
}
