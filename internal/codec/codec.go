package codec

import (
	"encoding/binary"
	"fmt"
	"time"
	"unicode/utf8"
)

// Int64Len is the encoded size of an int64.
const Int64Len = 8

// lengthPrefixLen is the size of the length prefix written before strings and byte strings.
const lengthPrefixLen = 8

// Marshal encodes v. Supported types are string, int64, []byte and time.Time.
func Marshal(v any) ([]byte, error) {
	e := NewEncoder()

	switch x := v.(type) {
	case string:
		e.PutString(x)
	case int64:
		e.PutInt64(x)
	case []byte:
		e.PutBytes(x)
	case time.Time:
		e.PutTimestamp(x)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}

	return e.Bytes(), nil
}

// Unmarshal decodes data into v, which must be a pointer to one of the types
// supported by Marshal. The whole input must be consumed.
func Unmarshal(data []byte, v any) error {
	d := NewDecoder(data)

	switch x := v.(type) {
	case *string:
		s, err := d.ReadString()
		if err != nil {
			return err
		}
		*x = s
	case *int64:
		i, err := d.ReadInt64()
		if err != nil {
			return err
		}
		*x = i
	case *[]byte:
		b, err := d.ReadBytes()
		if err != nil {
			return err
		}
		*x = b
	case *time.Time:
		t, err := d.ReadTimestamp()
		if err != nil {
			return err
		}
		*x = t
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}

	return d.Finish()
}

// Encoder appends encoded values to an internal buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// PutUint64 appends v as 8 little-endian bytes.
func (e *Encoder) PutUint64(v uint64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// PutInt64 appends v as 8 little-endian bytes.
func (e *Encoder) PutInt64(v int64) {
	e.PutUint64(uint64(v))
}

// PutBytes appends a length-prefixed byte string.
func (e *Encoder) PutBytes(b []byte) {
	e.PutUint64(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

// PutString appends a length-prefixed string.
func (e *Encoder) PutString(s string) {
	e.PutUint64(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// PutTimestamp appends t as its naive UTC text.
func (e *Encoder) PutTimestamp(t time.Time) {
	e.PutString(FormatTimestamp(t))
}

// Bytes returns the encoded data. The encoder must not be used afterwards.
func (e *Encoder) Bytes() []byte {
	if e.buf == nil {
		return []byte{}
	}
	return e.buf
}

// Decoder reads encoded values from a byte slice.
type Decoder struct {
	data []byte
	off  int
	kind string
}

// NewDecoder creates a decoder over data. The slice is not copied.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data, kind: "value"}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.off
}

// ReadUint64 reads 8 little-endian bytes.
func (d *Decoder) ReadUint64() (uint64, error) {
	if d.Remaining() < Int64Len {
		return 0, d.fail("need %d bytes, have %d", Int64Len, d.Remaining())
	}
	v := binary.LittleEndian.Uint64(d.data[d.off:])
	d.off += Int64Len
	return v, nil
}

// ReadInt64 reads an 8-byte little-endian signed integer.
func (d *Decoder) ReadInt64() (int64, error) {
	d.kind = "int64"
	v, err := d.ReadUint64()
	return int64(v), err
}

// ReadBytes reads a length-prefixed byte string and returns a copy of it.
func (d *Decoder) ReadBytes() ([]byte, error) {
	d.kind = "bytes"
	raw, err := d.readPrefixed()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

// ReadString reads a length-prefixed string. The content must be valid UTF-8.
func (d *Decoder) ReadString() (string, error) {
	d.kind = "string"
	start := d.off
	raw, err := d.readPrefixed()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		d.off = start
		return "", d.fail("invalid UTF-8")
	}
	return string(raw), nil
}

// ReadTimestamp reads a timestamp written by PutTimestamp.
func (d *Decoder) ReadTimestamp() (time.Time, error) {
	start := d.off
	s, err := d.ReadString()
	if err != nil {
		return time.Time{}, err
	}
	d.kind = "timestamp"
	t, err := ParseTimestamp(s)
	if err != nil {
		d.off = start
		return time.Time{}, d.fail("%v", err)
	}
	return t, nil
}

// Finish reports an error if any input is left unread.
func (d *Decoder) Finish() error {
	if n := d.Remaining(); n > 0 {
		return d.fail("%d trailing bytes", n)
	}
	return nil
}

func (d *Decoder) readPrefixed() ([]byte, error) {
	if d.Remaining() < lengthPrefixLen {
		return nil, d.fail("need %d-byte length prefix, have %d bytes", lengthPrefixLen, d.Remaining())
	}
	n := binary.LittleEndian.Uint64(d.data[d.off:])
	if n > uint64(d.Remaining()-lengthPrefixLen) {
		return nil, d.fail("length %d exceeds remaining %d bytes", n, d.Remaining()-lengthPrefixLen)
	}
	start := d.off + lengthPrefixLen
	end := start + int(n)
	d.off = end
	return d.data[start:end], nil
}

func (d *Decoder) fail(format string, args ...any) error {
	return &DecodeError{
		Type:   d.kind,
		Offset: d.off,
		Reason: fmt.Sprintf(format, args...),
	}
}
