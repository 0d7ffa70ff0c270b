/*
Package codec implements the opaque value encoding used for attribute values.

Values are written in a fixed little-endian layout compatible with the
encoding produced by earlier deployments of the directory:

  - int64: 8 bytes, little-endian two's complement
  - string and byte strings: uint64 length (little-endian) followed by the bytes
  - timestamps: the naive ISO-8601 text of the UTC wall clock, encoded as a string
    (years outside 0000-9999 are signed, e.g. +10000-01-01T00:00:00)

No type tag is stored. A value can only be decoded by a caller that already
knows its type, and decoding fails with ErrTypeMismatch when the bytes cannot
be the encoding of the requested type. Every byte of the input must be
consumed; trailing data is a mismatch too.

# Thread Safety

Marshal and Unmarshal are pure functions. Encoder and Decoder values are not
safe for concurrent use.
*/
package codec
