/*
Package domain defines the values and records of the user/group directory.

# Value Types

  - UUID: stable identifier derived from a name and a creation date, or parsed
    from external text
  - UserID: case-insensitive login identifier, stored lowercased
  - JpegPhoto: image bytes validated as JPEG when the value is built
  - AttributeType: closed enumeration of attribute value kinds
  - Serialized: encoded attribute value, decoded with a caller-supplied type

# Records

User, Group, GroupDetails and UserAndGroups are plain snapshots. Changing a
record means building a new one; the With* helpers return modified copies and
Clone makes deep copies of the owned slices.

# Validation

Constructors that accept external input return *ValidationError, which
matches ErrInvalidIdentifier, ErrInvalidImage, ErrInvalidEncoding,
ErrUnknownAttributeType or ErrInvalidValue through errors.Is. Decoding a
Serialized value with the wrong type returns an error matching
codec.ErrTypeMismatch. Only MustDecode and Expect panic, for values whose type
is already known from their schema.

# Persistence

Every value type implements driver.Valuer and sql.Scanner:

	UUID          fixed-length string (36)
	UserID        string, integer sources rejected
	GroupID       integer
	Serialized    binary
	JpegPhoto     binary, the empty photo stored as NULL
	AttributeType string (up to 64), validated on every read

Values read back through Scan go through the same validation as their
constructors.

# Thread Safety

All values are immutable after construction and safe for concurrent use.
Records are safe to share as long as no holder mutates their slices in place.
*/
package domain
