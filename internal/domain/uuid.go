package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fgardt/lldap/internal/codec"
)

// UUIDStringLength is the length of the canonical hyphenated form, and the
// width of the storage column.
const UUIDStringLength = 36

// UUID is the stable identifier of a user or group, held in canonical
// lowercase hyphenated form. The zero value is the empty identifier and is
// never produced by the constructors.
type UUID struct {
	value string
}

// UUIDFromNameAndDate derives a name-based (version 3, X.500 namespace) UUID
// from name followed by the RFC 3339 form of the creation date in UTC.
// Identical inputs always produce the identical UUID.
func UUIDFromNameAndDate(name string, creationDate time.Time) UUID {
	data := make([]byte, 0, len(name)+32)
	data = append(data, name...)
	data = append(data, codec.FormatRFC3339(creationDate)...)

	return UUID{value: uuid.NewMD5(uuid.NameSpaceX500, data).String()}
}

// ParseUUID validates s as UUID text and returns it in canonical form.
// Hyphenated, compact, braced and urn:uuid: inputs are accepted, in any case.
func ParseUUID(s string) (UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, newValidationError(KindInvalidIdentifier, "uuid", s, err)
	}
	return UUID{value: parsed.String()}, nil
}

// MustParseUUID is like ParseUUID but panics on invalid input. Intended for
// constants and tests.
func MustParseUUID(s string) UUID {
	u, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// String returns the canonical lowercase hyphenated form.
func (u UUID) String() string {
	return u.value
}

// IsZero reports whether u is the zero value.
func (u UUID) IsZero() bool {
	return u.value == ""
}

// MarshalText implements encoding.TextMarshaler.
func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, validating the input.
func (u *UUID) UnmarshalText(text []byte) error {
	parsed, err := ParseUUID(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Value implements driver.Valuer for a fixed-length string column.
func (u UUID) Value() (driver.Value, error) {
	if u.IsZero() {
		return nil, fmt.Errorf("cannot store an empty UUID")
	}
	return u.value, nil
}

// Scan implements sql.Scanner. Stored text is re-validated.
func (u *UUID) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return u.UnmarshalText([]byte(v))
	case []byte:
		return u.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into UUID", src)
	}
}
