package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UserID is a case-insensitive login identifier. It is stored lowercased, so
// equality, hashing and ordering all operate on the canonical form and the
// == operator is the case-insensitive comparison.
type UserID struct {
	id string
}

// NewUserID canonicalizes raw. It never fails.
func NewUserID(raw string) UserID {
	// Casers are stateful and must not be shared between goroutines.
	return UserID{id: cases.Lower(language.Und).String(raw)}
}

// String returns the canonical (lowercase) form.
func (u UserID) String() string {
	return u.id
}

// IsEmpty reports whether the identifier is the empty string.
func (u UserID) IsEmpty() bool {
	return u.id == ""
}

// Compare orders identifiers lexicographically on their canonical form.
func (u UserID) Compare(other UserID) int {
	return strings.Compare(u.id, other.id)
}

// MarshalText implements encoding.TextMarshaler.
func (u UserID) MarshalText() ([]byte, error) {
	return []byte(u.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The input is canonicalized.
func (u *UserID) UnmarshalText(text []byte) error {
	*u = NewUserID(string(text))
	return nil
}

// Value implements driver.Valuer for a string column.
func (u UserID) Value() (driver.Value, error) {
	return u.id, nil
}

// Scan implements sql.Scanner. Integer sources are rejected: a user id is never
// derived from a numeric surrogate key.
func (u *UserID) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*u = NewUserID(v)
		return nil
	case []byte:
		*u = NewUserID(string(v))
		return nil
	case int64:
		return fmt.Errorf("UserID cannot be constructed from integer key %d", v)
	default:
		return fmt.Errorf("cannot scan %T into UserID", src)
	}
}
