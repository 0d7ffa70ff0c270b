package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// AttributeType identifies which kind of value an attribute holds.
// The set is closed; the zero value is not a valid type.
type AttributeType int

const (
	AttributeTypeString    AttributeType = iota + 1 // UTF-8 text
	AttributeTypeInteger                            // 64-bit signed integer
	AttributeTypeJpegPhoto                          // Validated JPEG image
	AttributeTypeDateTime                           // UTC timestamp
)

// AttributeTypeMaxLength is the width of the storage column for type names.
const AttributeTypeMaxLength = 64

var attributeTypeNames = map[AttributeType]string{
	AttributeTypeString:    "String",
	AttributeTypeInteger:   "Integer",
	AttributeTypeJpegPhoto: "JpegPhoto",
	AttributeTypeDateTime:  "DateTime",
}

var attributeTypesByName = func() map[string]AttributeType {
	byName := make(map[string]AttributeType, len(attributeTypeNames))
	for t, name := range attributeTypeNames {
		byName[name] = t
	}
	return byName
}()

// AttributeTypes returns every valid type in declaration order.
func AttributeTypes() []AttributeType {
	return []AttributeType{
		AttributeTypeString,
		AttributeTypeInteger,
		AttributeTypeJpegPhoto,
		AttributeTypeDateTime,
	}
}

// AttributeTypeNames returns the canonical names in declaration order, for use
// as an enumeration in API schemas.
func AttributeTypeNames() []string {
	types := AttributeTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = attributeTypeNames[t]
	}
	return names
}

// ParseAttributeType maps a canonical name to its type. Matching is exact and
// case-sensitive; anything else is ErrUnknownAttributeType.
func ParseAttributeType(s string) (AttributeType, error) {
	t, ok := attributeTypesByName[s]
	if !ok {
		return 0, newValidationError(KindUnknownAttributeType, "attribute_type", s, nil)
	}
	return t, nil
}

// IsValid reports whether t is one of the declared types.
func (t AttributeType) IsValid() bool {
	_, ok := attributeTypeNames[t]
	return ok
}

// String returns the canonical name.
func (t AttributeType) String() string {
	if name, ok := attributeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("AttributeType(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t AttributeType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid %s", t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *AttributeType) UnmarshalText(text []byte) error {
	parsed, err := ParseAttributeType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer for a short string column.
func (t AttributeType) Value() (driver.Value, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("cannot store invalid %s", t)
	}
	return t.String(), nil
}

// Scan implements sql.Scanner. Stored names are validated against the
// enumeration on every read.
func (t *AttributeType) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into AttributeType", src)
	}
}

// Validate checks that v decodes as the value kind paired with t.
func (t AttributeType) Validate(v Serialized) error {
	var err error
	switch t {
	case AttributeTypeString:
		_, err = Decode[string](v)
	case AttributeTypeInteger:
		_, err = Decode[int64](v)
	case AttributeTypeJpegPhoto:
		_, err = Decode[JpegPhoto](v)
	case AttributeTypeDateTime:
		_, err = Decode[time.Time](v)
	default:
		return newValidationError(KindUnknownAttributeType, "attribute_type", t.String(), nil)
	}

	if err != nil {
		return fmt.Errorf("value is not a %s: %w", t, err)
	}
	return nil
}
