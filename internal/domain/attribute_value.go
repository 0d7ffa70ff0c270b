package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fgardt/lldap/internal/codec"
)

// AttributeValue is a named encoded value. Which type the value decodes to is
// recorded by the attribute's schema, not here.
type AttributeValue struct {
	Name  string
	Value Serialized
}

// StringAttribute builds a String-typed attribute value. value must be valid
// UTF-8; use ParseAttributeValue for untrusted text.
func StringAttribute(name, value string) AttributeValue {
	return AttributeValue{Name: name, Value: Serialize(value)}
}

// IntegerAttribute builds an Integer-typed attribute value.
func IntegerAttribute(name string, value int64) AttributeValue {
	return AttributeValue{Name: name, Value: Serialize(value)}
}

// PhotoAttribute builds a JpegPhoto-typed attribute value.
func PhotoAttribute(name string, value JpegPhoto) AttributeValue {
	return AttributeValue{Name: name, Value: Serialize(value)}
}

// DateTimeAttribute builds a DateTime-typed attribute value.
func DateTimeAttribute(name string, value time.Time) AttributeValue {
	return AttributeValue{Name: name, Value: Serialize(value.UTC())}
}

// FormatAttributeValue renders v as transport text according to t: strings
// verbatim, integers in decimal, photos in base64 and date-times in RFC 3339.
func FormatAttributeValue(t AttributeType, v Serialized) (string, error) {
	switch t {
	case AttributeTypeString:
		return Decode[string](v)
	case AttributeTypeInteger:
		i, err := Decode[int64](v)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(i, 10), nil
	case AttributeTypeJpegPhoto:
		photo, err := Decode[JpegPhoto](v)
		if err != nil {
			return "", err
		}
		return photo.Base64(), nil
	case AttributeTypeDateTime:
		ts, err := Decode[time.Time](v)
		if err != nil {
			return "", err
		}
		return formatDateTime(ts), nil
	default:
		return "", newValidationError(KindUnknownAttributeType, "attribute_type", t.String(), nil)
	}
}

// ParseAttributeValue builds the attribute name from transport text
// interpreted according to t. It is the inverse of FormatAttributeValue.
func ParseAttributeValue(t AttributeType, name, text string) (AttributeValue, error) {
	switch t {
	case AttributeTypeString:
		if !utf8.ValidString(text) {
			return AttributeValue{}, newValidationError(KindInvalidValue, name, text, nil)
		}
		return StringAttribute(name, text), nil
	case AttributeTypeInteger:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return AttributeValue{}, newValidationError(KindInvalidValue, name, text, err)
		}
		return IntegerAttribute(name, i), nil
	case AttributeTypeJpegPhoto:
		photo, err := JpegPhotoFromBase64(text)
		if err != nil {
			return AttributeValue{}, Annotate(err, "", name)
		}
		return PhotoAttribute(name, photo), nil
	case AttributeTypeDateTime:
		ts, err := parseDateTime(text)
		if err != nil {
			return AttributeValue{}, newValidationError(KindInvalidValue, name, text, err)
		}
		return DateTimeAttribute(name, ts), nil
	default:
		return AttributeValue{}, newValidationError(KindUnknownAttributeType, "attribute_type", t.String(), nil)
	}
}

// String renders the attribute for logs.
func (a AttributeValue) String() string {
	return fmt.Sprintf("%s=%s", a.Name, a.Value)
}

// formatDateTime writes RFC 3339, or the codec's signed-year form with a "Z"
// suffix for years RFC 3339 cannot express.
func formatDateTime(ts time.Time) string {
	ts = ts.UTC()
	if y := ts.Year(); y < 0 || y > 9999 {
		return codec.FormatTimestamp(ts) + "Z"
	}
	return ts.Format(time.RFC3339Nano)
}

func parseDateTime(text string) (time.Time, error) {
	if naive, ok := strings.CutSuffix(text, "Z"); ok && (strings.HasPrefix(text, "+") || strings.HasPrefix(text, "-")) {
		return codec.ParseTimestamp(naive)
	}
	return time.Parse(time.RFC3339Nano, text)
}
