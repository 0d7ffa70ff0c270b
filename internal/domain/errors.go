package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationKind categorizes why a value was rejected.
type ValidationKind string

const (
	KindInvalidIdentifier    ValidationKind = "invalid_identifier"
	KindInvalidImage         ValidationKind = "invalid_image"
	KindInvalidEncoding      ValidationKind = "invalid_encoding"
	KindUnknownAttributeType ValidationKind = "unknown_attribute_type"
	KindInvalidValue         ValidationKind = "invalid_value"
)

// Sentinels matched by errors.Is against a *ValidationError of the same kind.
var (
	ErrInvalidIdentifier    = errors.New("invalid identifier")
	ErrInvalidImage         = errors.New("invalid image")
	ErrInvalidEncoding      = errors.New("invalid encoding")
	ErrUnknownAttributeType = errors.New("unknown attribute type")
	ErrInvalidValue         = errors.New("invalid value")
)

var kindSentinels = map[ValidationKind]error{
	KindInvalidIdentifier:    ErrInvalidIdentifier,
	KindInvalidImage:         ErrInvalidImage,
	KindInvalidEncoding:      ErrInvalidEncoding,
	KindUnknownAttributeType: ErrUnknownAttributeType,
	KindInvalidValue:         ErrInvalidValue,
}

// ValidationError reports input rejected while constructing a domain value.
// Entity and Field are empty when the value was built outside any entity;
// callers that know the context attach it with WithContext.
type ValidationError struct {
	Kind   ValidationKind // Error category
	Entity string         // Entity being built, e.g. "user"
	Field  string         // Field or attribute name, e.g. "avatar"
	Value  string         // Offending input, truncated for display
	Cause  error          // Underlying decoder or parser error
}

func (e *ValidationError) Error() string {
	var b strings.Builder

	if sentinel, ok := kindSentinels[e.Kind]; ok {
		b.WriteString(sentinel.Error())
	} else {
		b.WriteString(string(e.Kind))
	}

	switch {
	case e.Entity != "" && e.Field != "":
		fmt.Fprintf(&b, " for %s.%s", e.Entity, e.Field)
	case e.Entity != "":
		fmt.Fprintf(&b, " for %s", e.Entity)
	case e.Field != "":
		fmt.Fprintf(&b, " for %s", e.Field)
	}

	if e.Value != "" {
		fmt.Fprintf(&b, " %q", e.Value)
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel for the error's kind.
func (e *ValidationError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// WithContext returns a copy of e naming the entity and field it concerns.
// Empty arguments leave the existing context unchanged.
func (e *ValidationError) WithContext(entity, field string) *ValidationError {
	out := *e
	if entity != "" {
		out.Entity = entity
	}
	if field != "" {
		out.Field = field
	}
	return &out
}

// Annotate attaches entity and field context to err when it is a
// *ValidationError, and returns other errors unchanged.
func Annotate(err error, entity, field string) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.WithContext(entity, field)
	}
	return err
}

const maxErrorValueLen = 64

func newValidationError(kind ValidationKind, field, value string, cause error) *ValidationError {
	if len(value) > maxErrorValueLen {
		value = value[:maxErrorValueLen] + "..."
	}
	return &ValidationError{
		Kind:  kind,
		Field: field,
		Value: value,
		Cause: cause,
	}
}
