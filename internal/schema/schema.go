package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fgardt/lldap/internal/domain"
)

var (
	ErrUnknownAttribute   = errors.New("attribute not in schema")
	ErrDuplicateAttribute = errors.New("duplicate attribute name")
	ErrEmptyName          = errors.New("attribute name is empty")
)

// Names of the attributes every user schema carries.
const (
	AttributeAvatar    = "avatar"
	AttributeFirstName = "first_name"
	AttributeLastName  = "last_name"
)

// AttributeSchema describes one attribute.
type AttributeSchema struct {
	Name        string
	Type        domain.AttributeType
	IsList      bool
	IsVisible   bool
	IsEditable  bool
	IsHardcoded bool
}

// Schema is an immutable set of attribute descriptions. Names are matched
// case-insensitively.
type Schema struct {
	attributes []AttributeSchema
	byName     map[string]int
}

// NewSchema builds a schema, rejecting empty or duplicate names and invalid
// types.
func NewSchema(attributes ...AttributeSchema) (*Schema, error) {
	s := &Schema{
		attributes: make([]AttributeSchema, 0, len(attributes)),
		byName:     make(map[string]int, len(attributes)),
	}

	for _, a := range attributes {
		if err := s.add(a); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Schema) add(a AttributeSchema) error {
	if a.Name == "" {
		return ErrEmptyName
	}
	if !a.Type.IsValid() {
		return fmt.Errorf("attribute %q: %w", a.Name, domain.ErrUnknownAttributeType)
	}

	key := normalizeName(a.Name)
	if _, exists := s.byName[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateAttribute, a.Name)
	}

	s.byName[key] = len(s.attributes)
	s.attributes = append(s.attributes, a)
	return nil
}

// DefaultUserSchema returns the hardcoded user attributes.
func DefaultUserSchema() *Schema {
	s, err := NewSchema(
		AttributeSchema{Name: AttributeAvatar, Type: domain.AttributeTypeJpegPhoto, IsVisible: true, IsEditable: true, IsHardcoded: true},
		AttributeSchema{Name: AttributeFirstName, Type: domain.AttributeTypeString, IsVisible: true, IsEditable: true, IsHardcoded: true},
		AttributeSchema{Name: AttributeLastName, Type: domain.AttributeTypeString, IsVisible: true, IsEditable: true, IsHardcoded: true},
	)
	if err != nil {
		panic(err)
	}
	return s
}

// Get returns the description of name.
func (s *Schema) Get(name string) (AttributeSchema, bool) {
	i, ok := s.byName[normalizeName(name)]
	if !ok {
		return AttributeSchema{}, false
	}
	return s.attributes[i], true
}

// Len returns the number of attributes.
func (s *Schema) Len() int {
	return len(s.attributes)
}

// Attributes returns the descriptions in insertion order.
func (s *Schema) Attributes() []AttributeSchema {
	return slices.Clone(s.attributes)
}

// Names returns the attribute names in insertion order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.attributes))
	for i, a := range s.attributes {
		names[i] = a.Name
	}
	return names
}

// Validate checks that v names a known attribute and decodes as its type.
func (s *Schema) Validate(v domain.AttributeValue) error {
	a, ok := s.Get(v.Name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, v.Name)
	}
	if err := a.Type.Validate(v.Value); err != nil {
		return fmt.Errorf("attribute %q: %w", v.Name, domain.Annotate(err, "", v.Name))
	}
	return nil
}

// Format renders v as transport text according to its schema type.
func (s *Schema) Format(v domain.AttributeValue) (string, error) {
	a, ok := s.Get(v.Name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAttribute, v.Name)
	}
	return domain.FormatAttributeValue(a.Type, v.Value)
}

// Parse builds the attribute name from transport text according to its
// schema type. The returned value carries the schema's spelling of the name.
func (s *Schema) Parse(name, text string) (domain.AttributeValue, error) {
	a, ok := s.Get(name)
	if !ok {
		return domain.AttributeValue{}, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	return domain.ParseAttributeValue(a.Type, a.Name, text)
}

func normalizeName(name string) string {
	return strings.ToLower(name)
}
