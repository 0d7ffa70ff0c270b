package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fgardt/lldap/internal/codec"
	"github.com/fgardt/lldap/internal/domain"
	"github.com/fgardt/lldap/internal/domain/domaintest"
)

func TestNewSchema(t *testing.T) {
	tests := []struct {
		name       string
		attributes []AttributeSchema
		wantErr    error
	}{
		{
			name: "valid",
			attributes: []AttributeSchema{
				{Name: "nickname", Type: domain.AttributeTypeString},
				{Name: "uid_number", Type: domain.AttributeTypeInteger},
			},
		},
		{
			name:       "empty",
			attributes: nil,
		},
		{
			name: "duplicate differing in case",
			attributes: []AttributeSchema{
				{Name: "nickname", Type: domain.AttributeTypeString},
				{Name: "NickName", Type: domain.AttributeTypeString},
			},
			wantErr: ErrDuplicateAttribute,
		},
		{
			name: "empty name",
			attributes: []AttributeSchema{
				{Name: "", Type: domain.AttributeTypeString},
			},
			wantErr: ErrEmptyName,
		},
		{
			name: "invalid type",
			attributes: []AttributeSchema{
				{Name: "broken"},
			},
			wantErr: domain.ErrUnknownAttributeType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSchema(tt.attributes...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.attributes), s.Len())
		})
	}
}

func TestDefaultUserSchema(t *testing.T) {
	s := DefaultUserSchema()

	assert.Equal(t, []string{AttributeAvatar, AttributeFirstName, AttributeLastName}, s.Names())

	avatar, ok := s.Get("Avatar")
	require.True(t, ok)
	assert.Equal(t, domain.AttributeTypeJpegPhoto, avatar.Type)
	assert.True(t, avatar.IsHardcoded)

	_, ok = s.Get("mail")
	assert.False(t, ok)
}

func TestSchema_AttributesIsCopy(t *testing.T) {
	s := DefaultUserSchema()

	attrs := s.Attributes()
	attrs[0].Name = "changed"

	assert.Equal(t, AttributeAvatar, s.Attributes()[0].Name)
}

func TestSchema_Validate(t *testing.T) {
	s := DefaultUserSchema()

	tests := []struct {
		name    string
		value   domain.AttributeValue
		wantErr error
	}{
		{
			name:  "string",
			value: domain.StringAttribute(AttributeFirstName, "Alice"),
		},
		{
			name:  "photo",
			value: domain.PhotoAttribute(AttributeAvatar, domaintest.JpegPhoto(t)),
		},
		{
			name:    "unknown attribute",
			value:   domain.StringAttribute("mail", "a@b.c"),
			wantErr: ErrUnknownAttribute,
		},
		{
			name:    "integer stored as first name",
			value:   domain.IntegerAttribute(AttributeFirstName, 7),
			wantErr: codec.ErrTypeMismatch,
		},
		{
			name:    "non-image avatar",
			value:   domain.AttributeValue{Name: AttributeAvatar, Value: domain.Serialize([]byte("png?"))},
			wantErr: domain.ErrInvalidImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSchema_FormatParse(t *testing.T) {
	s := DefaultUserSchema()
	photo := domaintest.JpegPhoto(t)

	text, err := s.Format(domain.PhotoAttribute(AttributeAvatar, photo))
	require.NoError(t, err)
	assert.Equal(t, photo.Base64(), text)

	parsed, err := s.Parse("AVATAR", text)
	require.NoError(t, err)
	assert.Equal(t, AttributeAvatar, parsed.Name)
	assert.Equal(t, photo, domain.MustDecode[domain.JpegPhoto](parsed.Value))

	_, err = s.Parse("mail", "x")
	assert.ErrorIs(t, err, ErrUnknownAttribute)

	_, err = s.Format(domain.StringAttribute("mail", "x"))
	assert.ErrorIs(t, err, ErrUnknownAttribute)
}
