package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/base64"
	"fmt"
	"image/jpeg"
)

// photoDebugLen bounds the base64 preview printed by JpegPhoto.String.
const photoDebugLen = 100

// JpegPhoto holds the bytes of a JPEG image that was decoded successfully
// when the value was built. The empty photo is the "no photo" sentinel.
//
// The only ways to obtain a non-empty JpegPhoto go through NewJpegPhoto, so
// holders can trust the content without decoding it again. The bytes are kept
// in a string, which makes the value immutable and comparable with ==.
type JpegPhoto struct {
	data string
}

// NullJpegPhoto returns the empty photo.
func NullJpegPhoto() JpegPhoto {
	return JpegPhoto{}
}

// NewJpegPhoto validates b as a JPEG image and keeps a copy of the original
// bytes. Empty input yields the empty photo.
func NewJpegPhoto(b []byte) (JpegPhoto, error) {
	if len(b) == 0 {
		return NullJpegPhoto(), nil
	}

	if _, err := jpeg.Decode(bytes.NewReader(b)); err != nil {
		return JpegPhoto{}, newValidationError(KindInvalidImage, "jpeg_photo", "", err)
	}

	return JpegPhoto{data: string(b)}, nil
}

// JpegPhotoFromBase64 decodes standard base64 text and validates the result
// like NewJpegPhoto.
func JpegPhotoFromBase64(text string) (JpegPhoto, error) {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return JpegPhoto{}, newValidationError(KindInvalidEncoding, "jpeg_photo", text, err)
	}
	return NewJpegPhoto(raw)
}

// IsEmpty reports whether p is the empty photo.
func (p JpegPhoto) IsEmpty() bool {
	return len(p.data) == 0
}

// Len returns the image size in bytes.
func (p JpegPhoto) Len() int {
	return len(p.data)
}

// Bytes returns a copy of the image bytes.
func (p JpegPhoto) Bytes() []byte {
	return []byte(p.data)
}

// Base64 returns the standard base64 encoding of the image. The empty photo
// encodes to "".
func (p JpegPhoto) Base64() string {
	return base64.StdEncoding.EncodeToString([]byte(p.data))
}

// String renders a truncated base64 preview, never the raw bytes.
func (p JpegPhoto) String() string {
	encoded := p.Base64()
	if len(encoded) > photoDebugLen {
		encoded = encoded[:photoDebugLen] + " ..."
	}
	return fmt.Sprintf("JpegPhoto(%q)", "b64["+encoded+"]")
}

// MarshalText implements encoding.TextMarshaler using base64.
func (p JpegPhoto) MarshalText() ([]byte, error) {
	return []byte(p.Base64()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, validating the image.
func (p *JpegPhoto) UnmarshalText(text []byte) error {
	photo, err := JpegPhotoFromBase64(string(text))
	if err != nil {
		return err
	}
	*p = photo
	return nil
}

// Value implements driver.Valuer. The empty photo is stored as NULL, so an
// absent photo and a zero-length one cannot be told apart once persisted.
func (p JpegPhoto) Value() (driver.Value, error) {
	if p.IsEmpty() {
		return nil, nil
	}
	return []byte(p.data), nil
}

// Scan implements sql.Scanner. Stored bytes are validated again.
func (p *JpegPhoto) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = NullJpegPhoto()
		return nil
	case []byte:
		photo, err := NewJpegPhoto(v)
		if err != nil {
			return err
		}
		*p = photo
		return nil
	default:
		return fmt.Errorf("cannot scan %T into JpegPhoto", src)
	}
}
