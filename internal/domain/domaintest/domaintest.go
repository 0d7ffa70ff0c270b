// Package domaintest provides fixtures for tests that build domain values.
package domaintest

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/fgardt/lldap/internal/domain"
)

// Epoch is a fixed creation date for records built in tests.
var Epoch = time.Unix(0, 0).UTC()

// JpegBytes encodes a 32x32 black and white checkerboard as JPEG.
func JpegBytes(tb testing.TB) []byte {
	tb.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			c := color.RGBA{A: 0xff}
			if (x+y)%2 != 0 {
				c = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
			}
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 50}); err != nil {
		tb.Fatalf("encoding test JPEG: %v", err)
	}
	return buf.Bytes()
}

// JpegPhoto returns a valid photo built from JpegBytes.
func JpegPhoto(tb testing.TB) domain.JpegPhoto {
	tb.Helper()

	photo, err := domain.NewJpegPhoto(JpegBytes(tb))
	if err != nil {
		tb.Fatalf("building test photo: %v", err)
	}
	return photo
}

// User returns a user with the given id, created at Epoch.
func User(id string) domain.User {
	return domain.NewUser(domain.NewUserID(id), id+"@example.com", Epoch)
}
