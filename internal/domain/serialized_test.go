package domain_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fgardt/lldap/internal/codec"
	"github.com/fgardt/lldap/internal/domain"
	"github.com/fgardt/lldap/internal/domain/domaintest"
)

var fingerprintPattern = regexp.MustCompile(`^hash: 0x[0-9A-F]{16}$`)

func TestSerialize_RoundTrip(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		for _, s := range []string{"", "abcd", "héllo wörld", "line\nbreak"} {
			v, err := domain.Decode[string](domain.Serialize(s))
			require.NoError(t, err)
			assert.Equal(t, s, v)
		}
	})

	t.Run("int64", func(t *testing.T) {
		for _, i := range []int64{0, 1, -1, 1234, -9_223_372_036_854_775_808, 9_223_372_036_854_775_807} {
			s := domain.Serialize(i)
			assert.Equal(t, codec.Int64Len, s.Len())

			v, err := domain.Decode[int64](s)
			require.NoError(t, err)
			assert.Equal(t, i, v)
		}
	})

	t.Run("bytes", func(t *testing.T) {
		in := []byte{0x00, 0xff, 0x10}
		v, err := domain.Decode[[]byte](domain.Serialize(in))
		require.NoError(t, err)
		assert.Equal(t, in, v)
	})

	t.Run("time", func(t *testing.T) {
		stamps := []time.Time{
			time.Date(2023, 1, 2, 3, 4, 5, 678_000_000, time.UTC),
			time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(-44, 3, 15, 12, 0, 0, 0, time.UTC),
		}
		for _, ts := range stamps {
			v, err := domain.Decode[time.Time](domain.Serialize(ts))
			require.NoError(t, err, ts)
			assert.True(t, ts.Equal(v), "want %v, got %v", ts, v)
		}
	})

	t.Run("photo", func(t *testing.T) {
		photo := domaintest.JpegPhoto(t)
		v, err := domain.Decode[domain.JpegPhoto](domain.Serialize(photo))
		require.NoError(t, err)
		assert.Equal(t, photo, v)
	})

	t.Run("empty photo", func(t *testing.T) {
		v, err := domain.Decode[domain.JpegPhoto](domain.Serialize(domain.NullJpegPhoto()))
		require.NoError(t, err)
		assert.True(t, v.IsEmpty())
	})
}

func TestSerialize_Deterministic(t *testing.T) {
	assert.Equal(t, domain.Serialize("abc"), domain.Serialize("abc"))
	assert.Equal(t, domain.Serialize(int64(42)), domain.Serialize(int64(42)))
	assert.NotEqual(t, domain.Serialize("abc"), domain.Serialize("abd"))
}

func TestDecode_WrongType(t *testing.T) {
	tests := []struct {
		name   string
		value  domain.Serialized
		decode func(domain.Serialized) error
	}{
		{
			name:  "short bytes as int64",
			value: domain.SerializedFromBytes([]byte{0x01, 0x02}),
			decode: func(s domain.Serialized) error {
				_, err := domain.Decode[int64](s)
				return err
			},
		},
		{
			name:  "string as int64",
			value: domain.Serialize("abcdefgh"),
			decode: func(s domain.Serialized) error {
				_, err := domain.Decode[int64](s)
				return err
			},
		},
		{
			name:  "int64 as string",
			value: domain.Serialize(int64(1234)),
			decode: func(s domain.Serialized) error {
				_, err := domain.Decode[string](s)
				return err
			},
		},
		{
			name:  "invalid utf8 as string",
			value: domain.Serialize([]byte{0xff, 0xfe}),
			decode: func(s domain.Serialized) error {
				_, err := domain.Decode[string](s)
				return err
			},
		},
		{
			name:  "string as time",
			value: domain.Serialize("yesterday"),
			decode: func(s domain.Serialized) error {
				_, err := domain.Decode[time.Time](s)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decode(tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, codec.ErrTypeMismatch)
		})
	}
}

func TestDecode_PhotoRevalidates(t *testing.T) {
	_, err := domain.Decode[domain.JpegPhoto](domain.Serialize([]byte("not a jpeg")))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestMustDecode(t *testing.T) {
	assert.Equal(t, "abcd", domain.MustDecode[string](domain.Serialize("abcd")))
	assert.Equal(t, int64(7), domain.MustDecode[int64](domain.Serialize(int64(7))))

	assert.Panics(t, func() {
		domain.MustDecode[int64](domain.Serialize("abcd"))
	})
	assert.PanicsWithValue(t,
		"photo column: cannot decode int64 at offset 0: need 8 bytes, have 3",
		func() {
			domain.Expect[int64](domain.SerializedFromBytes([]byte{1, 2, 3}), "photo column")
		},
	)
}

func TestSerialized_Render(t *testing.T) {
	tests := []struct {
		name     string
		value    domain.Serialized
		expected string
	}{
		{
			name:     "string",
			value:    domain.Serialize("abcd"),
			expected: "abcd",
		},
		{
			name:     "integer",
			value:    domain.Serialize(int64(1234)),
			expected: "1234",
		},
		{
			name:     "negative integer",
			value:    domain.Serialize(int64(-5)),
			expected: "-5",
		},
		{
			name:     "zero integer reads as empty string",
			value:    domain.Serialize(int64(0)),
			expected: "",
		},
		{
			name:     "date time",
			value:    domain.Serialize(time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)),
			expected: "2023-01-02T03:04:05",
		},
		{
			name:     "undecodable bytes",
			value:    domain.SerializedFromBytes([]byte{0xff, 0x00, 0x01}),
			expected: "hash: 0x78253D795383CC56",
		},
		{
			name:     "five raw bytes",
			value:    domain.SerializedFromBytes([]byte{0xde, 0xad, 0xbe, 0xef, 0x01}),
			expected: "hash: 0xCCC7097A6F979A4A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.value.Render())
		})
	}
}

func TestSerialized_RenderPhoto(t *testing.T) {
	s := domain.Serialize(domaintest.JpegPhoto(t))

	rendered := s.Render()
	assert.Regexp(t, fingerprintPattern, rendered)
	assert.Equal(t, rendered, s.Render())
}

func TestSerialized_String(t *testing.T) {
	assert.Equal(t, `Serialized("abcd")`, domain.Serialize("abcd").String())
	assert.Equal(t, `Serialized("1234")`, domain.Serialize(int64(1234)).String())
}

func TestSerialized_Bytes(t *testing.T) {
	s := domain.Serialize("ab")
	assert.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0, 'a', 'b'}, s.Bytes())

	b := s.Bytes()
	b[8] = 'z'
	assert.Equal(t, "ab", domain.MustDecode[string](s))

	assert.Equal(t, s, domain.SerializedFromBytes(s.Bytes()))
}

func TestSerialized_SQL(t *testing.T) {
	s := domain.Serialize("value")

	v, err := s.Value()
	require.NoError(t, err)

	var scanned domain.Serialized
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, s, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.Zero(t, scanned.Len())

	assert.Error(t, scanned.Scan(int64(1)))
}
