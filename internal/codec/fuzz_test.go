package codec

import (
	"bytes"
	"testing"
	"time"
)

// FuzzUnmarshal checks that decoding arbitrary input never panics and that
// anything accepted re-encodes to the same bytes.
func FuzzUnmarshal(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{4, 0, 0, 0, 0, 0, 0, 0, 'a', 'b', 'c', 'd'})
	f.Add([]byte{0xd2, 0x04, 0, 0, 0, 0, 0, 0})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f})
	f.Add(append([]byte{19, 0, 0, 0, 0, 0, 0, 0}, "2023-01-02T03:04:05"...))

	f.Fuzz(func(t *testing.T, data []byte) {
		var s string
		if err := Unmarshal(data, &s); err == nil {
			again, _ := Marshal(s)
			if !bytes.Equal(again, data) {
				t.Errorf("string round trip changed bytes: %x -> %x", data, again)
			}
		}

		var i int64
		if err := Unmarshal(data, &i); err == nil && len(data) != Int64Len {
			t.Errorf("int64 accepted %d bytes", len(data))
		}

		var b []byte
		if err := Unmarshal(data, &b); err == nil {
			again, _ := Marshal(b)
			if !bytes.Equal(again, data) {
				t.Errorf("bytes round trip changed bytes: %x -> %x", data, again)
			}
		}

		var ts time.Time
		_ = Unmarshal(data, &ts)
	})
}
