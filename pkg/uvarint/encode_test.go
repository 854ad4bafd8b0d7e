package uvarint

import (
	"bytes"
	"errors"
	"testing"

	num "github.com/shabbyrobe/go-num"
)

func TestEncodeVectors(t *testing.T) {
	tc := []struct {
		in  uint64
		out []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{MaxValue, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}},
	}
	for _, c := range tc {
		enc, err := FromUint64(c.in).Bytes()
		if err != nil {
			t.Errorf("encoding %d: %v", c.in, err)
			continue
		}
		if !bytes.Equal(enc, c.out) {
			t.Errorf("encoding %d: expected %x got %x", c.in, c.out, enc)
		}
	}
}

func TestEncodeMinimal(t *testing.T) {
	// first value that needs each length
	for length := 1; length <= MaxLen; length++ {
		var first uint64
		if length > 1 {
			first = 1 << (7 * uint(length-1))
		}
		last := uint64(1)<<(7*uint(length)) - 1
		for _, n := range []uint64{first, last} {
			v := FromUint64(n)
			enc, err := Encode(v)
			if err != nil {
				t.Fatalf("encoding %d: %v", n, err)
			}
			if len(enc) != length || v.Len() != length {
				t.Errorf("encoding %d: expected %d bytes, got %d (Len %d)", n, length, len(enc), v.Len())
			}
			if enc[len(enc)-1] == 0 && len(enc) > 1 {
				t.Errorf("encoding %d: trailing zero group in %x", n, enc)
			}
			for i, b := range enc {
				cont := b&0x80 != 0
				if cont != (i < len(enc)-1) {
					t.Errorf("encoding %d: wrong continuation bit at %d in %x", n, i, enc)
				}
			}
		}
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	tc := []Value{
		FromUint64(MaxValue + 1),
		FromUint64(^uint64(0)),
		New(num.U128FromRaw(1, 0)),
		New(num.U128FromRaw(^uint64(0), ^uint64(0))),
	}
	for _, v := range tc {
		enc, err := v.Bytes()
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("encoding %v: expected ErrOutOfRange, got %v", v, err)
		}
		if enc != nil {
			t.Errorf("encoding %v: partial output %x", v, enc)
		}
		var encErr *EncodeError
		if !errors.As(err, &encErr) {
			t.Fatalf("encoding %v: expected *EncodeError, got %T", v, err)
		}
		if encErr.Len <= MaxLen || encErr.Len != v.Len() {
			t.Errorf("encoding %v: wrong length in error %d", v, encErr.Len)
		}
	}
}

func TestAppendEncode(t *testing.T) {
	prefix := []byte{0xde, 0xad}
	out, err := AppendEncode(prefix, FromUint64(300))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, []byte{0xde, 0xad, 0xac, 0x02}) {
		t.Errorf("unexpected output %x", out)
	}

	out, err = AppendEncode(prefix[:2:2], FromUint64(^uint64(0)))
	if err == nil {
		t.Fatal("expected error")
	}
	if !bytes.Equal(out, prefix) {
		t.Errorf("dst modified on error: %x", out)
	}
}

func TestLen(t *testing.T) {
	tc := []struct {
		v   Value
		len int
	}{
		{FromUint64(0), 1},
		{FromUint64(127), 1},
		{FromUint64(128), 2},
		{FromUint64(MaxValue), 9},
		{FromUint64(MaxValue + 1), 10},
		{FromUint64(^uint64(0)), 10},
		{New(num.U128FromRaw(^uint64(0), ^uint64(0))), 19},
	}
	for _, c := range tc {
		if l := c.v.Len(); l != c.len {
			t.Errorf("Len(%v): expected %d got %d", c.v, c.len, l)
		}
	}
}
