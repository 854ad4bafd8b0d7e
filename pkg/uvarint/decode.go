package uvarint

import (
	"fmt"
	"strings"
)

// DecodeMode selects how malformed input is treated by a decoder.
type DecodeMode uint8

const (
	// Strict rejects unterminated input, bytes after the terminator and
	// redundant zero groups.
	Strict DecodeMode = iota
	// Lenient only rejects input longer than MaxLen. Bytes after the
	// terminator are ignored and unterminated input decodes to 0.
	Lenient
)

func (m DecodeMode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	default:
		return fmt.Sprintf("DecodeMode(%d)", uint8(m))
	}
}

// ParseDecodeMode converts the name of a decode mode to a DecodeMode.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch strings.ToLower(s) {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return Strict, fmt.Errorf("unknown decode mode %q (must be strict or lenient)", s)
}

// Decode decodes b using mode m.
func (m DecodeMode) Decode(b []byte) (Value, error) {
	if m == Lenient {
		return DecodeLenient(b)
	}
	return Decode(b)
}

// Decode decodes a varint that must span the whole of b.
func Decode(b []byte) (Value, error) {
	if len(b) > MaxLen {
		return Value{}, &DecodeError{Len: len(b), Offset: -1, Err: ErrOutOfRange}
	}
	n, end := scan(b)
	switch {
	case end < 0:
		return Value{}, &DecodeError{Len: len(b), Offset: -1, Err: ErrUnterminated}
	case end != len(b)-1:
		return Value{}, &DecodeError{Len: len(b), Offset: end + 1, Err: ErrTrailingBytes}
	case end > 0 && b[end] == 0:
		return Value{}, &DecodeError{Len: len(b), Offset: end, Err: ErrNotMinimal}
	}
	return FromUint64(n), nil
}

// DecodeLenient decodes b, ignoring anything after the first byte with the
// continuation bit cleared. An input without such a byte, including an
// empty one, decodes to 0.
func DecodeLenient(b []byte) (Value, error) {
	if len(b) > MaxLen {
		return Value{}, &DecodeError{Len: len(b), Offset: -1, Err: ErrOutOfRange}
	}
	n, end := scan(b)
	if end < 0 {
		return Value{}, nil
	}
	return FromUint64(n), nil
}

// scan accumulates groups up to the terminating byte and returns the
// accumulated number and the index of the terminator, or -1 if there is
// none. len(b) must not exceed MaxLen.
func scan(b []byte) (uint64, int) {
	var n uint64
	for i, c := range b {
		n |= uint64(c&0x7f) << (7 * uint(i))
		if c&0x80 == 0 {
			return n, i
		}
	}
	return 0, -1
}
