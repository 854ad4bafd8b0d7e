package uvarint

import (
	"fmt"
	"math/big"
	"math/bits"
	"strings"

	num "github.com/shabbyrobe/go-num"
)

const (
	// MaxLen is the maximum number of bytes of an encoded varint.
	MaxLen = 9

	// MaxValue is the largest value that fits in MaxLen bytes.
	MaxValue = 1<<(7*MaxLen) - 1

	displayPrefix = "uv"
)

// Value is an unsigned integer of at most 128 bits. The zero Value is 0.
type Value struct {
	n num.U128
}

// New returns a Value holding n.
func New(n num.U128) Value {
	return Value{n: n}
}

// FromUint64 returns a Value holding n.
func FromUint64(n uint64) Value {
	return Value{n: num.U128From64(n)}
}

// Parse converts s to a Value. It accepts decimal numbers, hexadecimal
// numbers prefixed by 0x and the display form produced by String (uv300).
func Parse(s string) (Value, error) {
	str := strings.TrimPrefix(strings.TrimSpace(s), displayPrefix)
	if str == "" {
		return Value{}, fmt.Errorf("invalid value %q", s)
	}
	base := 10
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		str, base = str[2:], 16
	}
	bi, ok := new(big.Int).SetString(str, base)
	if !ok {
		return Value{}, fmt.Errorf("invalid value %q", s)
	}
	if bi.Sign() < 0 {
		return Value{}, fmt.Errorf("invalid value %q: negative", s)
	}
	n, accurate := num.U128FromBigInt(bi)
	if !accurate {
		return Value{}, fmt.Errorf("invalid value %q: does not fit in 128 bits", s)
	}
	return New(n), nil
}

// Uint128 returns the number held by v.
func (v Value) Uint128() num.U128 {
	return v.n
}

// Uint64 returns the number held by v and whether it fits in a uint64.
func (v Value) Uint64() (uint64, bool) {
	hi, lo := v.n.Raw()
	return lo, hi == 0
}

// BitLen returns the number of bits needed to represent v, 0 for 0.
func (v Value) BitLen() int {
	hi, lo := v.n.Raw()
	if hi != 0 {
		return 64 + bits.Len64(hi)
	}
	return bits.Len64(lo)
}

// Len returns the number of bytes of the minimal encoding of v. The result
// is not limited to MaxLen.
func (v Value) Len() int {
	if v.BitLen() == 0 {
		return 1
	}
	return (v.BitLen()-1)/7 + 1
}

// Equal reports whether v and w hold the same number.
func (v Value) Equal(w Value) bool {
	return v.n.Equal(w.n)
}

// Cmp compares v and w and returns -1, 0 or +1.
func (v Value) Cmp(w Value) int {
	return v.n.Cmp(w.n)
}

// String returns the display form of v, for example uv300.
func (v Value) String() string {
	return displayPrefix + v.n.String()
}

// Format implements fmt.Formatter. The verbs v and s print the display form,
// d prints the plain decimal number and x, X print hexadecimal.
func (v Value) Format(s fmt.State, verb rune) {
	switch verb {
	case 'd', 'x', 'X', 'o', 'b':
		v.bigInt().Format(s, verb)
	case 'v', 's':
		fmt.Fprint(s, v.String())
	default:
		fmt.Fprintf(s, "%%!%c(uvarint.Value=%s)", verb, v.String())
	}
}

func (v Value) bigInt() *big.Int {
	hi, lo := v.Uint128().Raw()
	bi := new(big.Int).SetUint64(hi)
	bi.Lsh(bi, 64)
	return bi.Or(bi, new(big.Int).SetUint64(lo))
}
