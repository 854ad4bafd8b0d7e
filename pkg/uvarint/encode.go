package uvarint

// Bytes returns the minimal encoding of v. It fails with an *EncodeError
// wrapping ErrOutOfRange when the encoding would be longer than MaxLen.
func (v Value) Bytes() ([]byte, error) {
	return AppendEncode(nil, v)
}

// Encode returns the minimal encoding of v.
func Encode(v Value) ([]byte, error) {
	return v.Bytes()
}

// AppendEncode appends the encoding of v to dst and returns the extended
// buffer. On error dst is returned unchanged.
func AppendEncode(dst []byte, v Value) ([]byte, error) {
	length := v.Len()
	if length > MaxLen {
		return dst, &EncodeError{Value: v, Len: length}
	}

	if length == 1 {
		_, lo := v.n.Raw()
		return append(dst, byte(lo)), nil
	}

	n := v.n
	for i := 0; i < length; i++ {
		_, lo := n.Raw()
		b := byte(lo&0x7f) | 0x80
		if i == length-1 {
			b &= 0x7f
		}
		dst = append(dst, b)
		n = n.Rsh(7)
	}
	return dst, nil
}
