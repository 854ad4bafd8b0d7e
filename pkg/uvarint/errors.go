package uvarint

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned when a value needs more than MaxLen bytes or
	// when an input to Decode is longer than MaxLen.
	ErrOutOfRange = errors.New("varint out of range")

	// ErrUnterminated is returned by a strict decode when no byte of the
	// input has the continuation bit cleared.
	ErrUnterminated = errors.New("varint not terminated")

	// ErrTrailingBytes is returned by a strict decode when the terminating
	// byte is followed by more data.
	ErrTrailingBytes = errors.New("trailing bytes after varint")

	// ErrNotMinimal is returned by a strict decode when the input ends with a
	// redundant zero group.
	ErrNotMinimal = errors.New("varint not minimally encoded")
)

// EncodeError is returned when a Value cannot be encoded.
type EncodeError struct {
	Value Value
	// Len is the number of bytes the minimal encoding would need.
	Len int
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("cannot encode %v: needs %d bytes, at most %d allowed", e.Value, e.Len, MaxLen)
}

func (e *EncodeError) Unwrap() error { return ErrOutOfRange }

// DecodeError is returned when a byte sequence is not a valid varint.
type DecodeError struct {
	// Len is the length of the rejected input.
	Len int
	// Offset is the index of the byte that caused the failure, or -1 when
	// the input was rejected as a whole.
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("decoding %d bytes: %v", e.Len, e.Err)
	}
	return fmt.Sprintf("decoding %d bytes: %v at offset %d", e.Len, e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }
