// Package uvarint implements the unsigned varint format used by the
// multiformats project.
//
// A varint is a little endian base 128 encoding of an unsigned integer: every
// byte carries seven bits of the number, least significant group first, and
// the high bit of a byte is set when more bytes follow. The encoder emits the
// minimal encoding and limits it to MaxLen bytes, so the largest value that
// can be written is MaxValue (2^63-1) even though a Value holds 128 bits.
package uvarint
