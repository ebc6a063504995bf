// Package wire implements the low-level byte primitives shared by both
// Thrift wire formats: a bounds-checked read cursor over a fixed buffer,
// a growable write cursor, and the varint/zigzag encodings TCompact uses.
//
// Split streams are always little-endian and host-native regardless of
// which wire format produced them; only the Read/WriteBE helpers below
// deal with the wire's own endianness.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrEOF is returned when a read would run past the end of the buffer.
var ErrEOF = errors.New("wire: unexpected end of input")

// Cursor reads sequentially from a fixed byte buffer.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for sequential reading starting at offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Exhausted reports whether every byte has been consumed.
func (c *Cursor) Exhausted() bool { return c.pos >= len(c.buf) }

// ReadByte consumes and returns a single byte.
func (c *Cursor) ReadByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, ErrEOF
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// ReadBytes returns the next n bytes without copying; the slice aliases
// the cursor's backing array and must not be retained past subsequent
// writes into it.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, fmt.Errorf("%w: want %d bytes, have %d", ErrEOF, n, c.Remaining())
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadU8BE reads an unsigned 8-bit value. Width has no bearing on
// endianness but the name is kept symmetric with the wider BE readers.
func (c *Cursor) ReadU8BE() (uint8, error) {
	return c.ReadByte()
}

// ReadU16BE reads a big-endian uint16.
func (c *Cursor) ReadU16BE() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadU32BE reads a big-endian uint32.
func (c *Cursor) ReadU32BE() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadU64BE reads a big-endian uint64.
func (c *Cursor) ReadU64BE() (uint64, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadI16BE reads a big-endian int16.
func (c *Cursor) ReadI16BE() (int16, error) {
	v, err := c.ReadU16BE()
	return int16(v), err
}

// ReadI32BE reads a big-endian int32.
func (c *Cursor) ReadI32BE() (int32, error) {
	v, err := c.ReadU32BE()
	return int32(v), err
}

// ReadI64BE reads a big-endian int64.
func (c *Cursor) ReadI64BE() (int64, error) {
	v, err := c.ReadU64BE()
	return int64(v), err
}

// ReadF32BE reads a big-endian IEEE-754 float32.
func (c *Cursor) ReadF32BE() (float32, error) {
	v, err := c.ReadU32BE()
	return math.Float32frombits(v), err
}

// ReadF64BE reads a big-endian IEEE-754 float64.
func (c *Cursor) ReadF64BE() (float64, error) {
	v, err := c.ReadU64BE()
	return math.Float64frombits(v), err
}

// ReadVarint reads an unsigned LEB128 varint, up to 10 bytes (64 bits).
// It rejects overlong encodings the way a strict Thrift decoder must:
// a 10-byte sequence whose final byte contributes bits above bit 63 is
// an encoding error rather than silently truncated.
func (c *Cursor) ReadVarint() (uint64, error) {
	var result uint64
	for shift := uint(0); shift < 70; shift += 7 {
		b, err := c.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("wire: truncated varint: %w", err)
		}
		if shift == 63 && b > 1 {
			return 0, fmt.Errorf("wire: overlong varint (final byte 0x%x at bit 63)", b)
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
	}
	return 0, errors.New("wire: varint longer than 10 bytes")
}

// ReadVarint32 reads an unsigned LEB128 varint bounded to 32 bits (5 bytes).
func (c *Cursor) ReadVarint32() (uint32, error) {
	var result uint32
	for shift := uint(0); shift < 35; shift += 7 {
		b, err := c.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("wire: truncated varint: %w", err)
		}
		if shift == 28 && b > 0x0f {
			return 0, fmt.Errorf("wire: overlong 32-bit varint (final byte 0x%x)", b)
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
	}
	return 0, errors.New("wire: 32-bit varint longer than 5 bytes")
}

// ZigZagDecode64 maps an unsigned zigzag-encoded value back to a signed one.
func ZigZagDecode64(n uint64) int64 {
	return int64(n>>1) ^ -int64(n&1)
}

// ZigZagDecode32 maps an unsigned zigzag-encoded value back to a signed one.
func ZigZagDecode32(n uint32) int32 {
	return int32(n>>1) ^ -int32(n&1)
}

// ZigZagEncode64 maps a signed value to its unsigned zigzag encoding.
func ZigZagEncode64(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

// ZigZagEncode32 maps a signed value to its unsigned zigzag encoding.
func ZigZagEncode32(n int32) uint32 {
	return uint32((n << 1) ^ (n >> 31))
}
