package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// LEReader reads sequentially from a little-endian, host-native split
// stream. It is the read-side counterpart of LEWriter.
type LEReader struct {
	buf   []byte
	pos   int
	width int
}

// NewLEReader wraps buf for reading, tagged with its declared element width.
func NewLEReader(buf []byte, width int) *LEReader {
	return &LEReader{buf: buf, width: width}
}

// Remaining returns the number of unread bytes.
func (r *LEReader) Remaining() int { return len(r.buf) - r.pos }

// Width returns the stream's declared element width.
func (r *LEReader) Width() int { return r.width }

// ReadRaw returns the next n bytes without copying.
func (r *LEReader) ReadRaw(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, fmt.Errorf("%w: want %d bytes, have %d", ErrEOF, n, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU8 reads a single byte.
func (r *LEReader) ReadU8() (uint8, error) {
	b, err := r.ReadRaw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (r *LEReader) ReadU16() (uint16, error) {
	b, err := r.ReadRaw(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (r *LEReader) ReadU32() (uint32, error) {
	b, err := r.ReadRaw(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a little-endian uint64.
func (r *LEReader) ReadU64() (uint64, error) {
	b, err := r.ReadRaw(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI16 reads a little-endian int16.
func (r *LEReader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadI32 reads a little-endian int32.
func (r *LEReader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadI64 reads a little-endian int64.
func (r *LEReader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

// ReadF32 reads a little-endian IEEE-754 float32.
func (r *LEReader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

// ReadF64 reads a little-endian IEEE-754 float64.
func (r *LEReader) ReadF64() (float64, error) {
	v, err := r.ReadU64()
	return math.Float64frombits(v), err
}
