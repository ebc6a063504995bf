package wire

import (
	"encoding/binary"
	"math"
)

// Writer is a growable write cursor used for wire-format output (e.g. the
// TulipV2-framed TCompact bytes the driver writes back out on decode).
// The split streams themselves are written with LEWriter.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty growable writer, optionally pre-sized.
func NewWriter(capacityHint int) *Writer {
	return &Writer{buf: make([]byte, 0, capacityHint)}
}

// Bytes returns the accumulated buffer. The caller must not retain it
// across further writes, which may reallocate.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Reserve ensures capacity for n more bytes without changing Len.
func (w *Writer) Reserve(n int) {
	if cap(w.buf)-len(w.buf) >= n {
		return
	}
	grown := make([]byte, len(w.buf), len(w.buf)+n)
	copy(grown, w.buf)
	w.buf = grown
}

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// WriteBytes appends a raw byte slice.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteU8BE appends an unsigned 8-bit value.
func (w *Writer) WriteU8BE(v uint8) { w.buf = append(w.buf, v) }

// WriteU16BE appends a big-endian uint16.
func (w *Writer) WriteU16BE(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU32BE appends a big-endian uint32.
func (w *Writer) WriteU32BE(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU64BE appends a big-endian uint64.
func (w *Writer) WriteU64BE(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteI16BE appends a big-endian int16.
func (w *Writer) WriteI16BE(v int16) { w.WriteU16BE(uint16(v)) }

// WriteI32BE appends a big-endian int32.
func (w *Writer) WriteI32BE(v int32) { w.WriteU32BE(uint32(v)) }

// WriteI64BE appends a big-endian int64.
func (w *Writer) WriteI64BE(v int64) { w.WriteU64BE(uint64(v)) }

// WriteF32BE appends a big-endian IEEE-754 float32.
func (w *Writer) WriteF32BE(v float32) { w.WriteU32BE(math.Float32bits(v)) }

// WriteF64BE appends a big-endian IEEE-754 float64.
func (w *Writer) WriteF64BE(v float64) { w.WriteU64BE(math.Float64bits(v)) }

// WriteVarint appends an unsigned value as LEB128, up to 10 bytes.
func (w *Writer) WriteVarint(v uint64) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// WriteVarint32 appends an unsigned 32-bit value as LEB128, up to 5 bytes.
func (w *Writer) WriteVarint32(v uint32) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// LEWriter is a little-endian growable writer used for split streams:
// every variable/singleton stream is stored little-endian and host-native
// irrespective of the Thrift wire format being parsed.
type LEWriter struct {
	buf   []byte
	width int
}

// NewLEWriter creates a little-endian stream writer with a fixed element
// width (1, 2, 4, or 8 bytes). Width 0 means the stream only ever receives
// raw byte runs (string or container variable streams); the serial
// singletons such as BINARY or TYPES are created with width 1.
func NewLEWriter(width int) *LEWriter {
	return &LEWriter{width: width}
}

// Len returns the number of bytes written.
func (w *LEWriter) Len() int { return len(w.buf) }

// Bytes returns the written bytes.
func (w *LEWriter) Bytes() []byte { return w.buf }

// Width returns the stream's declared element width.
func (w *LEWriter) Width() int { return w.width }

// Reserve pre-grows the backing array by n bytes without changing Len,
// mirroring the "reserve then commit" pattern the original hot-path
// batching relies on to avoid a bounds check per element.
func (w *LEWriter) Reserve(n int) {
	if cap(w.buf)-len(w.buf) >= n {
		return
	}
	grown := make([]byte, len(w.buf), len(w.buf)+n)
	copy(grown, w.buf)
	w.buf = grown
}

// WriteRaw appends bytes as-is (used for BINARY/TYPES/serial streams).
func (w *LEWriter) WriteRaw(b []byte) { w.buf = append(w.buf, b...) }

// WriteU8 appends a single byte.
func (w *LEWriter) WriteU8(v uint8) { w.buf = append(w.buf, v) }

// WriteU16 appends a little-endian uint16.
func (w *LEWriter) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU32 appends a little-endian uint32.
func (w *LEWriter) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU64 appends a little-endian uint64.
func (w *LEWriter) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteI16 appends a little-endian int16.
func (w *LEWriter) WriteI16(v int16) { w.WriteU16(uint16(v)) }

// WriteI32 appends a little-endian int32.
func (w *LEWriter) WriteI32(v int32) { w.WriteU32(uint32(v)) }

// WriteI64 appends a little-endian int64.
func (w *LEWriter) WriteI64(v int64) { w.WriteU64(uint64(v)) }

// WriteF32 appends a little-endian IEEE-754 float32.
func (w *LEWriter) WriteF32(v float32) { w.WriteU32(math.Float32bits(v)) }

// WriteF64 appends a little-endian IEEE-754 float64.
func (w *LEWriter) WriteF64(v float64) { w.WriteU64(math.Float64bits(v)) }
