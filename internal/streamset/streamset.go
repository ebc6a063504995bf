// Package streamset holds the fixed singleton streams and the dynamic
// variable streams that a split Thrift message is decomposed into, and
// the bookkeeping needed to concatenate/re-split clustered streams.
package streamset

import (
	"fmt"
	"strings"

	"thriftsplit/internal/tcore"
	"thriftsplit/internal/wire"
)

// WriteStream accumulates one output stream during encoding. Width 1
// marks a byte-serial stream (TYPES, BOOL, INT8, BINARY, CONFIG, or a
// BOOL/BYTE variable stream); width 0 marks a string or container
// variable stream that only receives raw byte runs; widths 2, 4 and 8
// are fixed-width numeric streams written little-endian.
type WriteStream struct {
	w    *wire.LEWriter
	Type tcore.TType
}

// NewWriteStream creates a stream sized for t's element width. Width 0
// (container/string types, or TStop used for "opaque bytes") produces
// a pure byte-append stream.
func NewWriteStream(t tcore.TType) *WriteStream {
	return &WriteStream{w: wire.NewLEWriter(t.Width()), Type: t}
}

// NBytes returns the number of bytes written so far.
func (s *WriteStream) NBytes() int { return s.w.Len() }

// Width returns the element width this stream was created with.
func (s *WriteStream) Width() int { return s.w.Width() }

// WriteBytes appends raw bytes, for serial/string streams.
func (s *WriteStream) WriteBytes(b []byte) { s.w.WriteRaw(b) }

// Writer exposes the underlying little-endian writer for typed numeric
// appends (WriteU8/WriteI16/WriteF32/...).
func (s *WriteStream) Writer() *wire.LEWriter { return s.w }

// Bytes returns the stream's accumulated content.
func (s *WriteStream) Bytes() []byte { return s.w.Bytes() }

// String renders a short hex preview for diagnostics.
func (s *WriteStream) String() string {
	b := s.w.Bytes()
	const max = 64
	if len(b) <= max {
		return fmt.Sprintf("%s[%d]{%x}", s.Type, len(b), b)
	}
	return fmt.Sprintf("%s[%d]{%x...}", s.Type, len(b), b[:max])
}

// ReadStream reads sequentially from one pre-split input stream during
// decoding. Streams are little-endian and host-native, matching
// WriteStream; only the wire reader the protocol packages use for raw
// Thrift bytes deals in big-endian.
type ReadStream struct {
	r    *wire.LEReader
	Type tcore.TType
}

// NewReadStream wraps buf, tagged with the type it was split by.
func NewReadStream(buf []byte, t tcore.TType) *ReadStream {
	width := t.Width()
	if width == 0 {
		width = 1
	}
	return &ReadStream{r: wire.NewLEReader(buf, width), Type: t}
}

// Reader exposes the underlying little-endian reader for typed reads.
func (s *ReadStream) Reader() *wire.LEReader { return s.r }

// Remaining returns the number of unread bytes.
func (s *ReadStream) Remaining() int { return s.r.Remaining() }

// ReadBytes reads n raw bytes.
func (s *ReadStream) ReadBytes(n int) ([]byte, error) { return s.r.ReadRaw(n) }

// String renders a short preview for diagnostics.
func (s *ReadStream) String() string {
	return fmt.Sprintf("%s[remaining=%d]", s.Type, s.r.Remaining())
}

// WriteStreamSet holds every stream the encoder writes into: the fixed
// singleton family plus one variable stream (and, for VSF outcomes, a
// parallel length stream) per configured logical id.
type WriteStreamSet struct {
	singletons   map[tcore.SingletonID]*WriteStream
	variables    map[tcore.LogicalID]*WriteStream
	stringLens   map[tcore.LogicalID]*WriteStream
	clusterLens  *WriteStream
	config       *tcore.BaseConfig
	formatVer    int
}

// singletonTypes gives the TType each fixed stream is created with, per
// the width table in spec.md §3.
var singletonTypes = map[tcore.SingletonID]tcore.TType{
	tcore.Types:        tcore.TByte,
	tcore.FieldDeltas:  tcore.TI16,
	tcore.Lengths:      tcore.TI32,
	tcore.Bool:         tcore.TByte,
	tcore.Int8:         tcore.TByte,
	tcore.Int16:        tcore.TI16,
	tcore.Int32:        tcore.TI32,
	tcore.Int64:        tcore.TI64,
	tcore.Float32:      tcore.TFloat,
	tcore.Float64:      tcore.TDouble,
	tcore.Binary:       tcore.TByte,
	tcore.ConfigStream: tcore.TByte,
}

// NewWriteStreamSet allocates every singleton stream and one variable
// stream (plus string-length companion, for T_STRING streams) per
// logical id in config.
func NewWriteStreamSet(config *tcore.BaseConfig, formatVersion int) *WriteStreamSet {
	ss := &WriteStreamSet{
		singletons:  make(map[tcore.SingletonID]*WriteStream, tcore.NumSingletonIDs),
		variables:   make(map[tcore.LogicalID]*WriteStream),
		stringLens:  make(map[tcore.LogicalID]*WriteStream),
		clusterLens: NewWriteStream(tcore.TI32),
		config:      config,
		formatVer:   formatVersion,
	}
	for id, t := range singletonTypes {
		ss.singletons[id] = NewWriteStream(t)
	}
	types := make(map[tcore.LogicalID]tcore.TType)
	for _, p := range config.Paths() {
		types[p.Info.ID] = p.Info.Type
	}
	for id, t := range types {
		ss.variables[id] = NewWriteStream(t)
		if t == tcore.TString {
			ss.stringLens[id] = NewWriteStream(tcore.TI32)
		}
	}
	return ss
}

// Singleton returns the fixed stream identified by id.
func (ss *WriteStreamSet) Singleton(id tcore.SingletonID) *WriteStream {
	return ss.singletons[id]
}

// Variable returns the stream for a configured logical id.
func (ss *WriteStreamSet) Variable(id tcore.LogicalID) *WriteStream {
	return ss.variables[id]
}

// StringLength returns the companion length stream for a T_STRING
// variable stream split in VSF mode.
func (ss *WriteStreamSet) StringLength(id tcore.LogicalID) *WriteStream {
	return ss.stringLens[id]
}

// ClusterLengths returns the single trailing stream recording every
// clustered stream's emitted chunk size.
func (ss *WriteStreamSet) ClusterLengths() *WriteStream { return ss.clusterLens }

// String renders every stream's preview, sorted for determinism.
func (ss *WriteStreamSet) String() string {
	var b strings.Builder
	for id := tcore.SingletonID(0); int(id) < tcore.NumSingletonIDs; id++ {
		fmt.Fprintf(&b, "%s: %s\n", id, ss.singletons[id])
	}
	for _, lid := range ss.config.LogicalIDs() {
		fmt.Fprintf(&b, "logical[%d]: %s\n", lid, ss.variables[lid])
	}
	return b.String()
}

// ReadStreamSet holds the decoder's view of the same family of
// streams, each pre-populated with the bytes the host handed back.
type ReadStreamSet struct {
	singletons  map[tcore.SingletonID]*ReadStream
	variables   map[tcore.LogicalID]*ReadStream
	stringLens  map[tcore.LogicalID]*ReadStream
	clusterLens *ReadStream
	config      *tcore.BaseConfig
	formatVer   int
}

// SingletonInput is one named singleton stream's raw bytes, as handed
// to the decoder by the host.
type SingletonInput struct {
	ID    tcore.SingletonID
	Bytes []byte
}

// VariableInput is one named variable stream's raw bytes (and, for a
// VSF string stream, its companion length bytes), as handed to the
// decoder by the host. Clustered streams are not passed this way; their
// combined buffers are re-split by SplitFixedWidthCluster or
// SplitStringCluster.
type VariableInput struct {
	ID         tcore.LogicalID
	Bytes      []byte
	LenBytes   []byte // non-nil only for VSF string streams
}

// NewReadStreamSet wraps the host-supplied buffers for each stream.
// singletonBytes and variableInputs must together cover the streams
// config declares; unclustered members simply have their own
// VariableInput, while clustered members are installed afterwards by
// SplitFixedWidthCluster or SplitStringCluster, which slice each
// cluster's combined buffer using clusterLengthBytes.
func NewReadStreamSet(
	config *tcore.BaseConfig,
	formatVersion int,
	singletonBytes []SingletonInput,
	variableInputs []VariableInput,
	clusterLengthBytes []byte,
) (*ReadStreamSet, error) {
	rs := &ReadStreamSet{
		singletons: make(map[tcore.SingletonID]*ReadStream, tcore.NumSingletonIDs),
		variables:  make(map[tcore.LogicalID]*ReadStream),
		stringLens: make(map[tcore.LogicalID]*ReadStream),
		config:     config,
		formatVer:  formatVersion,
	}
	for _, in := range singletonBytes {
		t, ok := singletonTypes[in.ID]
		if !ok {
			return nil, tcore.NewCorruptError(nil, "unknown singleton stream %s", in.ID)
		}
		rs.singletons[in.ID] = NewReadStream(in.Bytes, t)
	}
	types := make(map[tcore.LogicalID]tcore.TType)
	for _, p := range config.Paths() {
		types[p.Info.ID] = p.Info.Type
	}
	for _, in := range variableInputs {
		t, ok := types[in.ID]
		if !ok {
			return nil, tcore.NewCorruptError(nil, "unknown logical stream %d", in.ID)
		}
		rs.variables[in.ID] = NewReadStream(in.Bytes, t)
		if in.LenBytes != nil {
			rs.stringLens[in.ID] = NewReadStream(in.LenBytes, tcore.TI32)
		}
	}
	rs.clusterLens = NewReadStream(clusterLengthBytes, tcore.TI32)
	return rs, nil
}

// Singleton returns the fixed stream identified by id.
func (rs *ReadStreamSet) Singleton(id tcore.SingletonID) *ReadStream {
	return rs.singletons[id]
}

// Variable returns the stream for a configured logical id.
func (rs *ReadStreamSet) Variable(id tcore.LogicalID) *ReadStream {
	return rs.variables[id]
}

// StringLength returns the companion length stream for a T_STRING
// variable stream split in VSF mode.
func (rs *ReadStreamSet) StringLength(id tcore.LogicalID) *ReadStream {
	return rs.stringLens[id]
}

// ClusterLengths returns the single shared stream of per-member chunk
// sizes used to re-split clustered streams.
func (rs *ReadStreamSet) ClusterLengths() *ReadStream { return rs.clusterLens }
