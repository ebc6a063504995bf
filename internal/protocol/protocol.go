// Package protocol implements the two Thrift wire-format parsers —
// TCompact and TBinary — as a matched pair of recursive-descent walks
// over a configured path tree: advance() consumes wire bytes and
// populates split streams, its mirror unparse() consumes split streams
// and reconstructs wire bytes. Both protocols share the same traversal
// shape (struct/list/map/primitive dispatch); only header encoding and
// primitive value framing differ, so the two live in sibling files
// (compact.go, binary.go) rather than behind a shared interface.
package protocol

import (
	"thriftsplit/internal/pathtree"
	"thriftsplit/internal/streamset"
	"thriftsplit/internal/tcore"
)

// listInfo is the decoded shape of a list/set header, common to both
// wire formats.
type listInfo struct {
	size     uint32
	elemType tcore.TType
}

// mapInfo is the decoded shape of a map header, common to both wire
// formats.
type mapInfo struct {
	size              uint32
	keyType, valueType tcore.TType
}

// resolveWriteTarget dereferences a path-tree target against the
// encoder's set of output streams.
func resolveWriteTarget(ws *streamset.WriteStreamSet, t pathtree.Target) *streamset.WriteStream {
	switch t.Kind {
	case pathtree.SingletonTarget:
		return ws.Singleton(t.Singleton)
	case pathtree.LogicalTarget:
		return ws.Variable(t.Logical)
	case pathtree.StringLengthTarget:
		return ws.StringLength(t.Logical)
	default:
		return nil
	}
}

// resolveReadTarget dereferences a path-tree target against the
// decoder's set of input streams.
func resolveReadTarget(rs *streamset.ReadStreamSet, t pathtree.Target) *streamset.ReadStream {
	switch t.Kind {
	case pathtree.SingletonTarget:
		return rs.Singleton(t.Singleton)
	case pathtree.LogicalTarget:
		return rs.Variable(t.Logical)
	case pathtree.StringLengthTarget:
		return rs.StringLength(t.Logical)
	default:
		return nil
	}
}

// EncodeCompact builds the configured path tree for config and walks
// src as a sequence of TCompact messages, splitting it into the
// returned stream set. It walks repeatedly until src is exhausted,
// supporting concatenated messages in the same buffer.
func EncodeCompact(src []byte, config *tcore.EncoderConfig) (*streamset.WriteStreamSet, error) {
	tree, err := pathtree.Build(&config.BaseConfig, config.MinFormatVersion, tcore.MaxEncodeDepth)
	if err != nil {
		return nil, err
	}
	enc := NewCompactEncoder(src, config, tree)
	if err := enc.Parse(); err != nil {
		return nil, err
	}
	return enc.Streams(), nil
}

// EncodeBinary is EncodeCompact's TBinary counterpart.
func EncodeBinary(src []byte, config *tcore.EncoderConfig) (*streamset.WriteStreamSet, error) {
	tree, err := pathtree.Build(&config.BaseConfig, config.MinFormatVersion, tcore.MaxEncodeDepth)
	if err != nil {
		return nil, err
	}
	enc := NewBinaryEncoder(src, config, tree)
	if err := enc.Parse(); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// DecodeCompact rebuilds the original TCompact bytes from rs. formatVersion
// is the format version the bytes were originally split under (the
// decoder config itself carries no version, since the same split
// streams may be replayed under a host-chosen decode path); it governs
// only path-tree shape (whether T_STRING paths get a VSF length
// companion).
func DecodeCompact(rs *streamset.ReadStreamSet, config *tcore.DecoderConfig, formatVersion int) ([]byte, error) {
	tree, err := pathtree.Build(&config.BaseConfig, formatVersion, tcore.MaxDecodeDepth)
	if err != nil {
		return nil, err
	}
	dec := NewCompactDecoder(rs, config, tree)
	if err := dec.Unparse(); err != nil {
		return nil, err
	}
	return dec.Bytes(), nil
}

// DecodeBinary is DecodeCompact's TBinary counterpart.
func DecodeBinary(rs *streamset.ReadStreamSet, config *tcore.DecoderConfig, formatVersion int) ([]byte, error) {
	tree, err := pathtree.Build(&config.BaseConfig, formatVersion, tcore.MaxDecodeDepth)
	if err != nil {
		return nil, err
	}
	dec := NewBinaryDecoder(rs, config, tree)
	if err := dec.Unparse(); err != nil {
		return nil, err
	}
	return dec.Bytes(), nil
}
