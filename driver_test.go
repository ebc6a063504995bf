package thriftsplit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"thriftsplit/internal/streamset"
	"thriftsplit/internal/tcore"
)

// singletonsOf collects every singleton stream out of a populated
// WriteStreamSet, the shape Decode expects back from a host.
func singletonsOf(ws *streamset.WriteStreamSet) []streamset.SingletonInput {
	out := make([]streamset.SingletonInput, tcore.NumSingletonIDs)
	for id := 0; id < tcore.NumSingletonIDs; id++ {
		sid := tcore.SingletonID(id)
		out[id] = streamset.SingletonInput{ID: sid, Bytes: ws.Singleton(sid).Bytes()}
	}
	return out
}

func TestEncodeDecodeRoundTripMinimalStruct(t *testing.T) {
	// { 1: i32 = 42 } encoded as TCompact: field header (delta=1,
	// type=I32), zigzag varint 42, stop byte.
	src := []byte{0x15, 0x54, 0x00}

	config, err := NewConfigBuilder().Finalize()
	require.NoError(t, err)

	out, err := Encode(src, FormatCompact, config)
	require.NoError(t, err)
	require.Empty(t, out.Clusters)

	in := DecodeInput{
		Singletons:     singletonsOf(out.Streams),
		ClusterLengths: out.Streams.ClusterLengths().Bytes(),
	}
	got, err := Decode(in, FormatCompact)
	require.NoError(t, err)
	require.Equal(t, src, got)
}

func TestEncodeDecodeRoundTripWithConfiguredPath(t *testing.T) {
	src := []byte{0x15, 0x54, 0x00}

	b := NewConfigBuilder()
	b.AddPath(Path{NodeID(1)}, TI32)
	config, err := b.Finalize()
	require.NoError(t, err)

	out, err := Encode(src, FormatCompact, config)
	require.NoError(t, err)

	in := DecodeInput{
		Singletons:     singletonsOf(out.Streams),
		ClusterLengths: out.Streams.ClusterLengths().Bytes(),
	}
	for _, lid := range config.UnclusteredStreams() {
		in.Variables = append(in.Variables, streamset.VariableInput{
			ID:    lid,
			Bytes: out.Streams.Variable(lid).Bytes(),
		})
	}
	got, err := Decode(in, FormatCompact)
	require.NoError(t, err)
	require.Equal(t, src, got)
}

func TestEncodeDecodeRoundTripWithCluster(t *testing.T) {
	// { 1: i32 = 11, 2: i32 = 22 }, both fields sharing one cluster.
	src := []byte{0x15, 0x16, 0x15, 0x2c, 0x00}

	b := NewConfigBuilder()
	b.AddPath(Path{NodeID(1)}, TI32)
	b.AddPath(Path{NodeID(2)}, TI32)
	idx := b.AddEmptyCluster(1)
	require.NoError(t, b.AddPathToCluster(Path{NodeID(1)}, idx))
	require.NoError(t, b.AddPathToCluster(Path{NodeID(2)}, idx))
	config, err := b.Finalize()
	require.NoError(t, err)

	out, err := Encode(src, FormatCompact, config)
	require.NoError(t, err)
	require.Len(t, out.Clusters, 1)
	require.Equal(t, tcore.OutcomeNumeric, out.Clusters[0].Outcome)

	in := DecodeInput{
		Singletons:     singletonsOf(out.Streams),
		ClusterLengths: out.Streams.ClusterLengths().Bytes(),
		ClusterData:    [][]byte{out.Clusters[0].Data},
		ClusterLenData: [][]byte{nil},
	}
	got, err := Decode(in, FormatCompact)
	require.NoError(t, err)
	require.Equal(t, src, got)
}

func TestEncodeDecodeRoundTripBinaryFormat(t *testing.T) {
	// { 1: i32 = 42 } as TBinary: T_I32 type byte (0x08), 2-byte field
	// id, 4-byte value, T_STOP.
	src := []byte{0x08, 0x00, 0x01, 0x00, 0x00, 0x00, 0x2a, 0x00}

	config, err := NewConfigBuilder().Finalize()
	require.NoError(t, err)

	out, err := Encode(src, FormatBinary, config)
	require.NoError(t, err)
	require.Empty(t, out.Clusters)

	in := DecodeInput{
		Singletons:     singletonsOf(out.Streams),
		ClusterLengths: out.Streams.ClusterLengths().Bytes(),
	}
	got, err := Decode(in, FormatBinary)
	require.NoError(t, err)
	require.Equal(t, src, got)
}

func TestEncodeTypesStreamMatchesAcrossFormats(t *testing.T) {
	// The same logical { 1: i32 = 42 } message encoded in both wire
	// formats must emit the same tcore.TType byte into the TYPES
	// singleton: TCompact reaches it through its CType table, TBinary
	// through its wire-byte translation table, and the two must agree.
	compactSrc := []byte{0x15, 0x54, 0x00}
	binarySrc := []byte{0x08, 0x00, 0x01, 0x00, 0x00, 0x00, 0x2a, 0x00}

	config, err := NewConfigBuilder().Finalize()
	require.NoError(t, err)

	compactOut, err := Encode(compactSrc, FormatCompact, config)
	require.NoError(t, err)
	binaryOut, err := Encode(binarySrc, FormatBinary, config)
	require.NoError(t, err)

	require.Equal(t,
		compactOut.Streams.Singleton(tcore.Types).Bytes(),
		binaryOut.Streams.Singleton(tcore.Types).Bytes(),
	)
}

func TestEncodeRejectsUnknownFormat(t *testing.T) {
	config, err := NewConfigBuilder().Finalize()
	require.NoError(t, err)
	_, err = Encode([]byte{0x00}, Format(99), config)
	require.Error(t, err)
}

func TestDecodeRequiresConfigStream(t *testing.T) {
	_, err := Decode(DecodeInput{}, FormatCompact)
	require.Error(t, err)
}
