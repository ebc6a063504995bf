// Package thriftsplit is a configurable Thrift splitter/unsplitter: a
// bidirectional codec that decomposes a self-describing Thrift message
// (TCompact or TBinary wire format, with an optional TulipV2 framing
// header) into a fixed family of singleton streams plus a configurable
// family of variable streams keyed by structural path, and losslessly
// recombines them.
//
// The package itself does no I/O; it hands back in-memory stream
// buffers and expects the same back on decode. Persisting those
// buffers (to files, to a compression graph, to a network peer) is a
// host concern, not this package's — see cmd/thriftsplit for one
// concrete host.
package thriftsplit

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"thriftsplit/internal/protocol"
	"thriftsplit/internal/streamset"
	"thriftsplit/internal/tcore"
)

// Format selects which Thrift wire format a message is encoded in.
type Format int

const (
	FormatCompact Format = iota
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatCompact:
		return "compact"
	case FormatBinary:
		return "binary"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// EncodeOutput bundles everything a host must persist after Encode:
// the populated stream set plus, for every configured cluster, its
// concatenated content ready for the host to write as one blob.
type EncodeOutput struct {
	Streams  *streamset.WriteStreamSet
	Clusters []streamset.ClusterOutput
}

// Encode splits src (a wire-format Thrift message, or several
// concatenated back to back) according to config. The original byte
// count and the TulipV2 flag are captured into a decoder config that
// travels back out inside the CONFIG singleton stream, so Decode needs
// nothing from the caller beyond the streams themselves.
func Encode(src []byte, format Format, config *tcore.EncoderConfig) (*EncodeOutput, error) {
	var ws *streamset.WriteStreamSet
	var err error
	switch format {
	case FormatCompact:
		ws, err = protocol.EncodeCompact(src, config)
	case FormatBinary:
		ws, err = protocol.EncodeBinary(src, config)
	default:
		return nil, fmt.Errorf("thriftsplit: unknown format %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("thriftsplit: encode: %w", err)
	}

	clusters, err := streamset.FinalizeClusters(ws, &config.BaseConfig, config.MinFormatVersion)
	if err != nil {
		return nil, fmt.Errorf("thriftsplit: encode: finalizing clusters: %w", err)
	}

	cfgBytes, err := marshalDecoderConfig(config, uint64(len(src)))
	if err != nil {
		return nil, fmt.Errorf("thriftsplit: encode: serializing config: %w", err)
	}
	ws.Singleton(tcore.ConfigStream).WriteBytes(cfgBytes)

	return &EncodeOutput{Streams: ws, Clusters: clusters}, nil
}

// DecodeInput is everything a host must hand back to Decode: the raw
// singleton streams (CONFIG among them), the unclustered variable
// streams, and, per configured cluster (in declared order), its
// combined content plus — for string clusters only — its combined VSF
// length array. ClusterLengths is the single shared segment-length
// stream spanning every cluster.
type DecodeInput struct {
	Singletons     []streamset.SingletonInput
	Variables      []streamset.VariableInput
	ClusterData    [][]byte
	ClusterLenData [][]byte
	ClusterLengths []byte
}

// Decode reverses Encode: it recovers the decoder config from the
// CONFIG singleton stream, re-splits any clustered streams, and walks
// the wire format's unparser to reconstruct the original bytes.
func Decode(in DecodeInput, format Format) ([]byte, error) {
	cfgBytes, err := findSingleton(in.Singletons, tcore.ConfigStream)
	if err != nil {
		return nil, fmt.Errorf("thriftsplit: decode: %w", err)
	}
	base, decConfig, formatVersion, err := unmarshalDecoderConfig(cfgBytes)
	if err != nil {
		return nil, fmt.Errorf("thriftsplit: decode: parsing config: %w", err)
	}

	rs, err := streamset.NewReadStreamSet(base, formatVersion, in.Singletons, in.Variables, in.ClusterLengths)
	if err != nil {
		return nil, fmt.Errorf("thriftsplit: decode: %w", err)
	}

	for idx, cluster := range base.Clusters() {
		if idx >= len(in.ClusterData) {
			return nil, fmt.Errorf("thriftsplit: decode: missing data for cluster %d", idx)
		}
		memberType, err := base.ClusterType(idx)
		if err != nil {
			return nil, fmt.Errorf("thriftsplit: decode: %w", err)
		}
		if memberType == tcore.TString {
			var lenData []byte
			if idx < len(in.ClusterLenData) {
				lenData = in.ClusterLenData[idx]
			}
			if err := streamset.SplitStringCluster(rs, cluster, in.ClusterData[idx], lenData); err != nil {
				return nil, fmt.Errorf("thriftsplit: decode: cluster %d: %w", idx, err)
			}
			continue
		}
		if err := streamset.SplitFixedWidthCluster(rs, cluster, memberType, in.ClusterData[idx], formatVersion); err != nil {
			return nil, fmt.Errorf("thriftsplit: decode: cluster %d: %w", idx, err)
		}
	}

	var out []byte
	switch format {
	case FormatCompact:
		out, err = protocol.DecodeCompact(rs, decConfig, formatVersion)
	case FormatBinary:
		out, err = protocol.DecodeBinary(rs, decConfig, formatVersion)
	default:
		return nil, fmt.Errorf("thriftsplit: unknown format %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("thriftsplit: decode: %w", err)
	}
	return out, nil
}

func findSingleton(in []streamset.SingletonInput, id tcore.SingletonID) ([]byte, error) {
	for _, s := range in {
		if s.ID == id {
			return s.Bytes, nil
		}
	}
	return nil, fmt.Errorf("missing singleton stream %s", id)
}

// configDTO is the plain, fully-exported shape of a decoder config that
// travels through gob; tcore.BaseConfig's internal path map is
// unexported, so the wire representation is reconstructed from its
// accessors on encode and rebuilt through NewBaseConfig on decode.
type configDTO struct {
	Paths                 []pathEntryDTO
	RootType              tcore.TType
	Clusters              []tcore.LogicalCluster
	MinFormatVersion      int
	OriginalSize          uint64
	UnparseMessageHeaders bool
}

type pathEntryDTO struct {
	Path tcore.Path
	Info tcore.PathInfo
}

func marshalDecoderConfig(config *tcore.EncoderConfig, originalSize uint64) ([]byte, error) {
	entries := config.Paths()
	dto := configDTO{
		Paths:                 make([]pathEntryDTO, len(entries)),
		RootType:              config.RootType(),
		Clusters:              config.Clusters(),
		MinFormatVersion:      config.MinFormatVersion,
		OriginalSize:          originalSize,
		UnparseMessageHeaders: config.ParseTulipV2,
	}
	for i, e := range entries {
		dto.Paths[i] = pathEntryDTO{Path: e.Path, Info: e.Info}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(dto); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unmarshalDecoderConfig(raw []byte) (*tcore.BaseConfig, *tcore.DecoderConfig, int, error) {
	var dto configDTO
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&dto); err != nil {
		return nil, nil, 0, err
	}
	paths := make([]struct {
		Path tcore.Path
		Info tcore.PathInfo
	}, len(dto.Paths))
	for i, e := range dto.Paths {
		paths[i] = struct {
			Path tcore.Path
			Info tcore.PathInfo
		}{Path: e.Path, Info: e.Info}
	}
	base, err := tcore.NewBaseConfig(paths, dto.RootType, dto.Clusters)
	if err != nil {
		return nil, nil, 0, err
	}
	decConfig, err := tcore.NewDecoderConfig(base, dto.OriginalSize, dto.UnparseMessageHeaders)
	if err != nil {
		return nil, nil, 0, err
	}
	return base, decConfig, dto.MinFormatVersion, nil
}
