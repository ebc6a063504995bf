package thriftsplit

import "thriftsplit/internal/tcore"

// ConfigBuilder incrementally assembles an EncoderConfig: paths and
// clusters are added one at a time until Finalize hands back an
// immutable config. The construction logic lives in internal/tcore,
// alongside the config types it builds; this is the public entry
// point callers outside the module use to reach it.
type ConfigBuilder = tcore.ConfigBuilder

// NewConfigBuilder starts a builder with a T_STRUCT root, format
// version 10, and no TulipV2 framing.
func NewConfigBuilder() *ConfigBuilder {
	return tcore.NewConfigBuilder()
}

// Re-exported config/type vocabulary so callers don't need to import
// internal/tcore directly to build paths and configs.
type (
	TType         = tcore.TType
	NodeID        = tcore.NodeID
	Path          = tcore.Path
	LogicalID     = tcore.LogicalID
	SingletonID   = tcore.SingletonID
	EncoderConfig = tcore.EncoderConfig
	DecoderConfig = tcore.DecoderConfig
)

// Thrift type constants, re-exported for config construction.
const (
	TStop   = tcore.TStop
	TBool   = tcore.TBool
	TByte   = tcore.TByte
	TI16    = tcore.TI16
	TI32    = tcore.TI32
	TI64    = tcore.TI64
	TDouble = tcore.TDouble
	TFloat  = tcore.TFloat
	TString = tcore.TString
	TMap    = tcore.TMap
	TList   = tcore.TList
	TSet    = tcore.TSet
	TStruct = tcore.TStruct
)

// Structural sentinel node ids, re-exported for path construction.
const (
	MapKey        = tcore.MapKey
	MapValue      = tcore.MapValue
	ListElem      = tcore.ListElem
	Stop          = tcore.Stop
	Root          = tcore.Root
	Length        = tcore.Length
	MessageHeader = tcore.MessageHeader
)

// Format-version gates a caller configuring clusters, TulipV2, or VSF
// strings must honour.
const (
	MinFormatVersionEncode    = tcore.MinFormatVersionEncode
	MinFormatVersionTulipV2   = tcore.MinFormatVersionTulipV2
	MinFormatVersionClusters  = tcore.MinFormatVersionClusters
	MinFormatVersionStringVSF = tcore.MinFormatVersionStringVSF
)
