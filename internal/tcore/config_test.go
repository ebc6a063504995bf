package tcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigBuilderAssignsStableLogicalIDs(t *testing.T) {
	b := NewConfigBuilder()
	path := Path{NodeID(1)}
	id1 := b.AddPath(path, TI32)
	id2 := b.AddPath(path, TI32)
	require.Equal(t, id1, id2, "re-adding the same path must return the same logical id")

	cfg, err := b.Finalize()
	require.NoError(t, err)
	require.Equal(t, TStruct, cfg.RootType())
	require.Equal(t, []LogicalID{id1}, cfg.LogicalIDs())
}

func TestConfigBuilderRejectsMixedTypeCluster(t *testing.T) {
	b := NewConfigBuilder()
	idx := b.AddEmptyCluster(1)
	b.AddPath(Path{NodeID(1)}, TI32)
	b.AddPath(Path{NodeID(2)}, TString)
	require.NoError(t, b.AddPathToCluster(Path{NodeID(1)}, idx))
	require.NoError(t, b.AddPathToCluster(Path{NodeID(2)}, idx))

	_, err := b.Finalize()
	require.Error(t, err, "a cluster spanning two Thrift types must fail validation")
}

func TestConfigBuilderEmptyClustersAreDroppedNotRejected(t *testing.T) {
	b := NewConfigBuilder()
	b.AddEmptyCluster(1)
	cfg, err := b.Finalize()
	require.NoError(t, err)
	require.Empty(t, cfg.Clusters())
}

func TestConfigBuilderTulipV2RequiresVersionBump(t *testing.T) {
	b := NewConfigBuilder()
	b.SetShouldParseTulipV2()
	cfg, err := b.Finalize()
	require.NoError(t, err)
	require.True(t, cfg.ParseTulipV2)
	require.GreaterOrEqual(t, cfg.MinFormatVersion, MinFormatVersionTulipV2)
}

func TestConfigRejectsSplittingLengthWithoutData(t *testing.T) {
	b := NewConfigBuilder()
	b.AddPath(Path{NodeID(1), Length}, TU32)
	_, err := b.Finalize()
	require.Error(t, err, "a length split with no configured data path at the same prefix is unsupported")
}

func TestBaseConfigUnclusteredStreamsExcludesClusterMembers(t *testing.T) {
	b := NewConfigBuilder()
	b.AddPath(Path{NodeID(1)}, TI32)
	b.AddPath(Path{NodeID(2)}, TI32)
	idx := b.AddEmptyCluster(1)
	require.NoError(t, b.AddPathToCluster(Path{NodeID(1)}, idx))

	cfg, err := b.Finalize()
	require.NoError(t, err)

	unclustered := cfg.UnclusteredStreams()
	require.Len(t, unclustered, 1)
	typ, ok := cfg.TypeAt(Path{NodeID(2)})
	require.True(t, ok)
	require.Equal(t, TI32, typ)
}
