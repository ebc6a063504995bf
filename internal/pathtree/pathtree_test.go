package pathtree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"thriftsplit/internal/tcore"
)

func baseConfigWithPath(t *testing.T, path tcore.Path, typ tcore.TType, id tcore.LogicalID) *tcore.BaseConfig {
	t.Helper()
	paths := []struct {
		Path tcore.Path
		Info tcore.PathInfo
	}{
		{Path: path, Info: tcore.PathInfo{ID: id, Type: typ}},
	}
	base, err := tcore.NewBaseConfig(paths, tcore.TStruct, nil)
	require.NoError(t, err)
	return base
}

func TestBuildRoutesConfiguredPathToLogicalTarget(t *testing.T) {
	base := baseConfigWithPath(t, tcore.Path{tcore.NodeID(1)}, tcore.TI32, 7)
	tree, err := Build(base, tcore.MinFormatVersionEncode, tcore.MaxEncodeDepth)
	require.NoError(t, err)

	root, err := tree.Root()
	require.NoError(t, err)
	require.Equal(t, tcore.TStruct, root.Type())

	field, err := root.Child(tcore.NodeID(1), tcore.TI32)
	require.NoError(t, err)
	require.Equal(t, tcore.TI32, field.Type())
	target := field.Target()
	require.Equal(t, LogicalTarget, target.Kind)
	require.Equal(t, tcore.LogicalID(7), target.Logical)
}

func TestBuildUnconfiguredPrimitiveFallsBackToSingleton(t *testing.T) {
	base := baseConfigWithPath(t, tcore.Path{tcore.NodeID(1)}, tcore.TI32, 0)
	tree, err := Build(base, tcore.MinFormatVersionEncode, tcore.MaxEncodeDepth)
	require.NoError(t, err)

	root, err := tree.Root()
	require.NoError(t, err)

	// Field 2 was never configured; it must fall back to the per-type
	// singleton, here int16.
	field, err := root.Child(tcore.NodeID(2), tcore.TI16)
	require.NoError(t, err)
	target := field.Target()
	require.Equal(t, SingletonTarget, target.Kind)
	require.Equal(t, tcore.Int16, target.Singleton)
}

func TestBuildUnconfiguredStringFallsBackToBinarySingleton(t *testing.T) {
	base := baseConfigWithPath(t, tcore.Path{tcore.NodeID(1)}, tcore.TI32, 0)
	tree, err := Build(base, tcore.MinFormatVersionEncode, tcore.MaxEncodeDepth)
	require.NoError(t, err)

	root, err := tree.Root()
	require.NoError(t, err)

	field, err := root.Child(tcore.NodeID(3), tcore.TString)
	require.NoError(t, err)
	target := field.Target()
	require.Equal(t, SingletonTarget, target.Kind)
	require.Equal(t, tcore.Binary, target.Singleton)
}

func TestIteratorListElemAndMapKeyValueCoerceSetToList(t *testing.T) {
	base := baseConfigWithPath(t, tcore.Path{tcore.NodeID(1)}, tcore.TI32, 0)
	tree, err := Build(base, tcore.MinFormatVersionEncode, tcore.MaxEncodeDepth)
	require.NoError(t, err)

	root, err := tree.Root()
	require.NoError(t, err)

	list, err := root.Child(tcore.NodeID(5), tcore.TSet)
	require.NoError(t, err)
	require.Equal(t, tcore.TList, list.Type(), "SET must be coerced to LIST everywhere")

	elem, err := list.ListElem(tcore.TI32)
	require.NoError(t, err)
	require.Equal(t, tcore.TI32, elem.Type())

	m, err := root.Child(tcore.NodeID(6), tcore.TMap)
	require.NoError(t, err)
	key, err := m.MapKey(tcore.TI16)
	require.NoError(t, err)
	require.Equal(t, tcore.TI16, key.Type())
	val, err := m.MapValue(tcore.TString)
	require.NoError(t, err)
	require.Equal(t, tcore.TString, val.Type())
}

func TestIteratorChildRejectsTypeMismatch(t *testing.T) {
	base := baseConfigWithPath(t, tcore.Path{tcore.NodeID(1)}, tcore.TI32, 0)
	tree, err := Build(base, tcore.MinFormatVersionEncode, tcore.MaxEncodeDepth)
	require.NoError(t, err)

	root, err := tree.Root()
	require.NoError(t, err)

	_, err = root.Child(tcore.NodeID(1), tcore.TI64)
	require.Error(t, err, "path configured as I32 must reject being walked as I64")
}

func TestIteratorStopReturnsTStop(t *testing.T) {
	base := baseConfigWithPath(t, tcore.Path{tcore.NodeID(1)}, tcore.TI32, 0)
	tree, err := Build(base, tcore.MinFormatVersionEncode, tcore.MaxEncodeDepth)
	require.NoError(t, err)

	root, err := tree.Root()
	require.NoError(t, err)

	stop, err := root.Stop()
	require.NoError(t, err)
	require.Equal(t, tcore.TStop, stop.Type())
}

func TestIteratorDepthOverflow(t *testing.T) {
	base := baseConfigWithPath(t, tcore.Path{tcore.NodeID(1)}, tcore.TI32, 0)
	tree, err := Build(base, tcore.MinFormatVersionEncode, 1)
	require.NoError(t, err)

	root, err := tree.Root()
	require.NoError(t, err)

	child, err := root.Child(tcore.NodeID(1), tcore.TI32)
	require.NoError(t, err)

	_, err = child.Child(tcore.NodeID(1), tcore.TI32)
	require.Error(t, err, "exceeding the tree's configured max depth must fail, not silently recurse")
}

func TestIteratorPathReconstructsFromRoot(t *testing.T) {
	base := baseConfigWithPath(t, tcore.Path{tcore.NodeID(1)}, tcore.TI32, 0)
	tree, err := Build(base, tcore.MinFormatVersionEncode, tcore.MaxEncodeDepth)
	require.NoError(t, err)

	root, err := tree.Root()
	require.NoError(t, err)
	field, err := root.Child(tcore.NodeID(1), tcore.TI32)
	require.NoError(t, err)
	lenIt, err := field.Lengths()
	require.NoError(t, err)

	require.Equal(t, tcore.Path{tcore.NodeID(1), tcore.Length}, lenIt.Path())
}

func TestEncoderConfigRejectsSplittingLengthWithoutData(t *testing.T) {
	paths := []struct {
		Path tcore.Path
		Info tcore.PathInfo
	}{
		{Path: tcore.Path{tcore.NodeID(1), tcore.Length}, Info: tcore.PathInfo{ID: 0, Type: tcore.TU32}},
	}
	_, err := tcore.NewEncoderConfig(paths, nil, tcore.TStruct, false, nil, tcore.MinFormatVersionEncode)
	require.Error(t, err, "a length split with no data path at the same prefix is config-invalid")
}
