package tcore

import "slices"

// ConfigBuilder incrementally assembles an EncoderConfig the way the
// host framework does: paths and clusters are added one at a time,
// and Finalize validates the accumulated state and hands back an
// immutable config. Individual mutations do not validate.
type ConfigBuilder struct {
	entries    map[string]pathEntry
	nextID     LogicalID
	successors map[LogicalID]int
	typeSucc   map[VariableOutcome]int
	rootType   TType
	clusters   []LogicalCluster
	tulipV2    bool
	minVersion int
}

// NewConfigBuilder starts a builder with the defaults the host uses
// for new configs: T_STRUCT root, format version 10, no TulipV2.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		entries:    make(map[string]pathEntry),
		successors: make(map[LogicalID]int),
		typeSucc:   defaultSuccessorMap(),
		rootType:   TStruct,
		minVersion: MinFormatVersionEncode,
	}
}

// SetRootType overrides the default T_STRUCT root type.
func (b *ConfigBuilder) SetRootType(t TType) { b.rootType = t }

// SetMinFormatVersion overrides the format version the finished config
// declares. Feature-gated mutations (AddEmptyCluster,
// SetShouldParseTulipV2) bump it upward automatically; this lets a
// caller raise it further, e.g. to opt into VSF strings.
func (b *ConfigBuilder) SetMinFormatVersion(v int) { b.minVersion = v }

// SetShouldParseTulipV2 enables TulipV2 framing and bumps the minimum
// format version if needed.
func (b *ConfigBuilder) SetShouldParseTulipV2() {
	b.tulipV2 = true
	b.bumpMinVersion(MinFormatVersionTulipV2)
}

func (b *ConfigBuilder) bumpMinVersion(v int) {
	if b.minVersion < v {
		b.minVersion = v
	}
}

// AddPath assigns a fresh logical id to path and records its type. If
// path was already added, its type and id are left unchanged.
func (b *ConfigBuilder) AddPath(path Path, t TType) LogicalID {
	key := path.Key()
	if e, ok := b.entries[key]; ok {
		return e.Info.ID
	}
	id := b.nextID
	b.nextID++
	b.entries[key] = pathEntry{Path: slices.Clone(path), Info: PathInfo{ID: id, Type: t}}
	return id
}

// SetSuccessorForPath looks up the logical id already assigned to path
// and records a routing hint for it.
func (b *ConfigBuilder) SetSuccessorForPath(path Path, successor int) error {
	e, ok := b.entries[path.Key()]
	if !ok {
		return NewConfigError("no such path %s", path)
	}
	b.successors[e.Info.ID] = successor
	return nil
}

// SetSuccessorForType overrides the default routing hint used for
// streams of the given outcome class.
func (b *ConfigBuilder) SetSuccessorForType(outcome VariableOutcome, successor int) {
	b.typeSucc[outcome] = successor
}

// AddEmptyCluster appends a new empty cluster with the given successor
// and bumps the minimum format version, returning its index. The index
// is invalidated by any later mutation that removes clusters.
func (b *ConfigBuilder) AddEmptyCluster(successor int) int {
	b.bumpMinVersion(MinFormatVersionClusters)
	b.clusters = append(b.clusters, LogicalCluster{Successor: successor})
	return len(b.clusters) - 1
}

// AddPathToCluster appends the logical id already assigned to path to
// the back of the cluster at clusterIdx.
func (b *ConfigBuilder) AddPathToCluster(path Path, clusterIdx int) error {
	e, ok := b.entries[path.Key()]
	if !ok {
		return NewConfigError("no such path %s", path)
	}
	if clusterIdx < 0 || clusterIdx >= len(b.clusters) {
		return NewConfigError("invalid cluster index %d", clusterIdx)
	}
	b.clusters[clusterIdx].IDList = append(b.clusters[clusterIdx].IDList, e.Info.ID)
	return nil
}

// UpdateClusterSuccessor changes the routing hint of an existing
// cluster.
func (b *ConfigBuilder) UpdateClusterSuccessor(clusterIdx, successor int) error {
	if clusterIdx < 0 || clusterIdx >= len(b.clusters) {
		return NewConfigError("invalid cluster index %d", clusterIdx)
	}
	b.clusters[clusterIdx].Successor = successor
	return nil
}

// Finalize drops empty clusters (invalidating any remembered indices),
// validates the accumulated configuration, and returns the resulting
// EncoderConfig. The builder remains usable for further mutation.
func (b *ConfigBuilder) Finalize() (*EncoderConfig, error) {
	nonEmpty := make([]LogicalCluster, 0, len(b.clusters))
	for _, cl := range b.clusters {
		if len(cl.IDList) > 0 {
			nonEmpty = append(nonEmpty, cl)
		}
	}
	b.clusters = nonEmpty

	paths := make([]struct {
		Path Path
		Info PathInfo
	}, 0, len(b.entries))
	for _, e := range b.entries {
		paths = append(paths, struct {
			Path Path
			Info PathInfo
		}{Path: e.Path, Info: e.Info})
	}

	ec, err := NewEncoderConfig(paths, b.successors, b.rootType, b.tulipV2, b.clusters, b.minVersion)
	if err != nil {
		return nil, err
	}
	for outcome, succ := range b.typeSucc {
		ec.DefaultSuccessor[outcome] = succ
	}
	return ec, nil
}
