package tcore

import (
	"cmp"
	"slices"
)

// PathInfo records what a configured path routes to: which logical
// stream it feeds and what Thrift type is expected to arrive there.
type PathInfo struct {
	ID   LogicalID
	Type TType
}

// LogicalCluster is an ordered group of logical streams that share a
// single concatenated backing stream, plus the routing hint the host
// framework should use for the combined stream.
type LogicalCluster struct {
	IDList    []LogicalID
	Successor int
}

// Equal reports whether two clusters have identical membership order
// and successor.
func (c LogicalCluster) Equal(o LogicalCluster) bool {
	return c.Successor == o.Successor && slices.Equal(c.IDList, o.IDList)
}

type pathEntry struct {
	Path Path
	Info PathInfo
}

// BaseConfig is the shared core of EncoderConfig and DecoderConfig: the
// path-to-stream map, the root message type, and the cluster list.
type BaseConfig struct {
	paths    map[string]pathEntry
	rootType TType
	clusters []LogicalCluster
}

// NewBaseConfig builds a BaseConfig from an explicit path list and
// validates its invariants.
func NewBaseConfig(paths []struct {
	Path Path
	Info PathInfo
}, rootType TType, clusters []LogicalCluster) (*BaseConfig, error) {
	bc := &BaseConfig{
		paths:    make(map[string]pathEntry, len(paths)),
		rootType: rootType,
		clusters: slices.Clone(clusters),
	}
	for _, p := range paths {
		bc.paths[p.Path.Key()] = pathEntry{Path: slices.Clone(p.Path), Info: p.Info}
	}
	if err := bc.validate(); err != nil {
		return nil, err
	}
	return bc, nil
}

// RootType returns the Thrift type of the message root.
func (c *BaseConfig) RootType() TType { return c.rootType }

// Clusters returns the configured clusters in order.
func (c *BaseConfig) Clusters() []LogicalCluster { return c.clusters }

// LogicalStreamAt looks up the logical stream configured to receive
// values found at path, if any.
func (c *BaseConfig) LogicalStreamAt(path Path) (LogicalID, bool) {
	e, ok := c.paths[path.Key()]
	if !ok {
		return 0, false
	}
	return e.Info.ID, true
}

// TypeAt looks up the expected Thrift type at a configured path.
func (c *BaseConfig) TypeAt(path Path) (TType, bool) {
	e, ok := c.paths[path.Key()]
	if !ok {
		return 0, false
	}
	return e.Info.Type, true
}

// LogicalIDs returns every logical id named by the path map, sorted
// ascending.
func (c *BaseConfig) LogicalIDs() []LogicalID {
	seen := make(map[LogicalID]struct{}, len(c.paths))
	for _, e := range c.paths {
		seen[e.Info.ID] = struct{}{}
	}
	ids := make([]LogicalID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// UnclusteredStreams returns, sorted ascending, every logical id not
// claimed by any cluster.
func (c *BaseConfig) UnclusteredStreams() []LogicalID {
	clustered := make(map[LogicalID]struct{})
	for _, cl := range c.clusters {
		for _, id := range cl.IDList {
			clustered[id] = struct{}{}
		}
	}
	var out []LogicalID
	for _, id := range c.LogicalIDs() {
		if _, ok := clustered[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Cluster returns the cluster at idx.
func (c *BaseConfig) Cluster(idx int) (LogicalCluster, error) {
	if idx < 0 || idx >= len(c.clusters) {
		return LogicalCluster{}, NewConfigError("invalid cluster index %d, have %d clusters", idx, len(c.clusters))
	}
	return c.clusters[idx], nil
}

// ClusterPaths returns the configured paths feeding the members of
// cluster idx, in member order. This walks the whole path map and is
// meant for tests and offline tooling, not hot-path use.
func (c *BaseConfig) ClusterPaths(idx int) ([]Path, error) {
	cl, err := c.Cluster(idx)
	if err != nil {
		return nil, err
	}
	inverse := make(map[LogicalID]Path, len(c.paths))
	for _, e := range c.paths {
		inverse[e.Info.ID] = e.Path
	}
	paths := make([]Path, 0, len(cl.IDList))
	for _, id := range cl.IDList {
		p, ok := inverse[id]
		if !ok {
			return nil, NewConfigError("no path found for logical id %d", id)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// ClusterType returns the common Thrift type of every stream in
// cluster idx, or TStop for an empty cluster. Like ClusterPaths it
// walks the whole path map; Decode calls it once per cluster to pick
// the matching split routine.
func (c *BaseConfig) ClusterType(idx int) (TType, error) {
	paths, err := c.ClusterPaths(idx)
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return TStop, nil
	}
	first, _ := c.TypeAt(paths[0])
	for _, p := range paths[1:] {
		t, _ := c.TypeAt(p)
		if t != first {
			return 0, NewConfigError("cluster %d contains multiple types: %s and %s", idx, first, t)
		}
	}
	return first, nil
}

// validate enforces the invariants shared by encoder and decoder
// configs: every path feeding a logical id agrees on its type, and
// every cluster is non-empty, references real ids, and is type
// homogeneous.
func (c *BaseConfig) validate() error {
	types := make(map[LogicalID]TType, len(c.paths))
	for _, e := range c.paths {
		if t, ok := types[e.Info.ID]; ok {
			if t != e.Info.Type {
				return NewConfigError("types for logical stream %d don't match: expected %s, got %s", e.Info.ID, t, e.Info.Type)
			}
		} else {
			types[e.Info.ID] = e.Info.Type
		}
	}
	for i, cl := range c.clusters {
		if len(cl.IDList) == 0 {
			return NewConfigError("cluster %d is empty", i)
		}
		want, ok := types[cl.IDList[0]]
		if !ok {
			return NewConfigError("cluster %d references unknown logical id %d", i, cl.IDList[0])
		}
		for _, id := range cl.IDList[1:] {
			got, ok := types[id]
			if !ok {
				return NewConfigError("cluster %d references unknown logical id %d", i, id)
			}
			if got != want {
				return NewConfigError("cluster %d is not type-homogeneous", i)
			}
		}
	}
	return nil
}

// sortedPaths returns the configured path entries sorted by key, for
// deterministic iteration (tree construction, serialization).
func (c *BaseConfig) sortedPaths() []pathEntry {
	keys := make([]string, 0, len(c.paths))
	for k := range c.paths {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]pathEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.paths[k])
	}
	return out
}

// Paths returns every configured (Path, PathInfo) pair, sorted
// deterministically.
func (c *BaseConfig) Paths() []struct {
	Path Path
	Info PathInfo
} {
	entries := c.sortedPaths()
	out := make([]struct {
		Path Path
		Info PathInfo
	}, len(entries))
	for i, e := range entries {
		out[i] = struct {
			Path Path
			Info PathInfo
		}{Path: e.Path, Info: e.Info}
	}
	return out
}

// Default successor hints, used when a logical stream is unclustered
// and has no explicit successor override.
const (
	NonNumericDefaultSuccessor = 1
	NumericDefaultSuccessor    = 6
)

// EncoderConfig is the configuration the encoder consumes: a
// BaseConfig plus per-stream routing hints, the TulipV2 toggle, and
// the minimum format version the produced bytes must remain compatible
// with.
type EncoderConfig struct {
	BaseConfig
	Successors       map[LogicalID]int
	ParseTulipV2     bool
	MinFormatVersion int
	// DefaultSuccessor maps an outcome class to the routing hint used
	// for unconfigured/unclustered streams of that shape. The core
	// never interprets this; it exists for the host to read.
	DefaultSuccessor map[VariableOutcome]int
}

// NewEncoderConfig builds and validates an EncoderConfig.
func NewEncoderConfig(
	paths []struct {
		Path Path
		Info PathInfo
	},
	successors map[LogicalID]int,
	rootType TType,
	parseTulipV2 bool,
	clusters []LogicalCluster,
	minFormatVersion int,
) (*EncoderConfig, error) {
	base, err := NewBaseConfig(paths, rootType, clusters)
	if err != nil {
		return nil, err
	}
	ec := &EncoderConfig{
		BaseConfig:       *base,
		Successors:       cloneIntMap(successors),
		ParseTulipV2:     parseTulipV2,
		MinFormatVersion: minFormatVersion,
		DefaultSuccessor: defaultSuccessorMap(),
	}
	if err := ec.validate(); err != nil {
		return nil, err
	}
	return ec, nil
}

func defaultSuccessorMap() map[VariableOutcome]int {
	return map[VariableOutcome]int{
		OutcomeSerialized:            NonNumericDefaultSuccessor,
		OutcomeVSF:                   NonNumericDefaultSuccessor,
		OutcomeClusterSegmentLengths: NonNumericDefaultSuccessor,
		OutcomeNumeric:               NumericDefaultSuccessor,
	}
}

func cloneIntMap(m map[LogicalID]int) map[LogicalID]int {
	out := make(map[LogicalID]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SuccessorFor returns the configured routing hint for a logical
// stream, if any was set explicitly.
func (c *EncoderConfig) SuccessorFor(id LogicalID) (int, bool) {
	v, ok := c.Successors[id]
	return v, ok
}

// validate enforces the encoder-only invariants: sentinel gating by
// format version, TulipV2/cluster feature gating, non-empty paths, and
// the "lengths require data at the same prefix" rule (spec.md §3).
func (c *EncoderConfig) validate() error {
	if err := c.BaseConfig.validate(); err != nil {
		return err
	}
	for _, e := range c.paths {
		for _, id := range e.Path {
			if IsSpecial(id) && !ValidateSentinel(id, c.MinFormatVersion) {
				return NewVersionError("sentinel "+nodeIDString(id), c.MinFormatVersion, requiredVersionFor(id))
			}
		}
	}
	if c.ParseTulipV2 && c.MinFormatVersion < MinFormatVersionTulipV2 {
		return NewVersionError("TulipV2 parsing", c.MinFormatVersion, MinFormatVersionTulipV2)
	}
	if len(c.clusters) > 0 && c.MinFormatVersion < MinFormatVersionClusters {
		return NewVersionError("clusters", c.MinFormatVersion, MinFormatVersionClusters)
	}

	dataPrefixes := make(map[string]struct{}, len(c.paths))
	for _, e := range c.paths {
		if len(e.Path) == 0 {
			return NewConfigError("config has an empty path")
		}
		if e.Path[len(e.Path)-1] != Length {
			dataPrefixes[e.Path.Key()] = struct{}{}
			dataPrefixes[e.Path[:len(e.Path)-1].Key()] = struct{}{}
		}
	}
	for _, e := range c.paths {
		if e.Path[len(e.Path)-1] != Length {
			continue
		}
		prefix := e.Path[:len(e.Path)-1]
		if _, ok := dataPrefixes[prefix.Key()]; !ok {
			return NewConfigError("config splits lengths but not data at path %s: unsupported", e.Path)
		}
	}
	return nil
}

func requiredVersionFor(id NodeID) int {
	if id == MessageHeader {
		return MinFormatVersionTulipV2
	}
	return MinFormatVersionEncode
}

// DecoderConfig is the configuration the decoder consumes: a
// BaseConfig plus the original message size (for preallocation) and
// whether TulipV2 headers must be reconstructed on the way out.
type DecoderConfig struct {
	BaseConfig
	OriginalSize          uint64
	UnparseMessageHeaders bool
}

// NewDecoderConfig builds and validates a DecoderConfig from an
// already-validated BaseConfig.
func NewDecoderConfig(base *BaseConfig, originalSize uint64, unparseMessageHeaders bool) (*DecoderConfig, error) {
	dc := &DecoderConfig{
		BaseConfig:            *base,
		OriginalSize:          originalSize,
		UnparseMessageHeaders: unparseMessageHeaders,
	}
	if err := dc.validate(); err != nil {
		return nil, err
	}
	return dc, nil
}

func (c *DecoderConfig) validate() error {
	return c.BaseConfig.validate()
}

// successorKeys returns the sorted keys of a successor map, useful for
// deterministic serialization.
func successorKeys(m map[LogicalID]int) []LogicalID {
	out := make([]LogicalID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b LogicalID) int { return cmp.Compare(a, b) })
	return out
}
