package pathtree

import "thriftsplit/internal/tcore"

// numFallbackTypes bounds the per-type fallback array: one entry per
// TType from TStop through TFloat inclusive (the primitive types a
// leaf value can actually carry; containers and STOP route through
// dedicated children instead).
const numFallbackTypes = int(tcore.TFloat) + 1

// fallbackSingletons maps a primitive TType to the singleton stream an
// unconfigured path of that type falls back to.
var fallbackSingletons = map[tcore.TType]tcore.SingletonID{
	tcore.TBool:   tcore.Bool,
	tcore.TByte:   tcore.Int8,
	tcore.TI16:    tcore.Int16,
	tcore.TI32:    tcore.Int32,
	tcore.TI64:    tcore.Int64,
	tcore.TFloat:  tcore.Float32,
	tcore.TDouble: tcore.Float64,
}

// Tree is the configured path tree: a root node plus the fallback
// nodes every unconfigured position resolves to.
type Tree struct {
	root      *Node
	fallbacks [numFallbackTypes]*Node
	lengths   *Node
	maxDepth  int
}

// Build constructs the path tree for config, wiring every configured
// path to a LogicalTarget leaf (and, for T_STRING paths at format
// version >= MinFormatVersionStringVSF, a companion StringLengthTarget
// child) and every unconfigured primitive position to its per-type
// fallback.
func Build(config *tcore.BaseConfig, formatVersion, maxDepth int) (*Tree, error) {
	t := &Tree{maxDepth: maxDepth}
	for typ, sid := range fallbackSingletons {
		t.fallbacks[typ] = &Node{typ: typ, target: Target{Kind: SingletonTarget, Singleton: sid}}
	}
	// T_STRING's fallback is SingletonTarget(Binary) but T_STRING lies
	// outside numFallbackTypes (it comes after TFloat); the binary
	// fallback is handled directly wherever a path resolves to T_STRING
	// with no configured stream, via binaryFallback below.
	t.lengths = &Node{typ: tcore.TU32, target: Target{Kind: SingletonTarget, Singleton: tcore.Lengths}}
	t.root = &Node{typ: config.RootType()}

	for _, p := range config.Paths() {
		cur := t.root
		for _, id := range p.Path {
			next := cur.child(id)
			typ := inferType(id)
			if typ != tcore.TVoid {
				if cur.typ == tcore.TVoid {
					cur.setType(typ)
				} else if err := cur.checkType(typ); err != nil {
					return nil, err
				}
			}
			if next == nil {
				next = &Node{typ: tcore.TVoid}
				cur.addChild(id, next)
			}
			cur = next
		}

		if formatVersion >= tcore.MinFormatVersionStringVSF {
			if cur.target.Kind != NoTarget {
				return nil, tcore.NewConfigError("attempting to set two different streams on the same node at path %s", p.Path)
			}
			if p.Info.Type == tcore.TString {
				if cur.child(tcore.Length) != nil {
					return nil, tcore.NewConfigError("attempting to add two length nodes to the same string node at path %s", p.Path)
				}
				lenNode := &Node{typ: tcore.TU32, target: Target{Kind: StringLengthTarget, Logical: p.Info.ID}}
				cur.addChild(tcore.Length, lenNode)
			}
		}

		if cur.typ != tcore.TVoid {
			if err := cur.checkType(p.Info.Type); err != nil {
				return nil, err
			}
		}
		cur.setType(p.Info.Type)
		cur.target = Target{Kind: LogicalTarget, Logical: p.Info.ID}
	}
	return t, nil
}

// inferType reports the type the *parent* of a position must have,
// purely from the id used to reach that position: MAP for a map key or
// value, LIST for a list element, STRUCT for an ordinary field id, and
// TVoid for the remaining sentinels, which constrain nothing.
func inferType(id tcore.NodeID) tcore.TType {
	switch id {
	case tcore.MapKey, tcore.MapValue:
		return tcore.TMap
	case tcore.ListElem:
		return tcore.TList
	default:
		if !tcore.IsSpecial(id) {
			return tcore.TStruct
		}
		return tcore.TVoid
	}
}

// binaryFallback is the SingletonTarget every unconfigured T_STRING
// position resolves to.
var binaryFallback = Target{Kind: SingletonTarget, Singleton: tcore.Binary}

// fallbackFor returns the Target an unconfigured position of the given
// type should resolve to.
func (t *Tree) fallbackFor(typ tcore.TType) Target {
	if typ == tcore.TString {
		return binaryFallback
	}
	if int(typ) < numFallbackTypes && t.fallbacks[typ] != nil {
		return t.fallbacks[typ].target
	}
	return Target{Kind: NoTarget}
}
