// Package pathtree builds the tree of configured paths a Thrift parser
// walks alongside the message itself, so that at every position the
// parser can look up, in O(1) amortized time, which stream a value
// belongs in.
package pathtree

import (
	"thriftsplit/internal/tcore"
)

// TargetKind classifies what a tree node routes values to.
type TargetKind int

const (
	// NoTarget marks an internal node with no stream of its own (a
	// struct/list/map position that only exists to route its children).
	NoTarget TargetKind = iota
	// SingletonTarget routes to one of the fixed singleton streams,
	// used by the per-type fallback nodes and the shared lengths node.
	SingletonTarget
	// LogicalTarget routes to a configured variable stream.
	LogicalTarget
	// StringLengthTarget routes to the VSF length companion of a
	// configured T_STRING variable stream.
	StringLengthTarget
)

// Target names the stream a tree position resolves to.
type Target struct {
	Kind      TargetKind
	Singleton tcore.SingletonID
	Logical   tcore.LogicalID
}

// denseVecSlots bounds the dense array representation of a node's
// ordinary-field-id children; ids at or above this switch to a hash
// map, trading O(1) dense lookup for memory on sparse/huge structs.
const denseVecSlots = 1024

// Node is one position in the configured path tree.
type Node struct {
	typ    tcore.TType
	target Target

	children    []*Node
	childrenMap map[tcore.NodeID]*Node

	lengths, mapKey, mapValue, listElem *Node
}

// Type returns the node's Thrift type (SET already folded into LIST).
func (n *Node) Type() tcore.TType { return n.typ }

// Target returns the stream this node routes to, or NoTarget.
func (n *Node) Target() Target { return n.target }

func (n *Node) setType(t tcore.TType) { n.typ = tcore.Coerce(t) }

// checkType enforces that a node already assigned a type is never
// walked with a conflicting one; a config that disagrees with itself
// about a path's type is corrupt state, not a silent coercion.
func (n *Node) checkType(t tcore.TType) error {
	t = tcore.Coerce(t)
	if n.typ != tcore.TVoid && n.typ != t {
		return tcore.NewCorruptError(nil, "node has type %s but is being accessed with type %s", n.typ, t)
	}
	return nil
}

// child looks up an already-built child, ordinary or inlined; it is
// used both while building the tree and by Iterator.Child.
func (n *Node) child(id tcore.NodeID) *Node {
	switch id {
	case tcore.MapKey:
		return n.mapKey
	case tcore.MapValue:
		return n.mapValue
	case tcore.ListElem:
		return n.listElem
	case tcore.Length:
		return n.lengths
	}
	idx := int(id)
	if idx >= 0 && idx < denseVecSlots {
		if idx < len(n.children) {
			return n.children[idx]
		}
		return nil
	}
	if n.childrenMap == nil {
		return nil
	}
	return n.childrenMap[id]
}

// addChild installs child as n's child at id (build time only).
func (n *Node) addChild(id tcore.NodeID, child *Node) {
	switch id {
	case tcore.MapKey:
		n.mapKey = child
		return
	case tcore.MapValue:
		n.mapValue = child
		return
	case tcore.ListElem:
		n.listElem = child
		return
	case tcore.Length:
		n.lengths = child
		if child.typ != tcore.TU32 {
			child.typ = tcore.TU32
		}
		return
	}
	idx := int(id)
	if idx >= 0 && idx < denseVecSlots {
		if len(n.children) <= idx {
			grown := make([]*Node, idx+1)
			copy(grown, n.children)
			n.children = grown
		}
		n.children[idx] = child
		return
	}
	if n.childrenMap == nil {
		n.childrenMap = make(map[tcore.NodeID]*Node)
	}
	n.childrenMap[id] = child
}
