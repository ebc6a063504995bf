package pathtree

import "thriftsplit/internal/tcore"

// Iterator is the current position of a recursive-descent walk over a
// Tree, alongside the matching position in the Thrift message being
// parsed or written. Callers keep the iterator for a level alive on
// the stack for the duration of that level's children, mirroring the
// parser's own recursion.
type Iterator struct {
	tree   *Tree
	parent *Iterator
	node   *Node
	id     tcore.NodeID
	typ    tcore.TType
	depth  int
}

// Root returns an iterator positioned at the tree's root.
func (t *Tree) Root() (Iterator, error) {
	it := Iterator{tree: t, node: t.root, id: tcore.Root, typ: t.root.typ, depth: 0}
	return it, nil
}

// ID returns the node id this position was reached by.
func (it Iterator) ID() tcore.NodeID { return it.id }

// Type returns the Thrift type expected at this position.
func (it Iterator) Type() tcore.TType { return it.typ }

// Target returns the stream this position routes to.
func (it Iterator) Target() Target {
	if it.node.target.Kind != NoTarget {
		return it.node.target
	}
	return it.tree.fallbackFor(it.typ)
}

// Path reconstructs the full path from the root down to this position.
func (it Iterator) Path() tcore.Path {
	if it.parent == nil {
		return nil
	}
	return append(it.parent.Path(), it.id)
}

func (it Iterator) descend(id tcore.NodeID, node *Node, typ tcore.TType) (Iterator, error) {
	next := Iterator{tree: it.tree, parent: &it, node: node, id: id, typ: typ, depth: it.depth + 1}
	if next.depth > it.tree.maxDepth {
		return Iterator{}, tcore.NewDepthError(it.tree.maxDepth)
	}
	return next, nil
}

// Child returns the child iterator for an ordinary field id. id must
// not be one of the inlined sentinels (MapKey, MapValue, ListElem,
// Length, Stop); those have dedicated methods below.
func (it Iterator) Child(id tcore.NodeID, typ tcore.TType) (Iterator, error) {
	child := it.node.child(id)
	if child == nil {
		return it.descend(id, &Node{typ: tcore.Coerce(typ)}, tcore.Coerce(typ))
	}
	if err := child.checkType(typ); err != nil {
		return Iterator{}, err
	}
	return it.descend(id, child, tcore.Coerce(typ))
}

// Lengths returns the iterator for this node's length child (the
// element/byte count of a string, list, map, or set).
func (it Iterator) Lengths() (Iterator, error) {
	node := it.node.lengths
	if node == nil {
		node = it.tree.lengths
	}
	return it.descend(tcore.Length, node, tcore.TU32)
}

// MapKey returns the iterator for this node's map-key child.
func (it Iterator) MapKey(typ tcore.TType) (Iterator, error) {
	return it.specialChild(it.node.mapKey, tcore.MapKey, typ)
}

// MapValue returns the iterator for this node's map-value child.
func (it Iterator) MapValue(typ tcore.TType) (Iterator, error) {
	return it.specialChild(it.node.mapValue, tcore.MapValue, typ)
}

// ListElem returns the iterator for this node's list/set-element child.
func (it Iterator) ListElem(typ tcore.TType) (Iterator, error) {
	return it.specialChild(it.node.listElem, tcore.ListElem, typ)
}

func (it Iterator) specialChild(node *Node, id tcore.NodeID, typ tcore.TType) (Iterator, error) {
	if node == nil {
		return it.descend(id, &Node{typ: tcore.Coerce(typ)}, tcore.Coerce(typ))
	}
	if err := node.checkType(typ); err != nil {
		return Iterator{}, err
	}
	return it.descend(id, node, tcore.Coerce(typ))
}

// Stop returns the iterator for this node's STOP marker.
func (it Iterator) Stop() (Iterator, error) {
	return it.descend(tcore.Stop, &Node{typ: tcore.TStop, target: Target{Kind: NoTarget}}, tcore.TStop)
}

// StringLength returns the iterator for this node's VSF length
// companion, if one was configured (format version >=
// MinFormatVersionStringVSF and this node's configured type is
// T_STRING); ok is false otherwise.
func (it Iterator) StringLength() (result Iterator, ok bool, err error) {
	node := it.node.lengths
	if node == nil || node.target.Kind != StringLengthTarget {
		return Iterator{}, false, nil
	}
	next, err := it.descend(tcore.Length, node, tcore.TU32)
	return next, true, err
}
