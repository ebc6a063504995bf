package tcore

import (
	"math"
	"strconv"
)

// NodeID identifies one position in a Thrift message's structure. Values
// in [math.MinInt16, math.MaxInt16] are ordinary field ids as they appear
// on the wire. Values above that range are sentinels for structural
// positions that never collide with a real field id.
type NodeID int32

const (
	// MapKey identifies the key slot of a map entry.
	MapKey NodeID = math.MaxInt32
	// MapValue identifies the value slot of a map entry.
	MapValue NodeID = math.MaxInt32 - 1
	// ListElem identifies an element slot of a list or set.
	ListElem NodeID = math.MaxInt32 - 2
	// Stop identifies the terminal STOP field of a struct.
	Stop NodeID = math.MaxInt32 - 3
	// Root identifies the message root.
	Root NodeID = math.MaxInt32 - 4
	// Length identifies the length-count child of a container or string.
	Length NodeID = math.MaxInt32 - 5
	// MessageHeader identifies the TulipV2 framing header, gated on
	// format version >= MinFormatVersionTulipV2.
	MessageHeader NodeID = math.MaxInt32 - 6
)

// IsSpecial reports whether id falls outside the 16-bit field id range,
// i.e. it is one of the structural sentinels above rather than a real
// Thrift field id.
func IsSpecial(id NodeID) bool {
	return id < math.MinInt16 || id > math.MaxInt16
}

// IsInlined reports whether id is one of the node kinds that the path
// tree reaches through a dedicated Iterator method (MapKey, MapValue,
// ListElem, Lengths, Stop) rather than through the dense/hashed
// ordinary-field-id children.
func IsInlined(id NodeID) bool {
	switch id {
	case MapKey, MapValue, ListElem, Length, Stop:
		return true
	default:
		return false
	}
}

// ValidateSentinel reports whether the sentinel id is usable at the
// given minimum format version, per the gating rules in spec.md §3.
func ValidateSentinel(id NodeID, minFormatVersion int) bool {
	switch id {
	case MapKey, MapValue, ListElem, Root, Length:
		return minFormatVersion >= MinFormatVersionEncode
	case MessageHeader:
		return minFormatVersion >= MinFormatVersionTulipV2
	default:
		return false
	}
}

// Path is an ordered sequence of node ids describing descent from the
// message root.
type Path []NodeID

// Equal reports whether two paths have identical elements in order.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Key renders the path into a comparable string so it can be used as a
// Go map key (NodeID sequences aren't directly hashable as a slice type).
func (p Path) Key() string {
	b := make([]byte, 0, len(p)*5)
	for _, id := range p {
		b = appendVarint(b, int64(id))
	}
	return string(b)
}

func appendVarint(b []byte, v int64) []byte {
	u := uint64(v)
	for u >= 0x80 {
		b = append(b, byte(u)|0x80)
		u >>= 7
	}
	return append(b, byte(u))
}

// String renders the path for diagnostics, e.g. "[3, LIST_ELEM]".
func (p Path) String() string {
	s := "["
	for i, id := range p {
		if i > 0 {
			s += ", "
		}
		s += nodeIDString(id)
	}
	return s + "]"
}

func nodeIDString(id NodeID) string {
	switch id {
	case MapKey:
		return "MAP_KEY"
	case MapValue:
		return "MAP_VALUE"
	case ListElem:
		return "LIST_ELEM"
	case Stop:
		return "STOP"
	case Root:
		return "ROOT"
	case Length:
		return "LENGTH"
	case MessageHeader:
		return "MESSAGE_HEADER"
	default:
		return strconv.Itoa(int(id))
	}
}
