// Package tcore holds the shared vocabulary of the Thrift splitter: the
// Thrift type tags, the sentinel node ids used to describe structural
// positions in a path, the fixed singleton/variable stream identifiers,
// and the configuration types the rest of the packages build on.
//
// It sits at the bottom of the internal dependency graph on purpose so
// that wire-format-specific and stream-routing packages can both depend
// on it without creating an import cycle back to the root package.
package tcore

import "fmt"

// TType is a Thrift wire type tag. Only a subset is legal on the wire;
// the rest exist so the parser can reject them explicitly (VOID, the
// UTF variants, STREAM) or use them internally (LENGTH is modeled
// through NodeID, not TType).
type TType uint8

const (
	TStop TType = iota
	TBool
	TByte
	TI16
	TI32
	TI64
	TDouble
	TFloat
	TString
	TMap
	TList
	TSet
	TStruct
	TVoid
	TU16
	TU32
	TU64
	TUTF8
	TUTF16
	TStream
)

func (t TType) String() string {
	switch t {
	case TStop:
		return "STOP"
	case TBool:
		return "BOOL"
	case TByte:
		return "BYTE"
	case TI16:
		return "I16"
	case TI32:
		return "I32"
	case TI64:
		return "I64"
	case TDouble:
		return "DOUBLE"
	case TFloat:
		return "FLOAT"
	case TString:
		return "STRING"
	case TMap:
		return "MAP"
	case TList:
		return "LIST"
	case TSet:
		return "SET"
	case TStruct:
		return "STRUCT"
	case TVoid:
		return "VOID"
	case TU16:
		return "U16"
	case TU32:
		return "U32"
	case TU64:
		return "U64"
	case TUTF8:
		return "UTF8"
	case TUTF16:
		return "UTF16"
	case TStream:
		return "STREAM"
	default:
		return fmt.Sprintf("TType(%d)", uint8(t))
	}
}

// Coerce folds SET into LIST, per spec: "SET is treated identically to
// LIST everywhere" in the path tree and stream routing.
func Coerce(t TType) TType {
	if t == TSet {
		return TList
	}
	return t
}

// Width returns the fixed element width, in bytes, for primitive Thrift
// types that map onto a numeric/serial singleton stream. Container and
// string types have no fixed width and return 0.
func (t TType) Width() int {
	switch t {
	case TBool, TByte:
		return 1
	case TI16:
		return 2
	case TI32, TFloat:
		return 4
	case TI64, TDouble:
		return 8
	default:
		return 0
	}
}
