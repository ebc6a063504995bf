package protocol

import (
	"math"

	"thriftsplit/internal/pathtree"
	"thriftsplit/internal/streamset"
	"thriftsplit/internal/tcore"
	"thriftsplit/internal/wire"
)

// Compact-protocol type tags. These aren't named by anything in the
// retrieved config/constants sources (the tag table lives in a header
// this pack doesn't carry), so the values below are the standard
// Apache Thrift TCompactProtocol tag assignments, extended with an
// extra CT_FLOAT tag at the next free nibble to carry the FLOAT type
// this variant adds alongside DOUBLE.
const (
	ctStop         uint8 = 0
	ctBooleanTrue  uint8 = 1
	ctBooleanFalse uint8 = 2
	ctByte         uint8 = 3
	ctI16          uint8 = 4
	ctI32          uint8 = 5
	ctI64          uint8 = 6
	ctDouble       uint8 = 7
	ctBinary       uint8 = 8
	ctList         uint8 = 9
	ctSet          uint8 = 10
	ctMap          uint8 = 11
	ctStruct       uint8 = 12
	ctFloat        uint8 = 13
)

var compactToTType = [16]tcore.TType{
	ctStop:         tcore.TStop,
	ctBooleanTrue:  tcore.TBool,
	ctBooleanFalse: tcore.TBool,
	ctByte:         tcore.TByte,
	ctI16:          tcore.TI16,
	ctI32:          tcore.TI32,
	ctI64:          tcore.TI64,
	ctDouble:       tcore.TDouble,
	ctBinary:       tcore.TString,
	ctList:         tcore.TList,
	ctSet:          tcore.TSet,
	ctMap:          tcore.TMap,
	ctStruct:       tcore.TStruct,
	ctFloat:        tcore.TFloat,
	14:             tcore.TVoid,
	15:             tcore.TVoid,
}

// compactTypeFor returns the compact-protocol tag for a Thrift type.
// TBool maps to the generic CT_BOOLEAN_TRUE tag; the actual true/false
// value, where the wire format bit-packs it into a header nibble
// instead of a tag, is handled by parseBool/unparseBool at the call
// site.
func compactTypeFor(t tcore.TType) (uint8, error) {
	switch t {
	case tcore.TStop:
		return ctStop, nil
	case tcore.TBool:
		return ctBooleanTrue, nil
	case tcore.TByte:
		return ctByte, nil
	case tcore.TI16:
		return ctI16, nil
	case tcore.TI32:
		return ctI32, nil
	case tcore.TI64:
		return ctI64, nil
	case tcore.TDouble:
		return ctDouble, nil
	case tcore.TFloat:
		return ctFloat, nil
	case tcore.TString:
		return ctBinary, nil
	case tcore.TList:
		return ctList, nil
	case tcore.TSet:
		return ctSet, nil
	case tcore.TMap:
		return ctMap, nil
	case tcore.TStruct:
		return ctStruct, nil
	default:
		return 0, tcore.NewCorruptError(nil, "type %s has no compact-protocol wire tag", t)
	}
}

// compactTypeFromNibble inverts compactTypeFor. forCollection rejects
// CT_BOOLEAN_FALSE, which is only legal as a field-header type nibble
// (where it doubles as the inline false value), never as a list/map/set
// element type tag.
func compactTypeFromNibble(nibble uint8, forCollection bool) (tcore.TType, error) {
	if forCollection && nibble == ctBooleanFalse {
		return 0, tcore.NewCorruptError(nil, "CT_BOOL_FALSE is not expected in collection headers")
	}
	if int(nibble) >= len(compactToTType) {
		return 0, tcore.NewCorruptError(nil, "invalid compact type nibble %d", nibble)
	}
	t := compactToTType[nibble]
	if t == tcore.TVoid {
		return 0, tcore.NewCorruptError(nil, "T_VOID is not a valid wire value")
	}
	return t, nil
}

func parseBool(b uint8) (bool, error) {
	switch b {
	case ctBooleanTrue:
		return true, nil
	case ctBooleanFalse:
		return false, nil
	default:
		return false, tcore.NewCorruptError(nil, "invalid boolean value %d", b)
	}
}

func unparseBool(v bool) uint8 {
	if v {
		return ctBooleanTrue
	}
	return ctBooleanFalse
}

// readVarintZigzag reads an unsigned LEB128 varint off src and decodes
// it as a zigzag-encoded signed value. TCompact uses this for every
// signed integer wider than one byte.
func readVarintZigzag(src *wire.Cursor) (int64, error) {
	u, err := src.ReadVarint()
	if err != nil {
		return 0, err
	}
	return wire.ZigZagDecode64(u), nil
}

func checkInt16Range(v int64) (int16, error) {
	if v < math.MinInt16 || v > math.MaxInt16 {
		return 0, tcore.NewCorruptError(nil, "value %d out of int16 range", v)
	}
	return int16(v), nil
}

func checkInt32Range(v int64) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, tcore.NewCorruptError(nil, "value %d out of int32 range", v)
	}
	return int32(v), nil
}

// CompactEncoder walks a raw TCompact message and splits it into a
// WriteStreamSet.
type CompactEncoder struct {
	src              *wire.Cursor
	ws               *streamset.WriteStreamSet
	tree             *pathtree.Tree
	config           *tcore.EncoderConfig
	typeStream       *streamset.WriteStream
	fieldDeltaStream *streamset.WriteStream
}

// NewCompactEncoder constructs a CompactEncoder over src.
func NewCompactEncoder(src []byte, config *tcore.EncoderConfig, tree *pathtree.Tree) *CompactEncoder {
	ws := streamset.NewWriteStreamSet(&config.BaseConfig, config.MinFormatVersion)
	return &CompactEncoder{
		src:              wire.NewCursor(src),
		ws:               ws,
		tree:             tree,
		config:           config,
		typeStream:       ws.Singleton(tcore.Types),
		fieldDeltaStream: ws.Singleton(tcore.FieldDeltas),
	}
}

// Streams returns the stream set populated by Parse.
func (e *CompactEncoder) Streams() *streamset.WriteStreamSet { return e.ws }

// Parse walks every TCompact message packed into src, back to back,
// until the input is exhausted.
func (e *CompactEncoder) Parse() error {
	for {
		root, err := e.tree.Root()
		if err != nil {
			return err
		}
		if e.config.ParseTulipV2 {
			if err := e.parseTulipV2Header(root); err != nil {
				return err
			}
		}
		if err := e.advance(root); err != nil {
			return err
		}
		if e.src.Exhausted() {
			return nil
		}
	}
}

func (e *CompactEncoder) target(it pathtree.Iterator) *streamset.WriteStream {
	return resolveWriteTarget(e.ws, it.Target())
}

func (e *CompactEncoder) writeType(t tcore.TType) {
	e.typeStream.Writer().WriteU8(uint8(t))
}

func (e *CompactEncoder) writeFieldDelta(delta uint16) {
	e.fieldDeltaStream.Writer().WriteU16(delta)
}

func (e *CompactEncoder) writeBool(it pathtree.Iterator, v bool) {
	var b uint8
	if v {
		b = 1
	}
	e.target(it).Writer().WriteU8(b)
}

func (e *CompactEncoder) writeU32(it pathtree.Iterator, v uint32) {
	e.target(it).Writer().WriteU32(v)
}

// parseTulipV2Header reads the optional TulipV2 framing prefix straight
// into the MESSAGE_HEADER string stream.
func (e *CompactEncoder) parseTulipV2Header(root pathtree.Iterator) error {
	it, err := root.Child(tcore.MessageHeader, tcore.TString)
	if err != nil {
		return err
	}
	var headerSize uint32
	b0, err := e.src.ReadU8BE()
	if err != nil {
		return err
	}
	e.target(it).WriteBytes([]byte{b0})
	headerSize++
	if b0 == '\n' {
		b0, err = e.src.ReadU8BE()
		if err != nil {
			return err
		}
		e.target(it).WriteBytes([]byte{b0})
		headerSize++
	}
	b1, err := e.src.ReadU8BE()
	if err != nil {
		return err
	}
	e.target(it).WriteBytes([]byte{b1})
	headerSize++
	if b0 != 0x80 || b1 != 0x00 {
		return tcore.NewCorruptError(nil, "bad TulipV2 header")
	}
	lenIt, err := it.Lengths()
	if err != nil {
		return err
	}
	e.writeU32(lenIt, headerSize)
	return nil
}

func (e *CompactEncoder) parseListHeader(current pathtree.Iterator) (listInfo, error) {
	b, err := e.src.ReadU8BE()
	if err != nil {
		return listInfo{}, err
	}
	sizeNibble := b >> 4
	var size uint32
	if sizeNibble == 15 {
		size, err = e.src.ReadVarint32()
		if err != nil {
			return listInfo{}, err
		}
		if size < 15 {
			return listInfo{}, tcore.NewCorruptError(nil, "list header: size < 15 but varint present")
		}
	} else {
		size = uint32(sizeNibble)
	}
	lenIt, err := current.Lengths()
	if err != nil {
		return listInfo{}, err
	}
	e.writeU32(lenIt, size)

	typeNibble := b & 0x0f
	elemType, err := compactTypeFromNibble(typeNibble, true)
	if err != nil {
		return listInfo{}, err
	}
	e.writeType(elemType)
	return listInfo{size: size, elemType: elemType}, nil
}

func (e *CompactEncoder) parseMapHeader(current pathtree.Iterator) (mapInfo, error) {
	size, err := e.src.ReadVarint32()
	if err != nil {
		return mapInfo{}, err
	}
	lenIt, err := current.Lengths()
	if err != nil {
		return mapInfo{}, err
	}
	e.writeU32(lenIt, size)
	if size == 0 {
		return mapInfo{size: 0, keyType: tcore.TVoid, valueType: tcore.TVoid}, nil
	}
	b, err := e.src.ReadU8BE()
	if err != nil {
		return mapInfo{}, err
	}
	keyType, err := compactTypeFromNibble(b>>4, true)
	if err != nil {
		return mapInfo{}, err
	}
	valueType, err := compactTypeFromNibble(b&0x0f, true)
	if err != nil {
		return mapInfo{}, err
	}
	e.writeType(keyType)
	e.writeType(valueType)
	return mapInfo{size: size, keyType: keyType, valueType: valueType}, nil
}

func (e *CompactEncoder) parseFieldHeader(structIt pathtree.Iterator, prevID int16) (pathtree.Iterator, bool, error) {
	b, err := e.src.ReadU8BE()
	if err != nil {
		return pathtree.Iterator{}, false, err
	}
	typeNibble := b & 0x0f
	typ, err := compactTypeFromNibble(typeNibble, false)
	if err != nil {
		return pathtree.Iterator{}, false, err
	}
	e.writeType(typ)

	if typ == tcore.TStop {
		if b != 0 {
			return pathtree.Iterator{}, false, tcore.NewCorruptError(nil, "invalid field header: non-zero stop byte")
		}
		stopIt, err := structIt.Stop()
		return stopIt, true, err
	}

	deltaNibble := b & 0xf0
	var wideID int64
	if deltaNibble == 0 {
		wideID, err = readVarintZigzag(e.src)
		if err != nil {
			return pathtree.Iterator{}, false, err
		}
	} else {
		wideID = int64(prevID) + int64(deltaNibble>>4)
	}
	rawID, err := checkInt16Range(wideID)
	if err != nil {
		return pathtree.Iterator{}, false, err
	}

	rawIDDelta := uint16(rawID) - uint16(prevID)
	e.writeFieldDelta(rawIDDelta)

	if rawIDDelta >= 1 && rawIDDelta <= 15 && deltaNibble == 0 {
		return pathtree.Iterator{}, false, tcore.NewCorruptError(nil, "invalid field header: delta is small but varint is present")
	}

	fieldIt, err := structIt.Child(tcore.NodeID(rawID), typ)
	if err != nil {
		return pathtree.Iterator{}, false, err
	}

	if typ == tcore.TBool {
		val, err := parseBool(typeNibble)
		if err != nil {
			return pathtree.Iterator{}, false, err
		}
		e.writeBool(fieldIt, val)
	}
	return fieldIt, false, nil
}

func (e *CompactEncoder) advance(current pathtree.Iterator) error {
	typ := current.Type()
	id := current.ID()
	switch typ {
	case tcore.TBool:
		if id == tcore.MapKey || id == tcore.MapValue || id == tcore.ListElem {
			b, err := e.src.ReadU8BE()
			if err != nil {
				return err
			}
			val, err := parseBool(b)
			if err != nil {
				return err
			}
			e.writeBool(current, val)
		}
	case tcore.TByte:
		v, err := e.src.ReadU8BE()
		if err != nil {
			return err
		}
		e.target(current).Writer().WriteU8(v)
	case tcore.TI16:
		v, err := readVarintZigzag(e.src)
		if err != nil {
			return err
		}
		n, err := checkInt16Range(v)
		if err != nil {
			return err
		}
		e.target(current).Writer().WriteI16(n)
	case tcore.TI32:
		v, err := readVarintZigzag(e.src)
		if err != nil {
			return err
		}
		n, err := checkInt32Range(v)
		if err != nil {
			return err
		}
		e.target(current).Writer().WriteI32(n)
	case tcore.TI64:
		v, err := readVarintZigzag(e.src)
		if err != nil {
			return err
		}
		e.target(current).Writer().WriteI64(v)
	case tcore.TFloat:
		v, err := e.src.ReadF32BE()
		if err != nil {
			return err
		}
		e.target(current).Writer().WriteF32(v)
	case tcore.TDouble:
		v, err := e.src.ReadF64BE()
		if err != nil {
			return err
		}
		e.target(current).Writer().WriteF64(v)
	case tcore.TString:
		length, err := e.src.ReadVarint32()
		if err != nil {
			return err
		}
		lenIt, err := current.Lengths()
		if err != nil {
			return err
		}
		e.writeU32(lenIt, length)
		b, err := e.src.ReadBytes(int(length))
		if err != nil {
			return err
		}
		e.target(current).WriteBytes(b)
	case tcore.TMap:
		return e.parseMap(current)
	case tcore.TSet, tcore.TList:
		return e.parseList(current)
	case tcore.TStruct:
		prevID := int16(0)
		for {
			it, stop, err := e.parseFieldHeader(current, prevID)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
			if err := e.advance(it); err != nil {
				return err
			}
			prevID = int16(it.ID())
		}
	default:
		return tcore.NewCorruptError(nil, "unexpected thrift type %s", typ)
	}
	return nil
}

// parseList and parseMap always descend element-by-element through
// advance(); the original's batched numeric fast path is a pure
// CPU/allocation optimization over the same per-element routing and
// serialization rules, so a uniform loop produces byte-identical
// output.
func (e *CompactEncoder) parseList(current pathtree.Iterator) error {
	info, err := e.parseListHeader(current)
	if err != nil {
		return err
	}
	elemIt, err := current.ListElem(info.elemType)
	if err != nil {
		return err
	}
	for i := uint32(0); i < info.size; i++ {
		if err := e.advance(elemIt); err != nil {
			return err
		}
	}
	return nil
}

func (e *CompactEncoder) parseMap(current pathtree.Iterator) error {
	info, err := e.parseMapHeader(current)
	if err != nil {
		return err
	}
	if info.size == 0 {
		return nil
	}
	keyIt, err := current.MapKey(info.keyType)
	if err != nil {
		return err
	}
	valIt, err := current.MapValue(info.valueType)
	if err != nil {
		return err
	}
	for i := uint32(0); i < info.size; i++ {
		if err := e.advance(keyIt); err != nil {
			return err
		}
		if err := e.advance(valIt); err != nil {
			return err
		}
	}
	return nil
}

// CompactDecoder reconstructs a raw TCompact message from a
// ReadStreamSet.
type CompactDecoder struct {
	dst              *wire.Writer
	rs               *streamset.ReadStreamSet
	tree             *pathtree.Tree
	config           *tcore.DecoderConfig
	typeStream       *streamset.ReadStream
	fieldDeltaStream *streamset.ReadStream
}

// NewCompactDecoder constructs a CompactDecoder over rs.
func NewCompactDecoder(rs *streamset.ReadStreamSet, config *tcore.DecoderConfig, tree *pathtree.Tree) *CompactDecoder {
	return &CompactDecoder{
		dst:              wire.NewWriter(int(config.OriginalSize)),
		rs:               rs,
		tree:             tree,
		config:           config,
		typeStream:       rs.Singleton(tcore.Types),
		fieldDeltaStream: rs.Singleton(tcore.FieldDeltas),
	}
}

// Bytes returns the reconstructed TCompact message bytes.
func (d *CompactDecoder) Bytes() []byte { return d.dst.Bytes() }

// Unparse rebuilds messages from the split streams until the original
// byte count is reached, mirroring Parse's concatenated-message loop.
func (d *CompactDecoder) Unparse() error {
	for {
		root, err := d.tree.Root()
		if err != nil {
			return err
		}
		if d.config.UnparseMessageHeaders {
			if err := d.unparseMessageHeader(root); err != nil {
				return err
			}
		}
		if err := d.advance(root); err != nil {
			return err
		}
		if uint64(d.dst.Len()) >= d.config.OriginalSize {
			return nil
		}
	}
}

func (d *CompactDecoder) target(it pathtree.Iterator) *streamset.ReadStream {
	return resolveReadTarget(d.rs, it.Target())
}

func (d *CompactDecoder) readType() (tcore.TType, error) {
	b, err := d.typeStream.Reader().ReadU8()
	return tcore.TType(b), err
}

func (d *CompactDecoder) readFieldDelta() (uint16, error) {
	return d.fieldDeltaStream.Reader().ReadU16()
}

func (d *CompactDecoder) readU32(it pathtree.Iterator) (uint32, error) {
	return d.target(it).Reader().ReadU32()
}

func (d *CompactDecoder) unparseMessageHeader(root pathtree.Iterator) error {
	it, err := root.Child(tcore.MessageHeader, tcore.TString)
	if err != nil {
		return err
	}
	lenIt, err := it.Lengths()
	if err != nil {
		return err
	}
	size, err := d.readU32(lenIt)
	if err != nil {
		return err
	}
	b, err := d.target(it).ReadBytes(int(size))
	if err != nil {
		return err
	}
	d.dst.WriteBytes(b)
	return nil
}

func (d *CompactDecoder) unparseListHeader(current pathtree.Iterator) (listInfo, error) {
	lenIt, err := current.Lengths()
	if err != nil {
		return listInfo{}, err
	}
	size, err := d.readU32(lenIt)
	if err != nil {
		return listInfo{}, err
	}
	elemType, err := d.readType()
	if err != nil {
		return listInfo{}, err
	}
	typeNibble, err := compactTypeFor(elemType)
	if err != nil {
		return listInfo{}, err
	}
	sizeNibble := uint8(15)
	if size < 15 {
		sizeNibble = uint8(size)
	}
	if err := d.dst.WriteByte((sizeNibble << 4) | typeNibble); err != nil {
		return listInfo{}, err
	}
	if size >= 15 {
		d.dst.WriteVarint32(size)
	}
	return listInfo{size: size, elemType: elemType}, nil
}

func (d *CompactDecoder) unparseMapHeader(current pathtree.Iterator) (mapInfo, error) {
	lenIt, err := current.Lengths()
	if err != nil {
		return mapInfo{}, err
	}
	size, err := d.readU32(lenIt)
	if err != nil {
		return mapInfo{}, err
	}
	d.dst.WriteVarint32(size)
	if size == 0 {
		return mapInfo{size: 0, keyType: tcore.TVoid, valueType: tcore.TVoid}, nil
	}
	keyType, err := d.readType()
	if err != nil {
		return mapInfo{}, err
	}
	valueType, err := d.readType()
	if err != nil {
		return mapInfo{}, err
	}
	keyNibble, err := compactTypeFor(keyType)
	if err != nil {
		return mapInfo{}, err
	}
	valueNibble, err := compactTypeFor(valueType)
	if err != nil {
		return mapInfo{}, err
	}
	if err := d.dst.WriteByte((keyNibble << 4) | valueNibble); err != nil {
		return mapInfo{}, err
	}
	return mapInfo{size: size, keyType: keyType, valueType: valueType}, nil
}

func (d *CompactDecoder) unparseFieldHeader(structIt pathtree.Iterator, prevID int16) (pathtree.Iterator, bool, error) {
	typ, err := d.readType()
	if err != nil {
		return pathtree.Iterator{}, false, err
	}
	if typ == tcore.TStop {
		if err := d.dst.WriteByte(0); err != nil {
			return pathtree.Iterator{}, false, err
		}
		it, err := structIt.Stop()
		return it, true, err
	}

	rawIDDelta, err := d.readFieldDelta()
	if err != nil {
		return pathtree.Iterator{}, false, err
	}
	rawID := int16(rawIDDelta + uint16(prevID))

	fieldIt, err := structIt.Child(tcore.NodeID(rawID), typ)
	if err != nil {
		return pathtree.Iterator{}, false, err
	}

	var typeNibble uint8
	if typ == tcore.TBool {
		b, err := d.target(fieldIt).Reader().ReadU8()
		if err != nil {
			return pathtree.Iterator{}, false, err
		}
		typeNibble = unparseBool(b != 0)
	} else {
		typeNibble, err = compactTypeFor(typ)
		if err != nil {
			return pathtree.Iterator{}, false, err
		}
	}

	useVarint := rawIDDelta < 1 || rawIDDelta > 15
	var deltaNibble uint8
	if !useVarint {
		deltaNibble = uint8(rawIDDelta)
	}
	if err := d.dst.WriteByte((deltaNibble << 4) | typeNibble); err != nil {
		return pathtree.Iterator{}, false, err
	}
	if useVarint {
		d.dst.WriteVarint(wire.ZigZagEncode64(int64(rawID)))
	}
	return fieldIt, false, nil
}

func (d *CompactDecoder) advance(current pathtree.Iterator) error {
	typ := current.Type()
	id := current.ID()
	switch typ {
	case tcore.TBool:
		if id == tcore.MapKey || id == tcore.MapValue || id == tcore.ListElem {
			b, err := d.target(current).Reader().ReadU8()
			if err != nil {
				return err
			}
			if err := d.dst.WriteByte(unparseBool(b != 0)); err != nil {
				return err
			}
		}
	case tcore.TByte:
		v, err := d.target(current).Reader().ReadU8()
		if err != nil {
			return err
		}
		if err := d.dst.WriteByte(v); err != nil {
			return err
		}
	case tcore.TI16:
		v, err := d.target(current).Reader().ReadI16()
		if err != nil {
			return err
		}
		d.dst.WriteVarint(wire.ZigZagEncode64(int64(v)))
	case tcore.TI32:
		v, err := d.target(current).Reader().ReadI32()
		if err != nil {
			return err
		}
		d.dst.WriteVarint(wire.ZigZagEncode64(int64(v)))
	case tcore.TI64:
		v, err := d.target(current).Reader().ReadI64()
		if err != nil {
			return err
		}
		d.dst.WriteVarint(wire.ZigZagEncode64(v))
	case tcore.TFloat:
		v, err := d.target(current).Reader().ReadF32()
		if err != nil {
			return err
		}
		d.dst.WriteF32BE(v)
	case tcore.TDouble:
		v, err := d.target(current).Reader().ReadF64()
		if err != nil {
			return err
		}
		d.dst.WriteF64BE(v)
	case tcore.TString:
		lenIt, err := current.Lengths()
		if err != nil {
			return err
		}
		length, err := d.readU32(lenIt)
		if err != nil {
			return err
		}
		d.dst.WriteVarint32(length)
		b, err := d.target(current).ReadBytes(int(length))
		if err != nil {
			return err
		}
		d.dst.WriteBytes(b)
	case tcore.TMap:
		return d.unparseMap(current)
	case tcore.TSet, tcore.TList:
		return d.unparseList(current)
	case tcore.TStruct:
		prevID := int16(0)
		for {
			it, stop, err := d.unparseFieldHeader(current, prevID)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
			if err := d.advance(it); err != nil {
				return err
			}
			prevID = int16(it.ID())
		}
	default:
		return tcore.NewCorruptError(nil, "unexpected thrift type %s", typ)
	}
	return nil
}

func (d *CompactDecoder) unparseList(current pathtree.Iterator) error {
	info, err := d.unparseListHeader(current)
	if err != nil {
		return err
	}
	if info.size == 0 {
		return nil
	}
	elemIt, err := current.ListElem(info.elemType)
	if err != nil {
		return err
	}
	for i := uint32(0); i < info.size; i++ {
		if err := d.advance(elemIt); err != nil {
			return err
		}
	}
	return nil
}

func (d *CompactDecoder) unparseMap(current pathtree.Iterator) error {
	info, err := d.unparseMapHeader(current)
	if err != nil {
		return err
	}
	if info.size == 0 {
		return nil
	}
	keyIt, err := current.MapKey(info.keyType)
	if err != nil {
		return err
	}
	valIt, err := current.MapValue(info.valueType)
	if err != nil {
		return err
	}
	for i := uint32(0); i < info.size; i++ {
		if err := d.advance(keyIt); err != nil {
			return err
		}
		if err := d.advance(valIt); err != nil {
			return err
		}
	}
	return nil
}
