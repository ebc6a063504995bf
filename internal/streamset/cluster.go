package streamset

import (
	"thriftsplit/internal/tcore"
	"thriftsplit/internal/wire"
)

// ClusterOutput is one cluster's combined content, ready to hand to the
// host as a single stream, alongside the routing hint it was
// configured with.
type ClusterOutput struct {
	Index     int
	Type      tcore.TType
	Successor int
	Outcome   tcore.VariableOutcome
	Data      []byte
	NumElts   int
	// LenData holds the VSF length array, only populated for string
	// clusters.
	LenData []byte
}

// FinalizeClusters concatenates every cluster's already-populated
// member streams into one combined buffer apiece, recording each
// member's chunk size into a single shared segment-length stream, in
// cluster then member order. ClusterLengths must be the last variable
// stream a host sees (mirrors the original's ordering requirement).
//
// Unclustered logical streams are left untouched in ws; callers read
// them directly via ws.Variable.
func FinalizeClusters(ws *WriteStreamSet, config *tcore.BaseConfig, formatVersion int) ([]ClusterOutput, error) {
	outs := make([]ClusterOutput, 0, len(config.Clusters()))
	for idx, cluster := range config.Clusters() {
		if len(cluster.IDList) == 0 {
			return nil, tcore.NewConfigError("cluster %d is empty", idx)
		}
		clusterType := ws.Variable(cluster.IDList[0]).Type
		for _, id := range cluster.IDList[1:] {
			if ws.Variable(id).Type != clusterType {
				return nil, tcore.NewConfigError("cluster %d mixes stream types", idx)
			}
		}
		if clusterType == tcore.TString {
			out, err := finalizeStringCluster(ws, idx, cluster)
			if err != nil {
				return nil, err
			}
			outs = append(outs, out)
			continue
		}
		out, err := finalizeFixedWidthCluster(ws, idx, cluster, formatVersion)
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}

func finalizeFixedWidthCluster(ws *WriteStreamSet, idx int, cluster tcore.LogicalCluster, formatVersion int) (ClusterOutput, error) {
	width := ws.Variable(cluster.IDList[0]).Type.Width()
	if width == 0 {
		width = 1 // TByte-tagged serial streams (e.g. opaque bytes) have Width()==1 already; guard anyway
	}
	outcome := tcore.OutcomeNumeric
	if width == 1 {
		outcome = tcore.OutcomeSerialized
	}
	var data []byte
	for _, id := range cluster.IDList {
		member := ws.Variable(id)
		chunk := member.Bytes()
		if len(chunk)%width != 0 {
			return ClusterOutput{}, tcore.NewCorruptError(nil, "cluster %d member %d size not a multiple of width %d", idx, id, width)
		}
		segmentElts := uint32(len(chunk) / width)
		if formatVersion < tcore.MinFormatVersionStringVSF {
			ws.ClusterLengths().Writer().WriteU32(uint32(len(chunk)))
		} else {
			ws.ClusterLengths().Writer().WriteU32(segmentElts)
		}
		data = append(data, chunk...)
	}
	return ClusterOutput{
		Index:     idx,
		Type:      ws.Variable(cluster.IDList[0]).Type,
		Successor: cluster.Successor,
		Outcome:   outcome,
		Data:      data,
		NumElts:   len(data) / width,
	}, nil
}

func finalizeStringCluster(ws *WriteStreamSet, idx int, cluster tcore.LogicalCluster) (ClusterOutput, error) {
	var content []byte
	var lens []byte
	totalElts := 0
	for _, id := range cluster.IDList {
		member := ws.Variable(id)
		lenStream := ws.StringLength(id)
		if lenStream == nil {
			return ClusterOutput{}, tcore.NewConfigError("cluster %d member %d has no VSF length stream; string clusters require format version >= %d", idx, id, tcore.MinFormatVersionStringVSF)
		}
		lenBytes := lenStream.Bytes()
		numEntries := len(lenBytes) / 4
		ws.ClusterLengths().Writer().WriteU32(uint32(numEntries))
		lens = append(lens, lenBytes...)
		content = append(content, member.Bytes()...)
		totalElts += numEntries
	}
	return ClusterOutput{
		Index:     idx,
		Type:      tcore.TString,
		Successor: cluster.Successor,
		Outcome:   tcore.OutcomeVSF,
		Data:      content,
		LenData:   lens,
		NumElts:   totalElts,
	}, nil
}

// SplitFixedWidthCluster is the decode-side inverse of
// finalizeFixedWidthCluster: it walks the shared segment-length stream
// and slices data back into per-member ReadStreams, installing them
// into rs.
func SplitFixedWidthCluster(rs *ReadStreamSet, cluster tcore.LogicalCluster, memberType tcore.TType, data []byte, formatVersion int) error {
	width := memberType.Width()
	if width == 0 {
		width = 1
	}
	lengths := rs.ClusterLengths()
	pos := 0
	for _, id := range cluster.IDList {
		raw, err := lengths.Reader().ReadU32()
		if err != nil {
			return tcore.NewCorruptError(nil, "reading cluster segment length: %v", err)
		}
		numBytes := int(raw)
		if formatVersion >= tcore.MinFormatVersionStringVSF {
			numBytes = int(raw) * width
		}
		if numBytes < 0 || pos+numBytes > len(data) {
			return tcore.NewCorruptError(nil, "cluster segment length exceeds stream size")
		}
		rs.variables[id] = NewReadStream(data[pos:pos+numBytes], memberType)
		pos += numBytes
	}
	if pos != len(data) {
		return tcore.NewCorruptError(nil, "failed to consume fixed-width cluster stream")
	}
	return nil
}

// SplitStringCluster is the decode-side inverse of
// finalizeStringCluster: it reads each member's VSF entry count from
// the shared segment-length stream, slices the length array, sums it
// to find the member's content length, and slices the content buffer
// accordingly.
func SplitStringCluster(rs *ReadStreamSet, cluster tcore.LogicalCluster, content []byte, lenData []byte) error {
	lengths := rs.ClusterLengths()
	contentPos, lenPos := 0, 0
	for _, id := range cluster.IDList {
		raw, err := lengths.Reader().ReadU32()
		if err != nil {
			return tcore.NewCorruptError(nil, "reading cluster segment entry count: %v", err)
		}
		numEntries := int(raw)
		if lenPos+numEntries*4 > len(lenData) {
			return tcore.NewCorruptError(nil, "cluster entry count overflows length buffer")
		}
		memberLens := lenData[lenPos : lenPos+numEntries*4]
		lenPos += numEntries * 4

		memberBytes := 0
		lr := wire.NewLEReader(memberLens, 4)
		for i := 0; i < numEntries; i++ {
			v, _ := lr.ReadU32()
			memberBytes += int(v)
		}
		if contentPos+memberBytes > len(content) {
			return tcore.NewCorruptError(nil, "cluster content overflows buffer")
		}
		rs.variables[id] = NewReadStream(content[contentPos:contentPos+memberBytes], tcore.TString)
		rs.stringLens[id] = NewReadStream(memberLens, tcore.TI32)
		contentPos += memberBytes
	}
	if contentPos != len(content) {
		return tcore.NewCorruptError(nil, "failed to consume string cluster content stream")
	}
	if lenPos != len(lenData) {
		return tcore.NewCorruptError(nil, "failed to consume string cluster length stream")
	}
	return nil
}
