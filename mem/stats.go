package mem

import (
	"encoding/json"
	"strconv"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// HeapStats is a point-in-time counter snapshot for one heap.
type HeapStats struct {
	OccupiedBytes int64
	FreeBytes     int64
	TotalBytes    int64
}

// SnapshotStats reads the three counters of h in one call. The values are
// individually consistent only; a concurrent mutator may move the heap
// between reads.
func SnapshotStats(h Heap) HeapStats {
	return HeapStats{
		OccupiedBytes: h.OccupiedBytes(),
		FreeBytes:     h.FreeBytes(),
		TotalBytes:    h.TotalBytes(),
	}
}

func (s HeapStats) writeJson(obj *jwriter.ObjectState, name string) {
	heap := obj.Name(name).Object()
	writeCounter(&heap, "OccupiedBytes", s.OccupiedBytes)
	writeCounter(&heap, "FreeBytes", s.FreeBytes)
	writeCounter(&heap, "TotalBytes", s.TotalBytes)
	heap.End()
}

// writeCounter emits v as a plain decimal so the value survives intact on
// targets where int is 32 bits.
func writeCounter(obj *jwriter.ObjectState, name string, v int64) {
	obj.Name(name).Raw(json.RawMessage(strconv.FormatInt(v, 10)))
}

// DumpStatsJson renders the counters of the calling thread's heap and, when
// built with thread support, the shared heap as a JSON document.
func DumpStatsJson() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	SnapshotStats(NewLocalHeap()).writeJson(&obj, "LocalHeap")
	writeSharedStats(&obj)
	obj.End()
	return string(writer.Bytes())
}
