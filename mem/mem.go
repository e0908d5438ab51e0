package mem

import (
	"fmt"
	"io"
	"unsafe"
)

const (
	B  = 1
	KB = 1024 * B
	MB = 1024 * KB
	GB = 1024 * MB
)

var (
	// DefaultLogWriter receives a trace line for every typed alloc/free when set.
	DefaultLogWriter io.Writer = nil
	// AllocFailPanic makes the typed wrappers panic instead of returning nil on exhaustion.
	AllocFailPanic = false
)

// Heap is the operation set shared by the thread-local and shared heap
// families. Handles are opaque addresses: they carry no size or heap
// affinity of their own, and every handle must be resized and freed
// through the same family that produced it.
type Heap interface {
	Malloc(size uint64) unsafe.Pointer
	MallocZero(size uint64) unsafe.Pointer
	Realloc(p unsafe.Pointer, size uint64) unsafe.Pointer
	Free(p unsafe.Pointer) bool
	OccupiedBytes() int64
	FreeBytes() int64
	TotalBytes() int64
}

func SizeOf[T any]() uint64 {
	var t T
	return uint64(unsafe.Sizeof(t))
}

func Offset(p unsafe.Pointer, offset int64) unsafe.Pointer {
	if offset > 0 {
		return unsafe.Pointer(uintptr(p) + uintptr(offset))
	} else if offset < 0 {
		return unsafe.Pointer(uintptr(p) - uintptr(-offset))
	} else {
		return p
	}
}

func OffsetType[T any](t *T, offset int64) *T {
	return (*T)(Offset(unsafe.Pointer(t), offset*int64(SizeOf[T]())))
}

func traceAlloc(heap Heap, size uint64, p unsafe.Pointer) {
	if DefaultLogWriter != nil {
		_, _ = DefaultLogWriter.Write([]byte(fmt.Sprintf("[Malloc] heap:%T size:%d ptr:%p\n", heap, size, p)))
	}
}

func traceFree(heap Heap, p unsafe.Pointer) {
	if DefaultLogWriter != nil {
		_, _ = DefaultLogWriter.Write([]byte(fmt.Sprintf("[Free] heap:%T ptr:%p\n", heap, p)))
	}
}
