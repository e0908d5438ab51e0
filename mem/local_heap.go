package mem

import (
	"sync"
	"unsafe"

	"github.com/skyefly/rtmem/thread"
)

// Thread-local heap family. Each OS thread gets its own unsynchronized
// arena, keyed by thread id; the registry lock only guards the lookup, not
// the allocations themselves. Handles must be resized and freed on the
// thread that created them. Callers that care about the affinity contract
// should pin their goroutine with thread.Lock first: a migrating goroutine
// that allocates on one thread and frees on another is undefined behavior,
// which this family surfaces as a failed lookup at best.

var (
	localHeaps   = map[uint64]*heap{}
	localHeapsMu sync.RWMutex
)

func localHeap() *heap {
	tid := thread.ID()
	localHeapsMu.RLock()
	h := localHeaps[tid]
	localHeapsMu.RUnlock()
	if h != nil {
		return h
	}
	localHeapsMu.Lock()
	h = localHeaps[tid]
	if h == nil {
		h = &heap{}
		localHeaps[tid] = h
	}
	localHeapsMu.Unlock()
	return h
}

// Malloc returns at least size uninitialized bytes owned by the calling
// thread, or nil on exhaustion or when size is zero. The block must later
// be released with Free or Realloc to size zero.
func Malloc(size uint64) unsafe.Pointer {
	return localHeap().malloc(size)
}

// MallocZero is Malloc with the returned bytes zeroed.
func MallocZero(size uint64) unsafe.Pointer {
	return localHeap().mallocZero(size)
}

// Realloc grows or shrinks the block at p to hold at least size bytes,
// relocating it if needed. Realloc(nil, n) allocates; Realloc(p, 0) frees
// and returns nil.
func Realloc(p unsafe.Pointer, size uint64) unsafe.Pointer {
	return localHeap().realloc(p, size)
}

// Free releases a block obtained from Malloc, MallocZero or Realloc on
// this thread.
func Free(p unsafe.Pointer) bool {
	return localHeap().free(p)
}

// OccupiedBytes reports the bytes of the calling thread's heap currently
// holding live allocation data, headers included. Returns -1 when raw
// memory access is unavailable on this target.
func OccupiedBytes() int64 {
	if !RawMemoryAvailable {
		return -1
	}
	occupied, _ := localHeap().stats()
	return occupied
}

// FreeBytes reports the bytes owned by the calling thread's heap that hold
// no data. Returns -1 when raw memory access is unavailable.
func FreeBytes() int64 {
	if !RawMemoryAvailable {
		return -1
	}
	occupied, total := localHeap().stats()
	return total - occupied
}

// TotalBytes reports all bytes owned by the calling thread's heap. Returns
// -1 when raw memory access is unavailable.
func TotalBytes() int64 {
	if !RawMemoryAvailable {
		return -1
	}
	_, total := localHeap().stats()
	return total
}

// LocalHeap adapts the thread-local family to the Heap interface.
type LocalHeap struct{}

func NewLocalHeap() LocalHeap {
	return struct{}{}
}

func (LocalHeap) Malloc(size uint64) unsafe.Pointer     { return Malloc(size) }
func (LocalHeap) MallocZero(size uint64) unsafe.Pointer { return MallocZero(size) }
func (LocalHeap) Realloc(p unsafe.Pointer, size uint64) unsafe.Pointer {
	return Realloc(p, size)
}
func (LocalHeap) Free(p unsafe.Pointer) bool { return Free(p) }
func (LocalHeap) OccupiedBytes() int64       { return OccupiedBytes() }
func (LocalHeap) FreeBytes() int64           { return FreeBytes() }
func (LocalHeap) TotalBytes() int64          { return TotalBytes() }
