//go:build !nothreads

package mem

import (
	"sync"
	"unsafe"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Shared heap family. One global arena guarded by a mutex: handles may be
// created, resized and freed from any thread or goroutine. Absent entirely
// when built with the nothreads tag.

var (
	sharedArena   heap
	sharedArenaMu sync.Mutex
)

// MallocShared returns at least size uninitialized bytes usable from any
// thread, or nil on exhaustion or when size is zero.
func MallocShared(size uint64) unsafe.Pointer {
	sharedArenaMu.Lock()
	p := sharedArena.malloc(size)
	sharedArenaMu.Unlock()
	return p
}

// MallocSharedZero is MallocShared with the returned bytes zeroed.
func MallocSharedZero(size uint64) unsafe.Pointer {
	sharedArenaMu.Lock()
	p := sharedArena.mallocZero(size)
	sharedArenaMu.Unlock()
	return p
}

// ReallocShared grows or shrinks a shared block, relocating it if needed.
// ReallocShared(nil, n) allocates; ReallocShared(p, 0) frees and returns nil.
func ReallocShared(p unsafe.Pointer, size uint64) unsafe.Pointer {
	sharedArenaMu.Lock()
	np := sharedArena.realloc(p, size)
	sharedArenaMu.Unlock()
	return np
}

// FreeShared releases a block obtained from the shared family.
func FreeShared(p unsafe.Pointer) bool {
	sharedArenaMu.Lock()
	ok := sharedArena.free(p)
	sharedArenaMu.Unlock()
	return ok
}

// OccupiedSharedBytes reports the shared-heap bytes currently holding live
// allocation data. The value is a point-in-time snapshot; under concurrent
// mutation consecutive calls need not be consistent with each other.
// Returns -1 when raw memory access is unavailable.
func OccupiedSharedBytes() int64 {
	if !RawMemoryAvailable {
		return -1
	}
	sharedArenaMu.Lock()
	occupied, _ := sharedArena.stats()
	sharedArenaMu.Unlock()
	return occupied
}

// FreeSharedBytes reports the shared-heap bytes holding no data. Returns -1
// when raw memory access is unavailable.
func FreeSharedBytes() int64 {
	if !RawMemoryAvailable {
		return -1
	}
	sharedArenaMu.Lock()
	occupied, total := sharedArena.stats()
	sharedArenaMu.Unlock()
	return total - occupied
}

// TotalSharedBytes reports all bytes owned by the shared heap. Returns -1
// when raw memory access is unavailable.
func TotalSharedBytes() int64 {
	if !RawMemoryAvailable {
		return -1
	}
	sharedArenaMu.Lock()
	_, total := sharedArena.stats()
	sharedArenaMu.Unlock()
	return total
}

// CreateSharedType allocates count contiguous zeroed elements of type T
// from the shared heap.
func CreateSharedType[T any](count uint64) *T {
	return CreateType[T](NewSharedHeap(), count)
}

// CreateSharedTypeU allocates count contiguous uninitialized elements of
// type T from the shared heap.
func CreateSharedTypeU[T any](count uint64) *T {
	return CreateTypeU[T](NewSharedHeap(), count)
}

// ReallocSharedType resizes a shared array to hold count elements.
func ReallocSharedType[T any](t *T, count uint64) *T {
	return ReallocType(NewSharedHeap(), t, count)
}

// FreeSharedType releases a typed shared block.
func FreeSharedType[T any](t *T) bool {
	return FreeType(NewSharedHeap(), t)
}

// SharedHeap adapts the shared family to the Heap interface.
type SharedHeap struct{}

func NewSharedHeap() SharedHeap {
	return struct{}{}
}

func (SharedHeap) Malloc(size uint64) unsafe.Pointer     { return MallocShared(size) }
func (SharedHeap) MallocZero(size uint64) unsafe.Pointer { return MallocSharedZero(size) }
func (SharedHeap) Realloc(p unsafe.Pointer, size uint64) unsafe.Pointer {
	return ReallocShared(p, size)
}
func (SharedHeap) Free(p unsafe.Pointer) bool { return FreeShared(p) }
func (SharedHeap) OccupiedBytes() int64       { return OccupiedSharedBytes() }
func (SharedHeap) FreeBytes() int64           { return FreeSharedBytes() }
func (SharedHeap) TotalBytes() int64          { return TotalSharedBytes() }

func writeSharedStats(obj *jwriter.ObjectState) {
	SnapshotStats(NewSharedHeap()).writeJson(obj, "SharedHeap")
}
