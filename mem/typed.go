package mem

import (
	"unsafe"
)

// Typed convenience layer: arithmetic shims that turn an element type and a
// count into a byte size and forward to the untyped heap operations. The
// returned pointers are ordinary handles and obey the same affinity and
// exactly-once-release rules as the untyped family that produced them.

// CreateType allocates count contiguous zeroed elements of type T from heap.
func CreateType[T any](heap Heap, count uint64) *T {
	p := (*T)(heap.MallocZero(count * SizeOf[T]()))
	if AllocFailPanic && p == nil {
		panic("malloc fail")
	}
	traceAlloc(heap, count*SizeOf[T](), unsafe.Pointer(p))
	return p
}

// CreateTypeU allocates count contiguous uninitialized elements of type T
// from heap. Reading an element before writing it is undefined behavior.
func CreateTypeU[T any](heap Heap, count uint64) *T {
	p := (*T)(heap.Malloc(count * SizeOf[T]()))
	if AllocFailPanic && p == nil {
		panic("malloc fail")
	}
	traceAlloc(heap, count*SizeOf[T](), unsafe.Pointer(p))
	return p
}

// ReallocType resizes the array at t to hold count elements. The first
// min(old, new) elements are preserved; any added elements are
// uninitialized. ReallocType(heap, nil, n) allocates; count zero frees t
// and returns nil.
func ReallocType[T any](heap Heap, t *T, count uint64) *T {
	p := (*T)(heap.Realloc(unsafe.Pointer(t), count*SizeOf[T]()))
	if AllocFailPanic && p == nil && count != 0 {
		panic("realloc fail")
	}
	return p
}

// FreeType releases the block at t back to heap.
func FreeType[T any](heap Heap, t *T) bool {
	ok := heap.Free(unsafe.Pointer(t))
	if AllocFailPanic && !ok {
		panic("free fail")
	}
	traceFree(heap, unsafe.Pointer(t))
	return ok
}
