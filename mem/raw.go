package mem

import (
	"bytes"
	"unsafe"
)

// Raw memory utilities. All of them operate on exactly size bytes and
// trust the caller completely: passing a size larger than either region's
// true extent is undefined behavior, not a reported error.

//go:linkname memmove runtime.memmove
func memmove(to, from unsafe.Pointer, n uintptr)

// MemZero overwrites size bytes at dst with zero.
func MemZero(dst unsafe.Pointer, size uint64) {
	if size == 0 {
		return
	}
	clear(unsafe.Slice((*byte)(dst), size))
}

// MemCpy copies size bytes from src to dst. The regions must not overlap.
func MemCpy(dst unsafe.Pointer, src unsafe.Pointer, size uint64) {
	memmove(dst, src, uintptr(size))
}

// MemMove copies size bytes from src to dst. The regions may overlap.
func MemMove(dst unsafe.Pointer, src unsafe.Pointer, size uint64) {
	memmove(dst, src, uintptr(size))
}

// MemEqual reports whether the size-byte regions at a and b are identical.
func MemEqual(a unsafe.Pointer, b unsafe.Pointer, size uint64) bool {
	if size == 0 {
		return true
	}
	return bytes.Equal(unsafe.Slice((*byte)(a), size), unsafe.Slice((*byte)(b), size))
}

func MemZeroType[T any](dst *T, count uint64) {
	MemZero(unsafe.Pointer(dst), count*SizeOf[T]())
}

func MemCpyType[T any](dst *T, src *T, count uint64) {
	MemCpy(unsafe.Pointer(dst), unsafe.Pointer(src), count*SizeOf[T]())
}

func MemMoveType[T any](dst *T, src *T, count uint64) {
	MemMove(unsafe.Pointer(dst), unsafe.Pointer(src), count*SizeOf[T]())
}

func MemEqualType[T any](a *T, b *T, count uint64) bool {
	return MemEqual(unsafe.Pointer(a), unsafe.Pointer(b), count*SizeOf[T]())
}
