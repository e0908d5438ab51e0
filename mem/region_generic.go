//go:build !linux && !js

package mem

import (
	"unsafe"
)

type _type struct{}

//go:linkname mallocgc runtime.mallocgc
func mallocgc(size uintptr, typ *_type, needzero bool) unsafe.Pointer

// RawMemoryAvailable reports whether this target can hand out raw memory at
// all. When false every allocation returns nil and every introspection
// counter returns -1.
const RawMemoryAvailable = true

// Regions are pointerless as far as the GC is concerned; the region struct
// holding base keeps the whole range alive.
func reserveRegion(size uint64) unsafe.Pointer {
	return mallocgc(uintptr(size), nil, true)
}
