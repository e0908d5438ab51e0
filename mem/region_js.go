//go:build js

package mem

import (
	"unsafe"
)

// RawMemoryAvailable reports whether this target can hand out raw memory at
// all. When false every allocation returns nil and every introspection
// counter returns -1.
const RawMemoryAvailable = false

func reserveRegion(size uint64) unsafe.Pointer {
	return nil
}
