//go:build linux

package mem

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// RawMemoryAvailable reports whether this target can hand out raw memory at
// all. When false every allocation returns nil and every introspection
// counter returns -1.
const RawMemoryAvailable = true

func reserveRegion(size uint64) unsafe.Pointer {
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(data))
}
