//go:build linux

package thread

import (
	"golang.org/x/sys/unix"
)

// ID returns the OS id of the calling thread.
func ID() uint64 {
	return uint64(unix.Gettid())
}
