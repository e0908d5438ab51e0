//go:build !linux && !windows && (!darwin || !cgo)

package thread

// ID returns the OS id of the calling thread. Targets without a thread id
// source collapse to a single id, which also covers single-threaded
// targets such as js.
func ID() uint64 {
	return 0
}
