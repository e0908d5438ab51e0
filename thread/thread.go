// Package thread exposes the OS thread identity and affinity helpers the
// thread-local heap family is built on. A goroutine that wants a stable
// thread-local heap must call Lock before its first allocation and keep the
// lock for the lifetime of every handle it owns.
package thread

import (
	"runtime"
)

// Lock wires the calling goroutine to its current OS thread.
func Lock() {
	runtime.LockOSThread()
}

// Unlock releases the goroutine from its OS thread. Any thread-local heap
// handles owned by the goroutine become unusable.
func Unlock() {
	runtime.UnlockOSThread()
}
