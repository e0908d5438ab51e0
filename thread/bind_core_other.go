//go:build !linux && !windows

package thread

import (
	"runtime"
)

// BindCore locks the calling goroutine to its OS thread. Core affinity is
// not available on this target.
func BindCore(core int) bool {
	runtime.LockOSThread()
	return true
}

// UnbindCore releases the OS thread.
func UnbindCore() bool {
	runtime.UnlockOSThread()
	return true
}
