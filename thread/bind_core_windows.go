//go:build windows

package thread

import (
	"errors"
	"runtime"

	"golang.org/x/sys/windows"
)

// BindCore locks the calling goroutine to its OS thread and pins that
// thread to the given core. Pairs with UnbindCore.
func BindCore(core int) bool {
	runtime.LockOSThread()
	var mask uintptr
	mask |= 1 << core
	thread := windows.CurrentThread()
	modkernel32 := windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask := modkernel32.NewProc("SetThreadAffinityMask")
	_, _, err := procSetThreadAffinityMask.Call(uintptr(thread), mask)
	if !errors.Is(err, windows.NOERROR) {
		return false
	}
	return true
}

// UnbindCore restores the full affinity mask and releases the OS thread.
func UnbindCore() bool {
	var mask uintptr
	numCpu := runtime.NumCPU()
	for core := 0; core < numCpu; core++ {
		mask |= 1 << core
	}
	thread := windows.CurrentThread()
	modkernel32 := windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadAffinityMask := modkernel32.NewProc("SetThreadAffinityMask")
	_, _, err := procSetThreadAffinityMask.Call(uintptr(thread), mask)
	if !errors.Is(err, windows.NOERROR) {
		return false
	}
	runtime.UnlockOSThread()
	return true
}
