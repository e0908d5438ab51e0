//go:build linux

package thread

import (
	"runtime"
	"syscall"
	"unsafe"
)

const (
	cpuSetSize = 1024
	nCpuBits   = 64
)

// BindCore locks the calling goroutine to its OS thread and pins that
// thread to the given core. Pairs with UnbindCore.
func BindCore(core int) bool {
	runtime.LockOSThread()
	var mask [cpuSetSize / nCpuBits]uint64
	mask[core/nCpuBits] |= 1 << (uint(core % nCpuBits))
	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, 0, uintptr(len(mask)*8), uintptr(unsafe.Pointer(&mask[0])))
	if err != 0 {
		return false
	}
	return true
}

// UnbindCore restores the full affinity mask and releases the OS thread.
func UnbindCore() bool {
	var mask [cpuSetSize / nCpuBits]uint64
	numCpu := runtime.NumCPU()
	for core := 0; core < numCpu; core++ {
		mask[core/nCpuBits] |= 1 << (uint(core % nCpuBits))
	}
	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, 0, uintptr(len(mask)*8), uintptr(unsafe.Pointer(&mask[0])))
	if err != 0 {
		return false
	}
	runtime.UnlockOSThread()
	return true
}
