//go:build linux || windows || (darwin && cgo)

package thread

import (
	"testing"
)

func TestIDStableWhileLocked(t *testing.T) {
	Lock()
	defer Unlock()
	a := ID()
	b := ID()
	if a != b {
		t.Fatal("thread id changed under lock")
	}
}

func TestDistinctLockedGoroutines(t *testing.T) {
	Lock()
	defer Unlock()
	self := ID()
	other := make(chan uint64)
	hold := make(chan struct{})
	go func() {
		Lock()
		defer Unlock()
		other <- ID()
		<-hold
	}()
	got := <-other
	if got == self {
		t.Fatal("two locked goroutines reported the same thread")
	}
	close(hold)
}
