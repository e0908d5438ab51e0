//go:build !nothreads

package mem

import (
	"sync"
	"testing"
)

func TestSharedMallocFree(t *testing.T) {
	p := MallocShared(4096)
	if p == nil {
		panic("???")
	}
	for i := int64(0); i < 4096; i++ {
		*(*uint8)(Offset(p, i)) = 0xAA
	}
	if !FreeShared(p) {
		t.Fatal("shared free failed")
	}
}

func TestSharedZero(t *testing.T) {
	p := MallocSharedZero(64 * KB)
	for i := int64(0); i < 64*KB; i++ {
		if *(*uint8)(Offset(p, i)) != 0 {
			t.Fatalf("shared byte %d not zeroed", i)
		}
	}
	FreeShared(p)
}

func TestSharedReallocAcrossGoroutines(t *testing.T) {
	p := MallocShared(128)
	for i := int64(0); i < 128; i++ {
		*(*uint8)(Offset(p, i)) = uint8(i)
	}
	done := make(chan bool)
	go func() {
		// resize and free from a different goroutine (and likely thread)
		np := ReallocShared(p, 64*KB)
		if np == nil {
			done <- false
			return
		}
		ok := true
		for i := int64(0); i < 128; i++ {
			if *(*uint8)(Offset(np, i)) != uint8(i) {
				ok = false
			}
		}
		FreeShared(np)
		done <- ok
	}()
	if !<-done {
		t.Fatal("shared block corrupted across goroutines")
	}
}

func TestSharedTypedWrappers(t *testing.T) {
	arr := CreateSharedType[uint64](4)
	if arr == nil {
		panic("???")
	}
	for i := int64(0); i < 4; i++ {
		if *OffsetType(arr, i) != 0 {
			t.Fatalf("shared element %d not zeroed", i)
		}
		*OffsetType(arr, i) = uint64(i + 1)
	}
	arr = ReallocSharedType(arr, 8)
	if arr == nil {
		panic("???")
	}
	for i := int64(0); i < 4; i++ {
		if *OffsetType(arr, i) != uint64(i+1) {
			t.Fatalf("shared element %d lost on grow", i)
		}
	}
	if !FreeSharedType(arr) {
		t.Fatal("typed shared free failed")
	}

	raw := CreateSharedTypeU[uint32](16)
	if raw == nil {
		panic("???")
	}
	*raw = 0xDEADBEEF
	if !FreeSharedType(raw) {
		t.Fatal("typed shared free failed")
	}
}

func TestSharedConcurrentStress(t *testing.T) {
	const (
		workers = 8
		rounds  = 2000
	)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				size := (seed*2654435761 + uint64(i)*977) % (8 * KB)
				if size == 0 {
					size = 1
				}
				p := MallocShared(size)
				if p == nil {
					panic("???")
				}
				*(*uint8)(p) = uint8(i)
				if !FreeShared(p) {
					panic("???")
				}
				if TotalSharedBytes() < 0 {
					panic("???")
				}
			}
		}(uint64(w + 1))
	}
	wg.Wait()
	occupied := OccupiedSharedBytes()
	free := FreeSharedBytes()
	total := TotalSharedBytes()
	if occupied != 0 {
		t.Fatalf("shared heap still occupied after stress: %d", occupied)
	}
	if occupied+free != total {
		t.Fatal("shared counters inconsistent")
	}
}
