package mem

import (
	"testing"

	"github.com/skyefly/rtmem/thread"
)

func TestMemZero(t *testing.T) {
	thread.Lock()
	defer thread.Unlock()
	size := uint64(4096)
	p := Malloc(size)
	q := MallocZero(size)
	if p == nil || q == nil {
		panic("???")
	}
	MemZero(p, size)
	if !MemEqual(p, q, size) {
		t.Fatal("zeroed region differs from zero-allocated region")
	}
	Free(p)
	Free(q)
}

func TestMemCpy(t *testing.T) {
	thread.Lock()
	defer thread.Unlock()
	size := uint64(1 * MB)
	src := Malloc(size)
	dst := Malloc(size)
	for i := int64(0); i < int64(size); i++ {
		*(*uint8)(Offset(src, i)) = uint8(i)
	}
	MemCpy(dst, src, size)
	if !MemEqual(src, dst, size) {
		t.Fatal("copied region differs from source")
	}
	Free(src)
	Free(dst)
}

func TestMemMoveOverlap(t *testing.T) {
	thread.Lock()
	defer thread.Unlock()
	size := uint64(256)
	p := Malloc(size)
	for i := int64(0); i < int64(size); i++ {
		*(*uint8)(Offset(p, i)) = uint8(i)
	}
	snapshot := make([]byte, 128)
	for i := int64(0); i < 128; i++ {
		snapshot[i] = *(*uint8)(Offset(p, i))
	}
	// shift the first 128 bytes forward by 64, overlapping regions
	MemMove(Offset(p, 64), p, 128)
	for i := int64(0); i < 128; i++ {
		if *(*uint8)(Offset(p, 64+i)) != snapshot[i] {
			t.Fatalf("byte %d lost in overlapping move", i)
		}
	}
	Free(p)
}

func TestMemEqualPrefix(t *testing.T) {
	thread.Lock()
	defer thread.Unlock()
	a := MallocZero(100)
	b := Malloc(100)
	for i := int64(0); i < 100; i++ {
		*(*uint8)(Offset(b, i)) = 0xAB
	}
	MemCpy(b, a, 50)
	if !MemEqual(a, b, 50) {
		t.Fatal("first 50 bytes should match after copy")
	}
	if MemEqual(a, b, 100) {
		t.Fatal("full regions should differ past the copied prefix")
	}
	Free(a)
	Free(b)
}

func TestMemZeroSizeZero(t *testing.T) {
	thread.Lock()
	defer thread.Unlock()
	p := Malloc(8)
	MemZero(p, 0)
	MemCpy(p, p, 0)
	if !MemEqual(p, p, 0) {
		t.Fatal("zero-length regions always compare equal")
	}
	Free(p)
}
