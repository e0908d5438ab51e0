package mem

import (
	"testing"
	"unsafe"
)

func TestArenaSplitAndCoalesce(t *testing.T) {
	h := &heap{}
	ptrs := make([]unsafe.Pointer, 64)
	for i := range ptrs {
		ptrs[i] = h.malloc(1024)
		if ptrs[i] == nil {
			panic("???")
		}
	}
	occupied, total := h.stats()
	if occupied < 64*1024 || total < occupied {
		t.Fatal("counters out of range after allocs")
	}
	for _, p := range ptrs {
		if !h.free(p) {
			panic("???")
		}
	}
	occupied, _ = h.stats()
	if occupied != 0 {
		t.Fatalf("arena still occupied after freeing everything: %d", occupied)
	}
	// freed blocks coalesce enough to satisfy one large request again
	p := h.malloc(48 * 1024)
	if p == nil {
		t.Fatal("coalesced space not reusable")
	}
	h.free(p)
}

func TestArenaDedicatedRegion(t *testing.T) {
	h := &heap{}
	small := h.malloc(64)
	big := h.malloc(16 * MB)
	if big == nil {
		t.Fatal("oversized request failed")
	}
	_, total := h.stats()
	if total < 16*MB {
		t.Fatal("no region large enough for the oversized request")
	}
	h.free(small)
	h.free(big)
}

func TestArenaReallocInPlace(t *testing.T) {
	h := &heap{}
	p := h.malloc(128)
	*(*uint64)(p) = 0xDEADBEEF
	// nothing allocated behind p yet, so the grow must not relocate
	np := h.realloc(p, 4096)
	if np != p {
		t.Fatal("grow into free tail relocated the block")
	}
	if *(*uint64)(np) != 0xDEADBEEF {
		t.Fatal("payload lost during in-place grow")
	}
	h.free(np)
}

func TestArenaReallocRelocates(t *testing.T) {
	h := &heap{}
	p := h.malloc(128)
	*(*uint64)(p) = 42
	barrier := h.malloc(128)
	np := h.realloc(p, 256*KB)
	if np == nil {
		t.Fatal("grow past a live neighbor failed")
	}
	if np == p {
		t.Fatal("grow past a live neighbor cannot be in place")
	}
	if *(*uint64)(np) != 42 {
		t.Fatal("payload lost during relocation")
	}
	h.free(np)
	h.free(barrier)
}

func TestBlockHeaderPacking(t *testing.T) {
	var h blockHeader
	h.setSize(123456)
	h.setFree(true)
	if h.getSize() != 123456 || !h.getFree() {
		t.Fatal("header lost size or free bit")
	}
	h.setFree(false)
	if h.getSize() != 123456 || h.getFree() {
		t.Fatal("free bit clobbered the size")
	}
}
