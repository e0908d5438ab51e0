package mem

import (
	"unsafe"
)

// The allocation engine behind both heap families. Memory is obtained from
// the OS backend in large regions and carved into blocks with a first-fit
// free list. Each block is preceded by an inline header packing the free
// bit and the payload size into a single uint64, followed by the link to
// the next block in address order. Adjacent free blocks are merged forward
// during search, which also lets Realloc grow a block in place when the
// space behind it is free.

type blockHeader uint64

const blockSizeMask = (uint64(1) << 63) - 1

func (h *blockHeader) getFree() bool {
	return (uint64(*h) >> 63) == 1
}

func (h *blockHeader) setFree(free bool) {
	x := uint64(0)
	if free {
		x = 1 << 63
	}
	*h = blockHeader(x | (uint64(*h) & blockSizeMask))
}

func (h *blockHeader) getSize() uint64 {
	return uint64(*h) & blockSizeMask
}

func (h *blockHeader) setSize(size uint64) {
	*h = blockHeader((uint64(*h) & (1 << 63)) | (size & blockSizeMask))
}

type block struct {
	header blockHeader
	next   *block
}

var blockSize = SizeOf[block]()

const blockAlign = 8

func alignBlock(size uint64) uint64 {
	rem := size % blockAlign
	if rem != 0 {
		size += blockAlign - rem
	}
	return size
}

// region is one contiguous range handed out by the OS backend. Regions are
// never returned to the OS; freed blocks are recycled within the region.
type region struct {
	base     unsafe.Pointer
	size     uint64
	occupied uint64
	next     *region
}

func newRegion(size uint64) *region {
	base := reserveRegion(size)
	if base == nil {
		return nil
	}
	r := &region{base: base, size: size}
	b := (*block)(base)
	b.header.setSize(size - blockSize)
	b.header.setFree(true)
	b.next = nil
	return r
}

func (r *region) contains(p unsafe.Pointer) bool {
	addr := uintptr(p)
	return addr >= uintptr(r.base) && addr < uintptr(r.base)+uintptr(r.size)
}

func (r *region) firstBlock() *block {
	return (*block)(r.base)
}

func payload(b *block) unsafe.Pointer {
	return unsafe.Pointer(uintptr(unsafe.Pointer(b)) + uintptr(blockSize))
}

func blockOf(p unsafe.Pointer) *block {
	return (*block)(unsafe.Pointer(uintptr(p) - uintptr(blockSize)))
}

// mergeForward folds the free blocks following b into b, stopping once b
// can hold want bytes or a live block is reached.
func (b *block) mergeForward(want uint64) {
	for b.header.getSize() < want {
		nb := b.next
		if nb == nil || !nb.header.getFree() {
			return
		}
		b.header.setSize(b.header.getSize() + nb.header.getSize() + blockSize)
		b.next = nb.next
	}
}

// split carves the tail of b into a new free block when the leftover is
// large enough to hold a header of its own.
func (b *block) split(size uint64) {
	if b.header.getSize() > size && b.header.getSize()-size > blockSize {
		nb := (*block)(unsafe.Pointer(uintptr(unsafe.Pointer(b)) + uintptr(blockSize) + uintptr(size)))
		nb.header.setSize(b.header.getSize() - size - blockSize)
		nb.header.setFree(true)
		nb.next = b.next
		b.header.setSize(size)
		b.next = nb
	}
}

func (r *region) malloc(size uint64) unsafe.Pointer {
	size = alignBlock(size)
	for b := r.firstBlock(); b != nil; b = b.next {
		if !b.header.getFree() {
			continue
		}
		if b.header.getSize() < size {
			b.mergeForward(size)
			if b.header.getSize() < size {
				continue
			}
		}
		b.split(size)
		b.header.setFree(false)
		r.occupied += blockSize + b.header.getSize()
		return payload(b)
	}
	return nil
}

func (r *region) free(p unsafe.Pointer) bool {
	b := blockOf(p)
	if b.header.getFree() {
		return false
	}
	b.header.setFree(true)
	r.occupied -= blockSize + b.header.getSize()
	return true
}

// grow tries to extend the live block at p in place to hold size bytes.
func (r *region) grow(p unsafe.Pointer, size uint64) bool {
	size = alignBlock(size)
	b := blockOf(p)
	if b.header.getSize() >= size {
		return true
	}
	old := b.header.getSize()
	b.mergeForward(size)
	if b.header.getSize() < size {
		// merged free space stays attached to the block; account for it
		r.occupied += b.header.getSize() - old
		return false
	}
	b.split(size)
	r.occupied += b.header.getSize() - old
	return true
}

// shrink trims the live block at p down to size bytes, releasing the tail.
func (r *region) shrink(p unsafe.Pointer, size uint64) {
	size = alignBlock(size)
	b := blockOf(p)
	old := b.header.getSize()
	b.split(size)
	r.occupied -= old - b.header.getSize()
}

func (r *region) payloadSize(p unsafe.Pointer) uint64 {
	return blockOf(p).header.getSize()
}

const (
	minRegionSize = 1 * MB
	maxRegionSize = 64 * MB
)

// heap is an unsynchronized set of regions. The thread-local family keeps
// one heap per OS thread; the shared family keeps a single mutex-guarded
// instance.
type heap struct {
	regions    *region
	nextRegion uint64
}

func (h *heap) findRegion(p unsafe.Pointer) *region {
	for r := h.regions; r != nil; r = r.next {
		if r.contains(p) {
			return r
		}
	}
	return nil
}

func (h *heap) addRegion(size uint64) *region {
	want := h.nextRegion
	if want < minRegionSize {
		want = minRegionSize
	}
	need := alignBlock(size) + blockSize
	if want < need {
		want = need
	}
	r := newRegion(want)
	if r == nil {
		return nil
	}
	if want < maxRegionSize {
		h.nextRegion = want * 2
	}
	r.next = h.regions
	h.regions = r
	return r
}

func (h *heap) malloc(size uint64) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	for r := h.regions; r != nil; r = r.next {
		if p := r.malloc(size); p != nil {
			return p
		}
	}
	r := h.addRegion(size)
	if r == nil {
		return nil
	}
	return r.malloc(size)
}

func (h *heap) mallocZero(size uint64) unsafe.Pointer {
	p := h.malloc(size)
	if p != nil {
		MemZero(p, size)
	}
	return p
}

func (h *heap) free(p unsafe.Pointer) bool {
	r := h.findRegion(p)
	if r == nil {
		return false
	}
	return r.free(p)
}

func (h *heap) realloc(p unsafe.Pointer, size uint64) unsafe.Pointer {
	if p == nil {
		return h.malloc(size)
	}
	if size == 0 {
		h.free(p)
		return nil
	}
	r := h.findRegion(p)
	if r == nil {
		return nil
	}
	old := r.payloadSize(p)
	if alignBlock(size) < old {
		r.shrink(p, size)
		return p
	}
	if r.grow(p, size) {
		return p
	}
	np := h.malloc(size)
	if np == nil {
		return nil
	}
	MemCpy(np, p, old)
	r.free(p)
	return np
}

func (h *heap) stats() (occupied int64, total int64) {
	for r := h.regions; r != nil; r = r.next {
		occupied += int64(r.occupied)
		total += int64(r.size)
	}
	return occupied, total
}
