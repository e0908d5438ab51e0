// Package guard is the boundary where raw heap handles meet safe code. The
// mem facade itself is unchecked: misuse there is undefined behavior by
// design. A guard.Heap wraps either heap family and converts the
// precondition violations it can observe (foreign pointers, double frees,
// cross-thread use of thread-local handles, size overflow) into reported
// errors instead.
package guard

import (
	"math/bits"
	"sync"
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"

	"github.com/skyefly/rtmem/mem"
	"github.com/skyefly/rtmem/thread"
)

var (
	// ErrForeignPointer is returned when a handle was not produced by this guard.
	ErrForeignPointer = cerrors.New("pointer does not belong to this heap")
	// ErrDoubleFree is returned when a handle is released twice.
	ErrDoubleFree = cerrors.New("pointer already freed")
	// ErrWrongThread is returned when a thread-local handle is used off its owner thread.
	ErrWrongThread = cerrors.New("handle used from a thread other than its owner")
	// ErrSizeOverflow is returned when an element count times element size overflows.
	ErrSizeOverflow = cerrors.New("allocation byte size overflows")
	// ErrExhausted is returned when the underlying heap hands back no memory.
	ErrExhausted = cerrors.New("heap returned no memory")
	// ErrLeaks is returned by CheckLeaks when handles are still live.
	ErrLeaks = cerrors.New("live allocations remain")
)

type allocation struct {
	size  uint64
	owner uint64
}

// Heap validates handle provenance before forwarding to an underlying
// mem.Heap. All methods are safe for concurrent use; for thread-local heaps
// the per-handle owner check still applies.
type Heap struct {
	mu    sync.Mutex
	heap  mem.Heap
	local bool
	live  map[uintptr]allocation
	bytes int64
	log   *slog.Logger
}

// NewHeap wraps heap. local marks thread-local affinity: handles are then
// bound to the OS thread that allocated them.
func NewHeap(heap mem.Heap, local bool) *Heap {
	return &Heap{
		heap:  heap,
		local: local,
		live:  map[uintptr]allocation{},
		log:   slog.Default(),
	}
}

// Alloc returns at least size uninitialized bytes.
func (g *Heap) Alloc(size uint64) (unsafe.Pointer, error) {
	return g.alloc(size, false)
}

// AllocZero returns at least size zeroed bytes.
func (g *Heap) AllocZero(size uint64) (unsafe.Pointer, error) {
	return g.alloc(size, true)
}

// AllocArray returns count*elemSize bytes, rejecting multiplications that
// overflow instead of silently wrapping.
func (g *Heap) AllocArray(elemSize uint64, count uint64, zero bool) (unsafe.Pointer, error) {
	hi, size := bits.Mul64(elemSize, count)
	if hi != 0 || size > 1<<62 {
		return nil, cerrors.Wrapf(ErrSizeOverflow, "%d elements of %d bytes", count, elemSize)
	}
	return g.alloc(size, zero)
}

func (g *Heap) alloc(size uint64, zero bool) (unsafe.Pointer, error) {
	var p unsafe.Pointer
	if zero {
		p = g.heap.MallocZero(size)
	} else {
		p = g.heap.Malloc(size)
	}
	if p == nil && size != 0 {
		return nil, cerrors.Wrapf(ErrExhausted, "alloc of %d bytes", size)
	}
	if p != nil {
		g.mu.Lock()
		g.live[uintptr(p)] = allocation{size: size, owner: thread.ID()}
		g.bytes += int64(size)
		g.mu.Unlock()
	}
	return p, nil
}

// Realloc resizes a handle previously produced by this guard. A nil handle
// allocates; size zero frees and returns nil.
func (g *Heap) Realloc(p unsafe.Pointer, size uint64) (unsafe.Pointer, error) {
	if p == nil {
		return g.alloc(size, false)
	}
	if size == 0 {
		return nil, g.Free(p)
	}
	a, err := g.release(p, "realloc")
	if err != nil {
		return nil, err
	}
	np := g.heap.Realloc(p, size)
	if np == nil {
		// the old block survives a failed realloc; keep tracking it
		g.mu.Lock()
		g.live[uintptr(p)] = a
		g.bytes += int64(a.size)
		g.mu.Unlock()
		return nil, cerrors.Wrapf(ErrExhausted, "realloc to %d bytes", size)
	}
	g.mu.Lock()
	g.live[uintptr(np)] = allocation{size: size, owner: thread.ID()}
	g.bytes += int64(size)
	g.mu.Unlock()
	return np, nil
}

// Free releases a handle previously produced by this guard.
func (g *Heap) Free(p unsafe.Pointer) error {
	if _, err := g.release(p, "free"); err != nil {
		return err
	}
	if !g.heap.Free(p) {
		return cerrors.Wrapf(ErrDoubleFree, "ptr %p rejected by heap", p)
	}
	return nil
}

// release validates provenance and ownership and drops p from the live set.
func (g *Heap) release(p unsafe.Pointer, op string) (allocation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.live[uintptr(p)]
	if !ok {
		err := cerrors.Wrapf(ErrForeignPointer, "%s of ptr %p", op, p)
		g.log.Warn("precondition violation", "op", op, "err", err)
		return allocation{}, err
	}
	if g.local && a.owner != thread.ID() {
		err := cerrors.Wrapf(ErrWrongThread, "%s of ptr %p owned by thread %d", op, p, a.owner)
		g.log.Warn("precondition violation", "op", op, "err", err)
		return allocation{}, err
	}
	delete(g.live, uintptr(p))
	g.bytes -= int64(a.size)
	return a, nil
}

// LiveBytes reports the bytes currently held through this guard.
func (g *Heap) LiveBytes() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bytes
}

// LiveCount reports the number of handles currently held through this guard.
func (g *Heap) LiveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.live)
}

// CheckLeaks returns ErrLeaks when handles allocated through this guard
// were never freed, logging each leaked handle.
func (g *Heap) CheckLeaks() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.live) == 0 {
		return nil
	}
	for ptr, a := range g.live {
		g.log.Warn("leaked allocation", "ptr", ptr, "size", a.size, "owner", a.owner)
	}
	return cerrors.Wrapf(ErrLeaks, "%d handles, %d bytes", len(g.live), g.bytes)
}
