package mem

import (
	"sync/atomic"
	"unsafe"
)

// RingBuffer is a single-producer single-consumer record queue over a raw
// memory range, typically one obtained from the shared heap so that the
// producer and consumer may live on different threads. Records are length
// prefixed and padded to 4 bytes. The buffer never owns its memory; the
// creator frees it through the heap family it came from after Close.
type RingBuffer struct {
	head   uint64
	_      [56]byte
	tail   uint64
	size   uint32
	mask   uint32
	buffer unsafe.Pointer
	_      [40]byte
}

const (
	recordHeaderSize = 2
	// maxRecordLength is the largest record the 2-byte length prefix can
	// represent; longer records would truncate modulo 64 KiB and
	// desynchronize the reader.
	maxRecordLength = 1<<16 - 1
)

// NewRingBuffer wraps size bytes at buffer. size must be a power of two.
func NewRingBuffer(buffer unsafe.Pointer, size uint32) *RingBuffer {
	if buffer == nil {
		return nil
	}
	if (size & (size - 1)) != 0 {
		return nil
	}
	rb := new(RingBuffer)
	rb.size = size
	rb.mask = size - 1
	rb.buffer = buffer
	return rb
}

// Close detaches the ring from its memory. The memory itself stays alive
// until the creator frees it.
func (rb *RingBuffer) Close() {
	rb.head = 0
	rb.tail = 0
	rb.size = 0
	rb.mask = 0
	rb.buffer = nil
}

func (rb *RingBuffer) freeSpace() uint32 {
	head := atomic.LoadUint64(&rb.head)
	tail := atomic.LoadUint64(&rb.tail)
	return rb.size - uint32(head-tail)
}

func (rb *RingBuffer) usedSpace() uint32 {
	head := atomic.LoadUint64(&rb.head)
	tail := atomic.LoadUint64(&rb.tail)
	return uint32(head - tail)
}

// Write enqueues one record. It returns false when the record is empty,
// larger than half the ring or 64 KiB-1, or the ring is full.
func (rb *RingBuffer) Write(record []byte) bool {
	length := uint32(len(record))
	if length == 0 || length > rb.size/2 || length > maxRecordLength {
		return false
	}

	totalSize := recordHeaderSize + length
	totalSize = (totalSize + 3) & ^uint32(3)

	if rb.freeSpace() < totalSize {
		return false
	}

	head := atomic.LoadUint64(&rb.head)
	pos := uint32(head & uint64(rb.mask))

	*(*uint16)(Offset(rb.buffer, int64(pos))) = uint16(length)

	dataPos := (pos + recordHeaderSize) & rb.mask
	spaceAfter := rb.size - dataPos

	if spaceAfter >= length {
		MemCpy(Offset(rb.buffer, int64(dataPos)), unsafe.Pointer(&record[0]), uint64(length))
	} else {
		MemCpy(Offset(rb.buffer, int64(dataPos)), unsafe.Pointer(&record[0]), uint64(spaceAfter))
		MemCpy(rb.buffer, Offset(unsafe.Pointer(&record[0]), int64(spaceAfter)), uint64(length-spaceAfter))
	}

	atomic.StoreUint64(&rb.head, head+uint64(totalSize))

	return true
}

// Read dequeues one record into buf and returns its length, or 0 when the
// ring is empty. buf must be at least half the ring size.
func (rb *RingBuffer) Read(buf []byte) uint32 {
	if rb.usedSpace() < recordHeaderSize {
		return 0
	}

	tail := atomic.LoadUint64(&rb.tail)
	pos := uint32(tail & uint64(rb.mask))

	length := uint32(*(*uint16)(Offset(rb.buffer, int64(pos))))

	if length == 0 || length > rb.size/2 {
		return 0
	}

	totalSize := recordHeaderSize + length
	totalSize = (totalSize + 3) & ^uint32(3)

	if rb.usedSpace() < totalSize {
		return 0
	}

	dataPos := (pos + recordHeaderSize) & rb.mask
	spaceAfter := rb.size - dataPos

	if spaceAfter >= length {
		MemCpy(unsafe.Pointer(&buf[0]), Offset(rb.buffer, int64(dataPos)), uint64(length))
	} else {
		MemCpy(unsafe.Pointer(&buf[0]), Offset(rb.buffer, int64(dataPos)), uint64(spaceAfter))
		MemCpy(Offset(unsafe.Pointer(&buf[0]), int64(spaceAfter)), rb.buffer, uint64(length-spaceAfter))
	}

	atomic.StoreUint64(&rb.tail, tail+uint64(totalSize))

	return length
}
