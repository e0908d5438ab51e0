//go:build !nothreads

package mem

import (
	"fmt"
	"testing"
)

func TestRingBuffer(t *testing.T) {
	const size = 64 * KB
	buf := MallocShared(size)
	rb := NewRingBuffer(buf, size)
	if rb == nil {
		panic("???")
	}

	done := make(chan bool)
	go func() {
		out := make([]byte, size/2)
		for i := 0; i < 1000; i++ {
			var n uint32
			for n == 0 {
				n = rb.Read(out)
			}
			want := fmt.Sprintf("record-%d", i)
			if string(out[:n]) != want {
				done <- false
				return
			}
		}
		done <- true
	}()

	for i := 0; i < 1000; i++ {
		record := []byte(fmt.Sprintf("record-%d", i))
		for !rb.Write(record) {
		}
	}
	if !<-done {
		t.Fatal("record corrupted in transit")
	}

	rb.Close()
	FreeShared(buf)
}

func TestRingBufferRejectsLongRecords(t *testing.T) {
	const size = 256 * KB
	buf := MallocShared(size)
	rb := NewRingBuffer(buf, size)
	if rb == nil {
		panic("???")
	}
	// fits in half the ring but not in the 2-byte length prefix
	if rb.Write(make([]byte, 70000)) {
		t.Fatal("record longer than the length prefix accepted")
	}
	record := []byte("still-alive")
	if !rb.Write(record) {
		t.Fatal("write failed after rejected record")
	}
	out := make([]byte, size/2)
	if n := rb.Read(out); string(out[:n]) != "still-alive" {
		t.Fatal("ring desynchronized after rejected record")
	}
	rb.Close()
	FreeShared(buf)
}

func TestRingBufferRejectsBadSizes(t *testing.T) {
	buf := MallocShared(1024)
	if NewRingBuffer(nil, 1024) != nil {
		t.Fatal("nil memory accepted")
	}
	if NewRingBuffer(buf, 1000) != nil {
		t.Fatal("non power-of-two size accepted")
	}
	rb := NewRingBuffer(buf, 1024)
	if rb.Write(nil) {
		t.Fatal("empty record accepted")
	}
	if rb.Write(make([]byte, 513)) {
		t.Fatal("oversized record accepted")
	}
	rb.Close()
	FreeShared(buf)
}
