//go:build !nothreads

package example

import (
	"fmt"
	"sync"

	"github.com/skyefly/rtmem/guard"
	"github.com/skyefly/rtmem/list"
	"github.com/skyefly/rtmem/mem"
	"github.com/skyefly/rtmem/thread"
)

// LocalHeapUsage 在当前线程堆上分配、扩容并释放一个类型化数组
func LocalHeapUsage() {
	// 线程本地堆要求协程固定在操作系统线程上
	thread.Lock()
	defer thread.Unlock()

	heap := mem.NewLocalHeap()

	// 4个清零的uint64 扩容到8个 新增元素未初始化
	arr := mem.CreateType[uint64](heap, 4)
	arr = mem.ReallocType(heap, arr, 8)
	for i := int64(0); i < 8; i++ {
		*mem.OffsetType(arr, i) = uint64(i)
	}
	mem.FreeType(heap, arr)

	fmt.Println(mem.DumpStatsJson())
}

// SharedHeapRing 用共享堆内存在两个协程间传递记录
func SharedHeapRing() {
	const ringSize = 64 * mem.KB

	buf := mem.MallocShared(ringSize)
	ring := mem.NewRingBuffer(buf, ringSize)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		out := make([]byte, ringSize/2)
		got := 0
		for got < 100 {
			n := ring.Read(out)
			if n == 0 {
				continue
			}
			got++
		}
	}()
	for i := 0; i < 100; i++ {
		for !ring.Write([]byte(fmt.Sprintf("record-%d", i))) {
		}
	}
	wg.Wait()

	ring.Close()
	mem.FreeShared(buf)
}

// GuardedUsage 在安全边界上捕获误用
func GuardedUsage() {
	g := guard.NewHeap(mem.NewSharedHeap(), false)

	p, err := g.Alloc(128)
	if err != nil {
		panic(err)
	}
	if err := g.Free(p); err != nil {
		panic(err)
	}
	// 二次释放返回错误而不是未定义行为
	if err := g.Free(p); err == nil {
		panic("double free not detected")
	}
	if err := g.CheckLeaks(); err != nil {
		panic(err)
	}
}

// ListUsage 在堆上存储一个完整的容器
func ListUsage() {
	thread.Lock()
	defer thread.Unlock()

	l := list.NewArrayList[int64](mem.NewLocalHeap())
	for i := int64(0); i < 100; i++ {
		l.Add(i)
	}
	sum := int64(0)
	l.For(func(index int, value int64) (next bool) {
		sum += value
		return true
	})
	l.Free()
	fmt.Println(sum)
}
