//go:build darwin && cgo

package thread

/*
#include <pthread.h>

static unsigned long long thread_id() {
	unsigned long long tid;
	pthread_threadid_np(NULL, &tid);
	return tid;
}
*/
import "C"

// ID returns the OS id of the calling thread.
func ID() uint64 {
	return uint64(C.thread_id())
}
