package runtime

import "sync/atomic"

// Backing buffers are accounted zmalloc-style: one process-wide counter,
// updated when a table is allocated and when it is released after a grow.
// The counter is purely statistical, nothing enforces a limit.

var usedMemory int64

// UsedMemory returns the number of bytes currently held by live TupleSet
// backing buffers.
func UsedMemory() int64 {
	return atomic.LoadInt64(&usedMemory)
}

func increaseUsedMemory(n int64) {
	atomic.AddInt64(&usedMemory, n)
}

func decreaseUsedMemory(n int64) {
	atomic.AddInt64(&usedMemory, -n)
}
