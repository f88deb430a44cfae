package dsp

import "container/heap"

// Queue is a priority queue ordering items by descending numeric priority.
// Items with equal priority are dequeued in submission order, so a stream of
// same-priority work behaves as FIFO. Queue is not safe for concurrent use;
// callers must provide their own locking.
type Queue[T any] struct {
	h   pqHeap[T]
	seq uint64
}

type pqItem[T any] struct {
	value    T
	priority int
	seq      uint64
}

type pqHeap[T any] []pqItem[T]

func (h pqHeap[T]) Len() int { return len(h) }

func (h pqHeap[T]) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h pqHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pqHeap[T]) Push(x any) { *h = append(*h, x.(pqItem[T])) }

func (h *pqHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = pqItem[T]{} // release the value for GC
	*h = old[:n-1]
	return x
}

// NewQueue creates an empty priority queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push inserts a value with the given priority.
func (q *Queue[T]) Push(v T, priority int) {
	heap.Push(&q.h, pqItem[T]{value: v, priority: priority, seq: q.seq})
	q.seq++
}

// Pop removes and returns the highest-priority value. The second return
// value is false if the queue is empty.
func (q *Queue[T]) Pop() (T, bool) {
	if len(q.h) == 0 {
		var zero T
		return zero, false
	}
	return heap.Pop(&q.h).(pqItem[T]).value, true
}

// Peek returns the highest-priority value without removing it. The second
// return value is false if the queue is empty.
func (q *Queue[T]) Peek() (T, bool) {
	if len(q.h) == 0 {
		var zero T
		return zero, false
	}
	return q.h[0].value, true
}

// Len returns the number of queued values.
func (q *Queue[T]) Len() int { return len(q.h) }

// IsEmpty returns true if the queue holds no values.
func (q *Queue[T]) IsEmpty() bool { return len(q.h) == 0 }

// Clear removes all queued values.
func (q *Queue[T]) Clear() {
	q.h = nil
	q.seq = 0
}
