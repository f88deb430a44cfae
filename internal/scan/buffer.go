package scan

import (
	"fmt"
	"sync"
)

// bufNode is an internal linked list node for the result buffer.
type bufNode struct {
	result Result
	next   *bufNode
}

// ResultBuffer is a thread-safe buffer that accumulates scan results in
// frequency order for batched persistence. It holds up to capacity results
// and releases flushCount of the lowest frequencies when flushed, so
// database writes happen in ordered chunks instead of one row per
// frequency.
type ResultBuffer struct {
	capacity   int // Maximum number of results to store
	flushCount int // Number of results to remove when buffer reaches capacity

	mu   sync.Mutex
	head *bufNode
	size int
}

// NewResultBuffer creates a result buffer that stores up to capacity results
// and removes flushCount results per flush. Returns an error if parameters
// are invalid.
func NewResultBuffer(capacity, flushCount int) (*ResultBuffer, error) {
	if capacity <= 0 || flushCount <= 0 || flushCount > capacity {
		return nil, fmt.Errorf("invalid buffer parameters: capacity=%d, flushCount=%d", capacity, flushCount)
	}
	return &ResultBuffer{
		capacity:   capacity,
		flushCount: flushCount,
	}, nil
}

// Insert adds a result keeping the buffer ordered by frequency, ties broken
// by timestamp.
func (rb *ResultBuffer) Insert(r Result) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := &bufNode{result: r}

	if rb.head == nil || rb.before(r, rb.head.result) {
		n.next = rb.head
		rb.head = n
		rb.size++
		return
	}

	current := rb.head
	for current.next != nil && !rb.before(r, current.next.result) {
		current = current.next
	}
	n.next = current.next
	current.next = n
	rb.size++
}

// IsFull returns true if the buffer has reached its capacity.
func (rb *ResultBuffer) IsFull() bool {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size >= rb.capacity
}

// Flush removes and returns the lowest-frequency results. Returns nil if the
// buffer is empty. The number of results returned is flushCount plus any
// overflow beyond capacity.
func (rb *ResultBuffer) Flush() []Result {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.head == nil {
		return nil
	}

	count := rb.flushCount
	if rb.size > rb.capacity {
		count += rb.size - rb.capacity
	}
	count = min(count, rb.size)

	results := make([]Result, 0, count)
	current := rb.head
	for i := 0; i < count && current != nil; i++ {
		results = append(results, current.result)
		current = current.next
	}

	rb.head = current
	rb.size -= len(results)
	return results
}

// DrainAll removes and returns all buffered results in frequency order.
// Returns nil if the buffer is empty.
func (rb *ResultBuffer) DrainAll() []Result {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.head == nil {
		return nil
	}

	results := make([]Result, 0, rb.size)
	for current := rb.head; current != nil; current = current.next {
		results = append(results, current.result)
	}

	rb.head = nil
	rb.size = 0
	return results
}

// Size returns the current number of buffered results.
func (rb *ResultBuffer) Size() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size
}

// Clear removes all buffered results.
func (rb *ResultBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.head = nil
	rb.size = 0
}

func (rb *ResultBuffer) before(a, b Result) bool {
	if a.Frequency != b.Frequency {
		return a.Frequency < b.Frequency
	}
	return a.Timestamp.Before(b.Timestamp)
}
