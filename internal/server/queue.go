package server

import (
	"errors"
	"sync"

	"github.com/roach88/bandwire/internal/transport"
)

var (
	errQueueFull   = errors.New("queue full")
	errQueueClosed = errors.New("queue closed")
)

// datagramQueue is a thread-safe bounded FIFO of received datagrams.
//
// The reader goroutine enqueues while the dispatch loop dequeues. A buffered
// signal channel of size 1 lets the loop wait in a select alongside ctx.Done,
// so shutdown never hangs on an empty queue. Once capacity is reached new
// datagrams are refused, as a full socket buffer would drop them.
type datagramQueue struct {
	mu       sync.Mutex
	items    []transport.Datagram
	capacity int
	closed   bool
	signal   chan struct{}
}

func newDatagramQueue(capacity int) *datagramQueue {
	if capacity < 1 {
		capacity = DefaultQueueSize
	}
	return &datagramQueue{
		items:    make([]transport.Datagram, 0, min(capacity, 64)),
		capacity: capacity,
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue adds a datagram. It fails with errQueueFull at capacity and
// errQueueClosed once the queue is closed.
func (q *datagramQueue) Enqueue(d transport.Datagram) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return errQueueClosed
	}
	if len(q.items) >= q.capacity {
		return errQueueFull
	}
	q.items = append(q.items, d)

	// Non-blocking: the buffer of 1 coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return nil
}

// TryDequeue removes the front datagram without blocking.
func (q *datagramQueue) TryDequeue() (transport.Datagram, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return transport.Datagram{}, false
	}
	d := q.items[0]
	// Release the payload for GC.
	q.items[0] = transport.Datagram{}
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return d, true
}

// Wait returns a channel signalled when datagrams may be available.
func (q *datagramQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued datagrams.
func (q *datagramQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close rejects further enqueues and wakes waiters.
func (q *datagramQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
