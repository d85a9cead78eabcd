package event

import (
	"context"
	"sync/atomic"
)

// DefaultQueueSize is used when a non-positive size is requested
const DefaultQueueSize = 256

// Queue is a lock-free MPSC ring buffer of events
// Thread-Safety:
//   - Push: Lock-free CAS, multiple producers OK
//   - Consume: Single consumer (dispatcher goroutine)
//   - Published flags prevent reading partial writes
//
// Overflow: Push rejects the newest event, PushWait blocks until Consume frees a slot;
// pending events are never overwritten or reordered
type Queue struct {
	events    []Event
	published []atomic.Bool // True = slot fully written
	mask      uint64
	head      atomic.Uint64 // Read index
	tail      atomic.Uint64 // Write index
	dropped   atomic.Uint64

	ready chan struct{} // Wakes the consumer, capacity 1
	space chan struct{} // Wakes blocked producers after Consume, capacity 1
}

// NewQueue creates a queue rounded up to a power of two
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	n := 1
	for n < size {
		n <<= 1
	}
	return &Queue{
		events:    make([]Event, n),
		published: make([]atomic.Bool, n),
		mask:      uint64(n - 1),
		ready:     make(chan struct{}, 1),
		space:     make(chan struct{}, 1),
	}
}

// Cap returns the slot count
func (q *Queue) Cap() int { return len(q.events) }

// Push appends event, returns false when the queue is full
// Safe for concurrent producers. O(1) amortized
func (q *Queue) Push(ev Event) bool {
	if !q.tryPush(ev) {
		q.dropped.Add(1)
		return false
	}
	return true
}

// PushWait appends event, waiting for the consumer to free a slot while the queue is full
// Returns ctx.Err() if ctx ends first; the event is then not queued
func (q *Queue) PushWait(ctx context.Context, ev Event) error {
	waited := false
	for {
		if q.tryPush(ev) {
			if waited {
				// Pass the wakeup on to the next blocked producer
				q.signalSpace()
			}
			return nil
		}
		select {
		case <-q.space:
			waited = true
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *Queue) signalSpace() {
	select {
	case q.space <- struct{}{}:
	default:
	}
}

func (q *Queue) tryPush(ev Event) bool {
	size := uint64(len(q.events))
	for {
		currentTail := q.tail.Load()
		if currentTail-q.head.Load() >= size {
			return false
		}

		if q.tail.CompareAndSwap(currentTail, currentTail+1) {
			idx := currentTail & q.mask

			q.events[idx] = ev
			q.published[idx].Store(true) // MUST be after write

			select {
			case q.ready <- struct{}{}:
			default:
			}
			return true
		}
	}
}

// Consume returns all fully published events in FIFO order and advances head
// Stops at the first slot whose writer has not finished; the rest is picked up next call
func (q *Queue) Consume() []Event {
	currentHead := q.head.Load()
	currentTail := q.tail.Load()
	if currentTail == currentHead {
		return nil
	}

	available := currentTail - currentHead
	result := make([]Event, 0, available)
	for i := uint64(0); i < available; i++ {
		idx := (currentHead + i) & q.mask

		if !q.published[idx].Load() {
			break // Writer incomplete
		}

		result = append(result, q.events[idx])
		q.events[idx] = Event{}
		q.published[idx].Store(false)
	}

	// The unfinished writer signals Ready itself once its slot is published
	q.head.Store(currentHead + uint64(len(result)))
	if len(result) == 0 {
		return nil
	}
	q.signalSpace()
	return result
}

// Ready fires after at least one Push since the last receive
func (q *Queue) Ready() <-chan struct{} { return q.ready }

// Len returns approximate pending event count
func (q *Queue) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	if tail <= head {
		return 0
	}
	return int(tail - head)
}

// Dropped returns how many pushes were rejected for lack of space
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }
