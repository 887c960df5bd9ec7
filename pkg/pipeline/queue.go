package pipeline

import "sync"

// Queue is a FIFO queue shared between a known number of producers and any number of
// consumers. Once every producer has called StopProducer, consumers drain the remaining
// items and are then told that no more items will arrive. Channels cannot express this
// without an additional coordinator closing them, hence the explicit condition variable
type Queue[T any] struct {
	mu   sync.Mutex
	cond *sync.Cond

	items []T

	producers int
	stopped   bool
}

// NewQueue creates a new queue with the given number of live producers. A queue with
// zero producers is stopped right away
func NewQueue[T any](producers int) *Queue[T] {
	q := &Queue[T]{
		producers: producers,
		stopped:   producers <= 0,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends an item to the queue. It returns false (discarding the item) if the
// queue has already been stopped
func (q *Queue[T]) Enqueue(item T) bool {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	q.cond.Signal()
	return true
}

// Dequeue removes the oldest item from the queue, blocking while the queue is empty and
// producers are still live. It returns false once the queue is empty and stopped
func (q *Queue[T]) Dequeue() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.stopped {
			return item, false
		}
		q.cond.Wait()
	}

	item = q.items[0]

	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = q.items[:0:0]
	}

	return item, true
}

// StopProducer signals that one producer has finished. When the last producer stops, all
// waiting consumers are woken up
func (q *Queue[T]) StopProducer() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	q.producers--
	if q.producers <= 0 {
		q.stopped = true
		q.cond.Broadcast()
	}
}

// release appends an item even if the queue has been stopped, waking up one consumer.
// It is used to hand back items owned by the queue, which must never get lost
func (q *Queue[T]) release(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	q.cond.Signal()
}

// Close stops the queue regardless of the number of live producers. Buffered items can
// still be dequeued
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	q.cond.Broadcast()
}

// Len returns the number of currently buffered items
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
