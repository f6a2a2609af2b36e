// pkg/queue/queue.go

package queue

import "sync"

// Queue is a bounded FIFO shared by any number of producers and consumers.
// Enqueue blocks while the queue is full, Dequeue blocks while it is empty.
// Complete marks the queue as finished: producers are rejected from then on
// and consumers drain what is left before they are told to stop.
type Queue[T any] struct {
	mu        sync.Mutex
	notEmpty  *sync.Cond
	notFull   *sync.Cond
	items     []T
	head      int
	size      int
	completed bool
}

// New creates a queue holding at most capacity items.
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	q := &Queue[T]{items: make([]T, capacity)}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends item, waiting for free space if needed.
// It returns false without touching the queue once Complete was called.
func (q *Queue[T]) Enqueue(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.size == len(q.items) && !q.completed {
		q.notFull.Wait()
	}
	if q.completed {
		return false
	}
	q.items[(q.head+q.size)%len(q.items)] = item
	q.size++
	q.notEmpty.Signal()
	return true
}

// Dequeue removes the oldest item, waiting until one is available.
// It returns false when the queue is completed and drained.
func (q *Queue[T]) Dequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.size == 0 && !q.completed {
		q.notEmpty.Wait()
	}
	var zero T
	if q.size == 0 {
		return zero, false
	}
	item := q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.size--
	q.notFull.Signal()
	return item, true
}

// Complete wakes every blocked caller. Calling it again is a no-op.
func (q *Queue[T]) Complete() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.completed {
		return
	}
	q.completed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

func (q *Queue[T]) Completed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.completed
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *Queue[T]) Cap() int {
	return len(q.items)
}
