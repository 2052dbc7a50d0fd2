package playlist

import (
	"errors"
	"sync"
)

// Queue is a fixed, ordered playback queue whose cursor wraps around at the
// end. It is safe for concurrent use.
type Queue[T any] struct {
	items []T
	index int
	mu    sync.RWMutex
}

// NewQueue creates a queue holding a copy of items with the cursor at 0
func NewQueue[T any](items []T) *Queue[T] {
	q := &Queue[T]{}
	q.Set(items)
	return q
}

// Set replaces the entire queue and rewinds the cursor
func (q *Queue[T]) Set(items []T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = make([]T, len(items))
	copy(q.items, items)
	q.index = 0
}

// Current returns the item under the cursor
func (q *Queue[T]) Current() (T, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[q.index], true
}

// Next advances the cursor, wrapping to 0 after the last item, and returns
// the new current item
func (q *Queue[T]) Next() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	q.index = (q.index + 1) % len(q.items)
	return q.items[q.index], true
}

// Peek returns the item Next would move to without moving the cursor
func (q *Queue[T]) Peek() (T, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[(q.index+1)%len(q.items)], true
}

// JumpTo jumps to a specific index
func (q *Queue[T]) JumpTo(index int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 || index >= len(q.items) {
		return errors.New("index out of bounds")
	}

	q.index = index
	return nil
}

// GetAll returns a copy of all items in the queue
func (q *Queue[T]) GetAll() []T {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]T, len(q.items))
	copy(result, q.items)
	return result
}

// Len returns the number of items in the queue
func (q *Queue[T]) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

// Index returns the current index
func (q *Queue[T]) Index() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.index
}
