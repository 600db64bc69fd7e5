package system

import (
	"errors"
)

// OpQueue represents a simple FIFO queue of recent operation descriptions,
// bounded so the status display never grows past its window.
type OpQueue struct {
	items   []string
	size    int // Current number of elements in the queue
	maxSize int
}

// NewOpQueue creates a new empty queue.
func NewOpQueue(maxSize int) *OpQueue {
	q := &OpQueue{}
	q.maxSize = maxSize
	return q
}

// Enqueue adds an item to the rear of the queue, dropping the oldest one
// when the queue is full.
func (q *OpQueue) Enqueue(item string) {
	if q.size == q.maxSize {
		q.Dequeue()
	}

	q.items = append(q.items, item)
	q.size++
}

// Dequeue removes and returns the item from the front of the queue.
func (q *OpQueue) Dequeue() (string, error) {
	if q.size == 0 {
		return "", errors.New("queue is empty")
	}
	frontItem := q.items[0]
	q.items = q.items[1:]
	q.size--
	return frontItem, nil
}

// IsEmpty checks if the queue is empty.
func (q *OpQueue) IsEmpty() bool {
	return q.size == 0
}

// Items returns the queued items, oldest first.
func (q *OpQueue) Items() []string {
	return q.items
}
