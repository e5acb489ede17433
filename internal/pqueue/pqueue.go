// internal/pqueue/pqueue.go

// Package pqueue implements a binary heap ordered by a caller supplied
// comparator. The scheduler uses it as its ready queue.
package pqueue

import (
	"errors"

	"github.com/emirpasic/gods/lists/arraylist"
)

// ErrEmpty is returned by Pop and Top on an empty queue.
var ErrEmpty = errors.New("pqueue: empty queue")

// Comparator orders two elements: negative when a must leave the queue
// before b, positive when after, zero when either order is fine.
type Comparator[T any] func(a, b T) int

// Queue is a binary min-heap over a growable array list.
// The element that compares lowest is always at the root.
// A Queue is not safe for concurrent use.
type Queue[T any] struct {
	items *arraylist.List // heap-ordered, root at index 0
	cmp   Comparator[T]
}

// New creates an empty queue ordered by cmp.
func New[T any](cmp Comparator[T]) *Queue[T] {
	return &Queue[T]{
		items: arraylist.New(),
		cmp:   cmp,
	}
}

func parent(i int) int { return (i - 1) / 2 }
func left(i int) int   { return 2*i + 1 }
func right(i int) int  { return 2*i + 2 }

func (q *Queue[T]) at(i int) T {
	v, _ := q.items.Get(i)
	return v.(T)
}

// less reports whether the element at i must leave before the one at j.
func (q *Queue[T]) less(i, j int) bool {
	return q.cmp(q.at(i), q.at(j)) < 0
}

// Push inserts v and restores heap order. O(log n).
func (q *Queue[T]) Push(v T) {
	q.items.Add(v)
	q.up(q.items.Size() - 1)
}

// Pop removes and returns the root. O(log n).
func (q *Queue[T]) Pop() (T, error) {
	var zero T
	n := q.items.Size()
	if n == 0 {
		return zero, ErrEmpty
	}

	root := q.at(0)
	if n > 1 {
		q.items.Swap(0, n-1)
	}
	q.items.Remove(n - 1)
	if n > 2 {
		q.down(0)
	}
	return root, nil
}

// Top returns the root without removing it.
func (q *Queue[T]) Top() (T, error) {
	if q.items.Empty() {
		var zero T
		return zero, ErrEmpty
	}
	return q.at(0), nil
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int { return q.items.Size() }

// Empty reports whether the queue holds no element.
func (q *Queue[T]) Empty() bool { return q.items.Empty() }

// Values returns a copy of the elements in heap (not sorted) order.
func (q *Queue[T]) Values() []T {
	out := make([]T, 0, q.items.Size())
	it := q.items.Iterator()
	for it.Next() {
		out = append(out, it.Value().(T))
	}
	return out
}

// up moves the element at i towards the root while it orders strictly
// before its parent.
func (q *Queue[T]) up(i int) {
	for i > 0 {
		p := parent(i)
		if !q.less(i, p) {
			return
		}
		q.items.Swap(i, p)
		i = p
	}
}

// down moves the element at i towards the leaves. At each level the child
// that orders first is picked, so when both children exist the right one is
// measured against the left one and not only against the parent.
func (q *Queue[T]) down(i int) {
	n := q.items.Size()
	for {
		best := i
		if l := left(i); l < n && q.less(l, best) {
			best = l
		}
		if r := right(i); r < n && q.less(r, best) {
			best = r
		}
		if best == i {
			return
		}
		q.items.Swap(i, best)
		i = best
	}
}
