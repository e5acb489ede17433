package pqueue

import (
	"cmp"
	"math/rand"
	"testing"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intQueue() *Queue[int] { return New[int](cmp.Compare[int]) }

// checkHeap asserts every parent orders before or equal to its children.
func checkHeap(t *testing.T, q *Queue[int]) {
	t.Helper()
	vals := q.Values()
	for i := 1; i < len(vals); i++ {
		require.LessOrEqualf(t, vals[parent(i)], vals[i], "heap order broken at %d: %v", i, vals)
	}
}

func TestQueueEmpty(t *testing.T) {
	q := intQueue()
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Len())

	_, err := q.Pop()
	require.ErrorIs(t, err, ErrEmpty)
	_, err = q.Top()
	require.ErrorIs(t, err, ErrEmpty)

	q.Push(7)
	v, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	// popping again is reported, not fatal
	_, err = q.Pop()
	require.ErrorIs(t, err, ErrEmpty)
}

func TestQueueSorted(t *testing.T) {
	q := intQueue()
	for _, v := range []int{5, 3, 8, 1, 9, 2, 7, 4, 6, 0} {
		q.Push(v)
		checkHeap(t, q)
	}
	top, err := q.Top()
	require.NoError(t, err)
	assert.Equal(t, 0, top)

	var got []int
	for !q.Empty() {
		v, err := q.Pop()
		require.NoError(t, err)
		checkHeap(t, q)
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

// The replacement root has a left child smaller than itself and a right
// child smaller than both; the right child must be promoted.
func TestQueueSiftDownPicksSmallerChild(t *testing.T) {
	q := intQueue()
	for _, v := range []int{0, 5, 3, 9} {
		q.Push(v)
	}
	require.Equal(t, []int{0, 5, 3, 9}, q.Values())

	v, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, 0, v)
	assert.Equal(t, []int{3, 5, 9}, q.Values())

	top, err := q.Top()
	require.NoError(t, err)
	assert.Equal(t, 3, top)
}

func TestQueueMatchesReferenceHeap(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	q := intQueue()
	ref := binaryheap.NewWithIntComparator()

	for i := 0; i < 2000; i++ {
		if rng.Intn(3) == 0 {
			want, ok := ref.Pop()
			got, err := q.Pop()
			if !ok {
				require.ErrorIs(t, err, ErrEmpty)
				continue
			}
			require.NoError(t, err)
			require.Equal(t, want, got)
		} else {
			v := rng.Intn(100)
			q.Push(v)
			ref.Push(v)
		}
		require.Equal(t, ref.Size(), q.Len())
		checkHeap(t, q)
	}
}

type entry struct {
	prio  int
	stamp uint64
}

// Ordering used by the scheduler: higher priority first, then older stamp.
func TestQueueCompositeOrder(t *testing.T) {
	q := New[entry](func(a, b entry) int {
		if a.prio != b.prio {
			return cmp.Compare(b.prio, a.prio)
		}
		return cmp.Compare(a.stamp, b.stamp)
	})
	q.Push(entry{1, 1})
	q.Push(entry{3, 4})
	q.Push(entry{3, 2})
	q.Push(entry{5, 9})
	q.Push(entry{1, 0})

	var got []entry
	for !q.Empty() {
		e, err := q.Pop()
		require.NoError(t, err)
		got = append(got, e)
	}
	assert.Equal(t, []entry{{5, 9}, {3, 2}, {3, 4}, {1, 0}, {1, 1}}, got)
}
