package syncer

import (
	"container/heap"
	"errors"
	"sync"

	"github.com/marcosrachid/go-neo-fullnode/common/types"
)

// ErrQueueFull is returned when enqueueing past the queue's maximum length.
// It signals backpressure: the caller defers the work, it does not drop it.
var ErrQueueFull = errors.New("syncer: queue is full")

// errAlreadyTracked is returned when the height is already queued or being
// processed, enforcing at most one in-flight item per height.
var errAlreadyTracked = errors.New("syncer: height already tracked")

type itemKind uint8

const (
	storeBlockItem itemKind = iota
	pruneBlockItem
)

func (k itemKind) String() string {
	switch k {
	case storeBlockItem:
		return "store"
	case pruneBlockItem:
		return "prune"
	default:
		return "unknown"
	}
}

// item is one unit of pending work. Lower priority values are more urgent.
type item struct {
	kind     itemKind
	height   types.Height
	priority int
	attempts int
	seq      uint64
	index    int
}

// queue is a bounded priority queue with stable FIFO ordering inside one
// priority. A height stays tracked from enqueue until done is called, so the
// tracked set covers both queued and in-flight work.
type queue struct {
	mu      sync.Mutex
	items   itemHeap
	tracked map[types.Height]struct{}
	max     int // 0 means unbounded
	seq     uint64

	// wake is signaled on every push so idle workers re-poll.
	wake chan struct{}
}

func newQueue(max int) *queue {
	return &queue{
		tracked: make(map[types.Height]struct{}),
		max:     max,
		wake:    make(chan struct{}, 1),
	}
}

// enqueue adds fresh work for a height. It fails with errAlreadyTracked for
// heights already queued or in flight, and with ErrQueueFull at capacity.
func (q *queue) enqueue(kind itemKind, height types.Height, priority int) error {
	q.mu.Lock()
	if _, dup := q.tracked[height]; dup {
		q.mu.Unlock()
		return errAlreadyTracked
	}
	if q.max > 0 && len(q.items) >= q.max {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.seq++
	heap.Push(&q.items, &item{kind: kind, height: height, priority: priority, seq: q.seq})
	q.tracked[height] = struct{}{}
	q.mu.Unlock()
	q.signal()
	return nil
}

// requeue puts a previously popped item back, keeping its height tracked.
// Used for retries and deferrals; it bypasses the duplicate check but still
// respects capacity.
func (q *queue) requeue(it *item) error {
	q.mu.Lock()
	if q.max > 0 && len(q.items) >= q.max {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.seq++
	it.seq = q.seq
	heap.Push(&q.items, it)
	q.tracked[it.height] = struct{}{}
	q.mu.Unlock()
	q.signal()
	return nil
}

// pop removes the most urgent item. The height remains tracked until done.
func (q *queue) pop() (*item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	return heap.Pop(&q.items).(*item), true
}

// done releases the height after its work completed, allowing re-enqueues.
func (q *queue) done(height types.Height) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.tracked, height)
}

func (q *queue) contains(height types.Height) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, tracked := q.tracked[height]
	return tracked
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

type itemHeap []*item

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *itemHeap) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}
