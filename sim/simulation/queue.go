package simulation

import "container/heap"

// eventQueue stores pending handles in (time, id) order.
type eventQueue interface {
	Len() int
	insert(h *EventHandle)
	peek() *EventHandle
	pop() *EventHandle
	remove(h *EventHandle)
}

// before is the total order on pending events.
func before(a, b *EventHandle) bool {
	if a.t != b.t {
		return a.t < b.t
	}
	return a.id < b.id
}

// listQueue is an ordered slice. Insertion scans from the head and places
// the new handle before the first strictly later one, so equal times keep
// scheduling order.
type listQueue struct {
	events []*EventHandle
}

func (q *listQueue) Len() int { return len(q.events) }

func (q *listQueue) insert(h *EventHandle) {
	i := len(q.events)
	for j, e := range q.events {
		if e.t > h.t {
			i = j
			break
		}
	}
	q.events = append(q.events, nil)
	copy(q.events[i+1:], q.events[i:])
	q.events[i] = h
}

func (q *listQueue) peek() *EventHandle {
	if len(q.events) == 0 {
		return nil
	}
	return q.events[0]
}

func (q *listQueue) pop() *EventHandle {
	if len(q.events) == 0 {
		return nil
	}
	h := q.events[0]
	q.events[0] = nil
	q.events = q.events[1:]
	return h
}

func (q *listQueue) remove(h *EventHandle) {
	for i, e := range q.events {
		if e == h {
			copy(q.events[i:], q.events[i+1:])
			q.events[len(q.events)-1] = nil
			q.events = q.events[:len(q.events)-1]
			return
		}
	}
}

// heapQueue is a binary heap ordered by before.
type heapQueue struct {
	events []*EventHandle
}

func newHeapQueue() *heapQueue {
	q := &heapQueue{events: make([]*EventHandle, 0)}
	heap.Init(q)
	return q
}

// Len implements heap.Interface
func (q *heapQueue) Len() int { return len(q.events) }

// Less implements heap.Interface
func (q *heapQueue) Less(i, j int) bool { return before(q.events[i], q.events[j]) }

// Swap implements heap.Interface
func (q *heapQueue) Swap(i, j int) {
	q.events[i], q.events[j] = q.events[j], q.events[i]
	q.events[i].index = i
	q.events[j].index = j
}

// Push implements heap.Interface
func (q *heapQueue) Push(x any) {
	h := x.(*EventHandle)
	h.index = len(q.events)
	q.events = append(q.events, h)
}

// Pop implements heap.Interface
func (q *heapQueue) Pop() any {
	old := q.events
	n := len(old)
	h := old[n-1]
	old[n-1] = nil
	q.events = old[:n-1]
	return h
}

func (q *heapQueue) insert(h *EventHandle) { heap.Push(q, h) }

func (q *heapQueue) peek() *EventHandle {
	if len(q.events) == 0 {
		return nil
	}
	return q.events[0]
}

func (q *heapQueue) pop() *EventHandle {
	if len(q.events) == 0 {
		return nil
	}
	return heap.Pop(q).(*EventHandle)
}

func (q *heapQueue) remove(h *EventHandle) { heap.Remove(q, h.index) }
