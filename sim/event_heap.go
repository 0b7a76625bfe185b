package sim

import "container/heap"

// queuedEvent pairs an event with its insertion sequence number, the
// deterministic tie-break among equal timestamps.
type queuedEvent struct {
	ev  Event
	seq uint64
}

// EventHeap implements a priority queue with deterministic ordering.
// Ordering: timestamp → insertion sequence. Equal-time events dispatch
// strictly in scheduling order (FIFO), never by kind, so identical
// inputs replay to identical logs.
type EventHeap struct {
	items []queuedEvent
	seq   uint64
}

// NewEventHeap creates an empty event heap. The sequence counter is per
// heap, so independent runs stay isolated.
func NewEventHeap() *EventHeap {
	h := &EventHeap{}
	heap.Init(h)
	return h
}

// Len implements heap.Interface
func (h *EventHeap) Len() int { return len(h.items) }

// Less implements heap.Interface with deterministic ordering
func (h *EventHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.ev.Time != b.ev.Time {
		return a.ev.Time < b.ev.Time
	}
	return a.seq < b.seq
}

// Swap implements heap.Interface
func (h *EventHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

// Push implements heap.Interface
func (h *EventHeap) Push(x any) {
	h.items = append(h.items, x.(queuedEvent))
}

// Pop implements heap.Interface
func (h *EventHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// Schedule adds an event to the heap, assigning its insertion sequence.
func (h *EventHeap) Schedule(e Event) {
	h.seq++
	heap.Push(h, queuedEvent{ev: e, seq: h.seq})
}

// PopNext removes and returns the next event in dispatch order.
func (h *EventHeap) PopNext() (Event, bool) {
	if h.Len() == 0 {
		return Event{}, false
	}
	return heap.Pop(h).(queuedEvent).ev, true
}

// Peek returns the next event without removing it.
func (h *EventHeap) Peek() (Event, bool) {
	if h.Len() == 0 {
		return Event{}, false
	}
	return h.items[0].ev, true
}
