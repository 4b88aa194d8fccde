package simulation

import "container/heap"

// eventQueue is a min-heap over (Time, Kind, seq). seq is assigned on push so
// equal keys pop in insertion order.
type eventQueue struct {
	items []Event
	seq   uint64
}

// newEventQueue builds a queue over a copy of events. The input must already
// be sorted and carry sequence numbers.
func newEventQueue(events []Event, extra int) *eventQueue {
	items := make([]Event, len(events), len(events)+extra)
	copy(items, events)
	q := &eventQueue{items: items, seq: uint64(len(events))}
	heap.Init(q)
	return q
}

func (q *eventQueue) Len() int { return len(q.items) }

func (q *eventQueue) Less(i, j int) bool { return eventLess(&q.items[i], &q.items[j]) }

func (q *eventQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *eventQueue) Push(x any) { q.items = append(q.items, x.(Event)) }

func (q *eventQueue) Pop() any {
	n := len(q.items) - 1
	e := q.items[n]
	q.items = q.items[:n]
	return e
}

func (q *eventQueue) push(e Event) {
	q.seq++
	e.seq = q.seq
	heap.Push(q, e)
}

func (q *eventQueue) pop() (Event, bool) {
	if len(q.items) == 0 {
		return Event{}, false
	}
	return heap.Pop(q).(Event), true
}

func eventLess(a, b *Event) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.seq < b.seq
}
