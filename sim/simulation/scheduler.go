package simulation

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nsfx-go/nsfx/sim/chrono"
	"github.com/nsfx-go/nsfx/sim/component"
	"github.com/nsfx-go/nsfx/sim/event"
)

// Class ids of the scheduler implementations.
const (
	ListSchedulerClass = "edu.uestc.nsfx.ListEventScheduler"
	HeapSchedulerClass = "edu.uestc.nsfx.HeapEventScheduler"
)

// EventScheduler implements Scheduler and ClockUser on top of an event
// queue. The list variant mirrors a linked list with a linear insertion
// scan; the heap variant keeps a binary heap. Both fire events in the same
// (time, id) order.
//
// The scheduler does not hold a reference to its clock. The clock is
// normally the Simulator that owns the scheduler, and holding it would
// keep both alive forever.
type EventScheduler struct {
	component.Core
	kind   string
	clock  Clock
	queue  eventQueue
	nextID uint64
}

var (
	_ Scheduler = (*EventScheduler)(nil)
	_ ClockUser = (*EventScheduler)(nil)
)

// NewListScheduler creates a list-backed scheduler. With a nil controller
// it holds one reference; otherwise it is an aggregated part.
func NewListScheduler(controller component.Object) *EventScheduler {
	return newEventScheduler(controller, "list", &listQueue{})
}

// NewHeapScheduler creates a heap-backed scheduler.
func NewHeapScheduler(controller component.Object) *EventScheduler {
	return newEventScheduler(controller, "heap", newHeapQueue())
}

func newEventScheduler(controller component.Object, kind string, q eventQueue) *EventScheduler {
	s := &EventScheduler{kind: kind, queue: q}
	s.InitDual(s, controller, s.clear,
		component.Expose[Scheduler](s),
		component.Expose[ClockUser](s),
	)
	if controller == nil {
		s.AddRef()
	}
	return s
}

// Kind is "list" or "heap".
func (s *EventScheduler) Kind() string { return s.kind }

// UseClock implements ClockUser.
func (s *EventScheduler) UseClock(clock Clock) error {
	if s.clock != nil {
		return fmt.Errorf("%s scheduler: clock already set: %w", s.kind, errAlreadyInitialized)
	}
	if clock == nil {
		return fmt.Errorf("%s scheduler: nil clock: %w", s.kind, component.ErrInvalidPointer)
	}
	s.clock = clock
	return nil
}

// ScheduleNow implements Scheduler.
func (s *EventScheduler) ScheduleNow(sink event.EventSink) (*EventHandle, error) {
	if s.clock == nil {
		return nil, fmt.Errorf("%s scheduler: no clock: %w", s.kind, component.ErrUninitialized)
	}
	return s.ScheduleAt(s.clock.Now(), sink)
}

// ScheduleIn implements Scheduler. The fire time saturates at
// chrono.MaxTimePoint.
func (s *EventScheduler) ScheduleIn(d chrono.Duration, sink event.EventSink) (*EventHandle, error) {
	if s.clock == nil {
		return nil, fmt.Errorf("%s scheduler: no clock: %w", s.kind, component.ErrUninitialized)
	}
	if d < 0 {
		return nil, fmt.Errorf("%s scheduler: negative delay %v: %w", s.kind, d, component.ErrInvalidArgument)
	}
	return s.ScheduleAt(s.clock.Now().Add(d), sink)
}

// ScheduleAt implements Scheduler.
func (s *EventScheduler) ScheduleAt(t chrono.TimePoint, sink event.EventSink) (*EventHandle, error) {
	if s.clock == nil {
		return nil, fmt.Errorf("%s scheduler: no clock: %w", s.kind, component.ErrUninitialized)
	}
	if sink == nil {
		return nil, fmt.Errorf("%s scheduler: nil sink: %w", s.kind, component.ErrInvalidPointer)
	}
	if now := s.clock.Now(); t < now {
		return nil, fmt.Errorf("%s scheduler: event at %v is before now (%v): %w",
			s.kind, t, now, component.ErrInvalidArgument)
	}
	sink.AddRef()
	h := &EventHandle{id: s.nextID, t: t, sink: sink, owner: s}
	s.nextID++
	s.queue.insert(h)
	return h, nil
}

// NumEvents implements Scheduler.
func (s *EventScheduler) NumEvents() int { return s.queue.Len() }

// NextEvent implements Scheduler.
func (s *EventScheduler) NextEvent() *EventHandle { return s.queue.peek() }

// RemoveNextEvent implements Scheduler. The removed event never fires.
func (s *EventScheduler) RemoveNextEvent() *EventHandle {
	h := s.queue.pop()
	if h != nil {
		h.drop()
	}
	return h
}

// FireAndRemoveNextEvent implements Scheduler.
func (s *EventScheduler) FireAndRemoveNextEvent() bool {
	h := s.queue.pop()
	if h == nil {
		return false
	}
	logrus.Tracef("[t=%d] firing event %d", int64(h.t), h.id)
	h.fire()
	return true
}

func (s *EventScheduler) cancel(h *EventHandle) {
	s.queue.remove(h)
	h.drop()
}

// clear drops every pending event on destruction.
func (s *EventScheduler) clear() {
	for h := s.queue.pop(); h != nil; h = s.queue.pop() {
		h.drop()
	}
	s.clock = nil
}
