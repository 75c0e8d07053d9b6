package simulation

import (
	"fmt"

	"github.com/nsfx-go/nsfx/sim/chrono"
	"github.com/nsfx-go/nsfx/sim/event"
)

// HandleState is the lifecycle of a scheduled event.
type HandleState uint8

const (
	StatePending HandleState = iota
	StateFiring
	StateFired
	StateCancelled
)

func (s HandleState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFiring:
		return "firing"
	case StateFired:
		return "fired"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("HandleState(%d)", uint8(s))
}

// EventHandle is the scheduler's record of one event. It belongs to the
// scheduler that created it; callers may keep it to inspect or cancel the
// event.
type EventHandle struct {
	id    uint64
	t     chrono.TimePoint
	sink  event.EventSink
	state HandleState
	owner *EventScheduler
	// index is the heap position while pending.
	index int
}

// ID is the scheduling sequence number; among events with equal time the
// lower ID fires first.
func (h *EventHandle) ID() uint64 { return h.id }

// TimePoint is the time the event fires at.
func (h *EventHandle) TimePoint() chrono.TimePoint { return h.t }

// State reports where the event is in its lifecycle.
func (h *EventHandle) State() HandleState { return h.state }

// IsPending reports whether the event is still queued.
func (h *EventHandle) IsPending() bool { return h.state == StatePending }

// IsRunning reports whether the event's sink is executing.
func (h *EventHandle) IsRunning() bool { return h.state == StateFiring }

// Cancel removes a pending event from its scheduler so it never fires.
// Cancelling an event that is firing, fired or cancelled does nothing.
func (h *EventHandle) Cancel() {
	if h.state != StatePending {
		return
	}
	h.owner.cancel(h)
}

// fire runs the sink once. The handle must already be out of the queue.
func (h *EventHandle) fire() {
	h.state = StateFiring
	sink := h.sink
	h.sink = nil
	defer func() {
		h.state = StateFired
		sink.Release()
	}()
	sink.Fire(event.Void{})
}

// drop releases the sink of an event that will never fire.
func (h *EventHandle) drop() {
	h.state = StateCancelled
	if h.sink != nil {
		h.sink.Release()
		h.sink = nil
	}
}
