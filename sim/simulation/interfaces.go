// Package simulation implements the discrete-event engine: event
// schedulers that keep pending events in (time, id) order, and the
// Simulator that owns the clock and drives the run loop.
package simulation

import (
	"fmt"

	"github.com/nsfx-go/nsfx/sim/chrono"
	"github.com/nsfx-go/nsfx/sim/component"
	"github.com/nsfx-go/nsfx/sim/event"
)

// Clock provides the current simulated time.
type Clock interface {
	component.Object
	Now() chrono.TimePoint
}

// ClockUser is implemented by components that read a clock.
type ClockUser interface {
	component.Object
	// UseClock sets the clock. It can be called once.
	UseClock(clock Clock) error
}

// Scheduler keeps pending events ordered by fire time, then by the order
// in which they were scheduled.
type Scheduler interface {
	component.Object
	ScheduleNow(sink event.EventSink) (*EventHandle, error)
	ScheduleIn(d chrono.Duration, sink event.EventSink) (*EventHandle, error)
	ScheduleAt(t chrono.TimePoint, sink event.EventSink) (*EventHandle, error)
	// NumEvents counts the pending events. An event being fired is not
	// pending.
	NumEvents() int
	// NextEvent returns the earliest pending event, or nil.
	NextEvent() *EventHandle
	// RemoveNextEvent removes the earliest pending event without firing it.
	RemoveNextEvent() *EventHandle
	// FireAndRemoveNextEvent removes the earliest pending event and fires
	// it. It reports false when no event was pending.
	FireAndRemoveNextEvent() bool
}

// SchedulerUser is implemented by components that schedule events.
type SchedulerUser interface {
	component.Object
	// UseScheduler sets the scheduler. It can be called once.
	UseScheduler(scheduler Scheduler) error
}

// Runner drives a simulation.
type Runner interface {
	component.Object
	Run() error
	RunUntil(t chrono.TimePoint) error
	RunFor(d chrono.Duration) error
}

// LifecycleEvent is the event type of the four simulation lifecycle events.
type LifecycleEvent = event.Source[event.Void, event.Void]

var (
	IIDClock         = component.DefineIID[Clock]("edu.uestc.nsfx.IClock")
	IIDClockUser     = component.DefineIID[ClockUser]("edu.uestc.nsfx.IClockUser")
	IIDScheduler     = component.DefineIID[Scheduler]("edu.uestc.nsfx.IEventScheduler")
	IIDSchedulerUser = component.DefineIID[SchedulerUser]("edu.uestc.nsfx.IEventSchedulerUser")
	IIDRunner        = component.DefineIID[Runner]("edu.uestc.nsfx.ISimulator")

	// Lifecycle events, fired by the Simulator.
	IIDBeginEvent = component.NewIID("edu.uestc.nsfx.ISimulationBeginEvent")
	IIDRunEvent   = component.NewIID("edu.uestc.nsfx.ISimulationRunEvent")
	IIDPauseEvent = component.NewIID("edu.uestc.nsfx.ISimulationPauseEvent")
	IIDEndEvent   = component.NewIID("edu.uestc.nsfx.ISimulationEndEvent")
)

var (
	// ErrFinished is returned when a finished simulation is run again.
	ErrFinished = fmt.Errorf("simulation finished: %w", component.ErrIllegalMethodCall)

	errAlreadyInitialized = fmt.Errorf("%w: %w", component.ErrCannotReinitialize, component.ErrIllegalMethodCall)
	errReentrantRun       = fmt.Errorf("run loop is already active: %w", component.ErrIllegalMethodCall)
)
