package simulation

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nsfx-go/nsfx/sim/chrono"
	"github.com/nsfx-go/nsfx/sim/component"
	"github.com/nsfx-go/nsfx/sim/event"
)

// SimulatorClass is the class id of Simulator.
const SimulatorClass = "edu.uestc.nsfx.Simulator"

// RunState is the state of a Simulator.
type RunState uint8

const (
	NotStarted RunState = iota
	Running
	Paused
	Finished
)

func (s RunState) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("RunState(%d)", uint8(s))
}

type lifecycleEvent = event.Event[event.Void, event.Void]

// Simulator is the clock of a run and drives its scheduler.
//
// It exposes Clock, SchedulerUser and Runner, and aggregates four
// lifecycle events queried with component.QueryIID[LifecycleEvent] under
// IIDBeginEvent, IIDRunEvent, IIDPauseEvent and IIDEndEvent. Begin fires
// once before the first run, run and pause bracket every RunUntil call,
// and end fires once when the scheduler drains.
type Simulator struct {
	component.Core
	now       chrono.TimePoint
	scheduler Scheduler
	state     RunState
	looping   bool

	begin *lifecycleEvent
	run   *lifecycleEvent
	pause *lifecycleEvent
	end   *lifecycleEvent
}

var (
	_ Clock         = (*Simulator)(nil)
	_ SchedulerUser = (*Simulator)(nil)
	_ Runner        = (*Simulator)(nil)
)

// NewSimulator creates a simulator at the epoch. With a nil controller it
// holds one reference; otherwise it is an aggregated part.
func NewSimulator(controller component.Object) *Simulator {
	s := &Simulator{}
	s.begin = event.NewEvent[event.Void, event.Void](IIDBeginEvent, s, 0)
	s.run = event.NewEvent[event.Void, event.Void](IIDRunEvent, s, 0)
	s.pause = event.NewEvent[event.Void, event.Void](IIDPauseEvent, s, 0)
	s.end = event.NewEvent[event.Void, event.Void](IIDEndEvent, s, 0)
	s.InitDual(s, controller, s.destroy,
		component.Expose[Clock](s),
		component.Expose[SchedulerUser](s),
		component.Expose[Runner](s),
		component.ExposeAggregated(IIDBeginEvent, s.begin.Navigator()),
		component.ExposeAggregated(IIDRunEvent, s.run.Navigator()),
		component.ExposeAggregated(IIDPauseEvent, s.pause.Navigator()),
		component.ExposeAggregated(IIDEndEvent, s.end.Navigator()),
	)
	if controller == nil {
		s.AddRef()
	}
	return s
}

// Now implements Clock.
func (s *Simulator) Now() chrono.TimePoint { return s.now }

// State reports the run state.
func (s *Simulator) State() RunState { return s.state }

// UseScheduler implements SchedulerUser. The simulator keeps a reference
// to the scheduler until it is destroyed.
func (s *Simulator) UseScheduler(scheduler Scheduler) error {
	if s.scheduler != nil {
		return fmt.Errorf("simulator: scheduler already set: %w", errAlreadyInitialized)
	}
	if scheduler == nil {
		return fmt.Errorf("simulator: nil scheduler: %w", component.ErrInvalidPointer)
	}
	scheduler.AddRef()
	s.scheduler = scheduler
	return nil
}

// Run implements Runner. It runs until no event is pending.
func (s *Simulator) Run() error {
	return s.RunUntil(chrono.MaxTimePoint)
}

// RunFor implements Runner.
func (s *Simulator) RunFor(d chrono.Duration) error {
	return s.RunUntil(s.now.Add(d))
}

// RunUntil implements Runner. It fires every pending event with a time at
// or before t, advancing the clock to each event's time as it fires.
// Events scheduled by sinks during the loop are seen by the loop.
func (s *Simulator) RunUntil(t chrono.TimePoint) error {
	if s.scheduler == nil {
		return fmt.Errorf("simulator: no scheduler: %w", component.ErrUninitialized)
	}
	if s.looping {
		return errReentrantRun
	}
	if s.state == Finished {
		return ErrFinished
	}
	s.looping = true
	defer func() { s.looping = false }()

	if s.state == NotStarted {
		logrus.Debugf("simulator: begin at %v", s.now)
		s.begin.Fire(event.Void{})
	}
	s.state = Running
	logrus.Debugf("simulator: run at %v until %v", s.now, t)
	s.run.Fire(event.Void{})

	fired := 0
	for {
		h := s.scheduler.NextEvent()
		if h == nil || h.TimePoint() > t {
			break
		}
		s.now = h.TimePoint()
		s.scheduler.FireAndRemoveNextEvent()
		fired++
	}

	s.state = Paused
	logrus.Debugf("simulator: pause at %v after %d events", s.now, fired)
	s.pause.Fire(event.Void{})

	if s.scheduler.NumEvents() == 0 {
		s.state = Finished
		logrus.Debugf("simulator: end at %v", s.now)
		s.end.Fire(event.Void{})
	}
	return nil
}

func (s *Simulator) destroy() {
	for _, e := range []*lifecycleEvent{s.begin, s.run, s.pause, s.end} {
		e.Navigator().Destroy()
	}
	if s.scheduler != nil {
		s.scheduler.Release()
		s.scheduler = nil
	}
}
