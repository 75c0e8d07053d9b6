package simulation

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsfx-go/nsfx/sim/chrono"
	"github.com/nsfx-go/nsfx/sim/component"
	"github.com/nsfx-go/nsfx/sim/event"
)

// newTestSimulator wires a simulator to a fresh scheduler of the given kind.
func newTestSimulator(t *testing.T, newFn func(component.Object) *EventScheduler) (*Simulator, *EventScheduler) {
	t.Helper()
	sim := NewSimulator(nil)
	sched := newFn(nil)
	require.NoError(t, sched.UseClock(sim))
	require.NoError(t, sim.UseScheduler(sched))
	sched.Release()
	t.Cleanup(func() { sim.Release() })
	return sim, sched
}

// connectLifecycle records the four lifecycle events into rec.
func connectLifecycle(t *testing.T, sim *Simulator, rec *recorder) {
	t.Helper()
	for _, ev := range []struct {
		iid   component.IID
		label string
	}{
		{IIDBeginEvent, "begin"},
		{IIDRunEvent, "run"},
		{IIDPauseEvent, "pause"},
		{IIDEndEvent, "end"},
	} {
		src, err := component.QueryIID[LifecycleEvent](sim, ev.iid)
		require.NoError(t, err)
		_, err = src.Connect(rec.sink(t, ev.label))
		require.NoError(t, err)
		src.Release()
	}
}

func TestSimulator_EndToEndFiringOrder(t *testing.T) {
	for _, k := range schedulerKinds {
		t.Run(k.name, func(t *testing.T) {
			// GIVEN events at 5, 3, 3, 10 scheduled in that order
			sim, sched := newTestSimulator(t, k.new)
			var trace []uint64
			var handles []*EventHandle
			for _, at := range []chrono.TimePoint{5, 3, 3, 10} {
				var id uint64
				sink, err := event.FromAction(nil, func() { trace = append(trace, id) })
				require.NoError(t, err)
				h, err := sched.ScheduleAt(at, sink)
				require.NoError(t, err)
				sink.Release()
				id = h.ID()
				handles = append(handles, h)
			}

			// WHEN the simulation runs to completion
			require.NoError(t, sim.Run())

			// THEN events fire as t3 first, t3 second, t5, t10
			want := []uint64{handles[1].ID(), handles[2].ID(), handles[0].ID(), handles[3].ID()}
			if diff := cmp.Diff(want, trace); diff != "" {
				t.Errorf("trace mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, chrono.TimePoint(10), sim.Now())
			assert.Equal(t, Finished, sim.State())
		})
	}
}

func TestSimulator_RunUntilBoundary(t *testing.T) {
	sim, sched := newTestSimulator(t, NewListScheduler)
	rec := &recorder{}
	for _, at := range []chrono.TimePoint{10, 20, 20, 30} {
		_, err := sched.ScheduleAt(at, rec.sink(t, itoaLabel(at)))
		require.NoError(t, err)
	}

	// WHEN running until 20
	require.NoError(t, sim.RunUntil(20))

	// THEN every event at or before 20 fired and the clock sits on the last one
	assert.Equal(t, []string{"10", "20", "20"}, rec.trace)
	assert.Equal(t, chrono.TimePoint(20), sim.Now())
	assert.Equal(t, Paused, sim.State())
	assert.Equal(t, 1, sched.NumEvents())

	// WHEN running until 25, nothing is due
	require.NoError(t, sim.RunUntil(25))
	assert.Equal(t, chrono.TimePoint(20), sim.Now(), "clock only moves to fired events")

	// THEN a later run resumes from the remaining queue
	require.NoError(t, sim.Run())
	assert.Equal(t, []string{"10", "20", "20", "30"}, rec.trace)
	assert.Equal(t, Finished, sim.State())

	assert.ErrorIs(t, sim.Run(), ErrFinished)
	assert.ErrorIs(t, sim.Run(), component.ErrIllegalMethodCall)
}

func itoaLabel(at chrono.TimePoint) string { return fmt.Sprint(int64(at)) }

func TestSimulator_LifecycleEvents(t *testing.T) {
	sim, sched := newTestSimulator(t, NewHeapScheduler)
	rec := &recorder{}
	connectLifecycle(t, sim, rec)
	_, err := sched.ScheduleAt(5, rec.sink(t, "e5"))
	require.NoError(t, err)
	_, err = sched.ScheduleAt(50, rec.sink(t, "e50"))
	require.NoError(t, err)

	require.NoError(t, sim.RunUntil(10))
	require.NoError(t, sim.RunUntil(100))

	want := []string{
		"begin", "run", "e5", "pause",
		"run", "e50", "pause", "end",
	}
	if diff := cmp.Diff(want, rec.trace); diff != "" {
		t.Errorf("lifecycle mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulator_SinksScheduleFollowUps(t *testing.T) {
	sim, sched := newTestSimulator(t, NewListScheduler)
	var fired []chrono.TimePoint

	var tick func()
	tick = func() {
		fired = append(fired, sim.Now())
		if len(fired) < 4 {
			s, err := event.FromAction(nil, tick)
			require.NoError(t, err)
			_, err = sched.ScheduleIn(time.Duration(10), s)
			require.NoError(t, err)
			s.Release()
		}
	}
	first, err := event.FromAction(nil, tick)
	require.NoError(t, err)
	_, err = sched.ScheduleNow(first)
	require.NoError(t, err)
	first.Release()

	require.NoError(t, sim.Run())

	assert.Equal(t, []chrono.TimePoint{0, 10, 20, 30}, fired)
}

func TestSimulator_RunFor(t *testing.T) {
	sim, sched := newTestSimulator(t, NewHeapScheduler)
	rec := &recorder{}
	_, err := sched.ScheduleAt(chrono.At(time.Second), rec.sink(t, "1s"))
	require.NoError(t, err)
	_, err = sched.ScheduleAt(chrono.At(3*time.Second), rec.sink(t, "3s"))
	require.NoError(t, err)

	require.NoError(t, sim.RunFor(2*time.Second))
	assert.Equal(t, []string{"1s"}, rec.trace)

	// RunFor is relative to the clock, which stopped at the 1s event.
	require.NoError(t, sim.RunFor(time.Second))
	assert.Equal(t, []string{"1s"}, rec.trace)
	require.NoError(t, sim.RunFor(2*time.Second))
	assert.Equal(t, []string{"1s", "3s"}, rec.trace)
	assert.Equal(t, Finished, sim.State())
}

func TestSimulator_Errors(t *testing.T) {
	// Uninitialized
	bare := NewSimulator(nil)
	defer bare.Release()
	assert.ErrorIs(t, bare.Run(), component.ErrUninitialized)
	assert.ErrorIs(t, bare.UseScheduler(nil), component.ErrInvalidPointer)

	// Scheduler can only be set once
	sim, sched := newTestSimulator(t, NewListScheduler)
	assert.ErrorIs(t, sim.UseScheduler(sched), component.ErrCannotReinitialize)

	// Run loop cannot be entered from a sink
	var nested error
	s, err := event.FromAction(nil, func() { nested = sim.Run() })
	require.NoError(t, err)
	_, err = sched.ScheduleNow(s)
	require.NoError(t, err)
	s.Release()
	require.NoError(t, sim.Run())
	assert.ErrorIs(t, nested, component.ErrIllegalMethodCall)
}

func TestSimulator_EmptyRunFinishesImmediately(t *testing.T) {
	sim, _ := newTestSimulator(t, NewListScheduler)
	rec := &recorder{}
	connectLifecycle(t, sim, rec)

	require.NoError(t, sim.Run())

	assert.Equal(t, []string{"begin", "run", "pause", "end"}, rec.trace)
	assert.Equal(t, chrono.Epoch, sim.Now())
}

func TestSimulator_DestroyReleasesSchedulerAndSinks(t *testing.T) {
	sim := NewSimulator(nil)
	sched := NewListScheduler(nil)
	require.NoError(t, sched.UseClock(sim))
	require.NoError(t, sim.UseScheduler(sched))
	assert.Equal(t, int32(2), component.RefCount(sched))

	sink, err := event.FromAction(nil, func() {})
	require.NoError(t, err)
	src, err := component.QueryIID[LifecycleEvent](sim, IIDEndEvent)
	require.NoError(t, err)
	_, err = src.Connect(sink)
	require.NoError(t, err)
	src.Release()
	assert.Equal(t, int32(2), component.RefCount(sink))

	sched.Release()
	assert.Equal(t, int32(0), sim.Release())
	assert.Equal(t, int32(1), component.RefCount(sink))
	sink.Release()
}

func TestSimulator_AggregatedThroughRegistry(t *testing.T) {
	// GIVEN a controller that aggregates a simulator created by the registry
	r := component.NewRegistry()
	require.NoError(t, Register(r))

	type host struct {
		component.Core
		nav *component.Navigator
	}
	h := &host{}
	nav, err := component.Create[component.Object](r, SimulatorClass, h)
	require.NoError(t, err)
	h.nav = nav.(*component.Navigator)
	h.InitSolo(h, func() { h.nav.Destroy() },
		component.ExposeAggregated(IIDClock, h.nav),
		component.ExposeAggregated(IIDRunner, h.nav),
		component.ExposeAggregated(IIDSchedulerUser, h.nav),
	)
	h.AddRef()

	// WHEN the controller is queried for the simulator's interfaces
	clock, err := component.Query[Clock](h)
	require.NoError(t, err)
	runner, err := component.Query[Runner](h)
	require.NoError(t, err)

	// THEN they live on the controller's reference count
	assert.Equal(t, chrono.Epoch, clock.Now())
	assert.True(t, component.SameObject(clock, h))
	assert.Equal(t, int32(3), component.RefCount(h))
	assert.ErrorIs(t, runner.Run(), component.ErrUninitialized)

	clock.Release()
	runner.Release()
	assert.Equal(t, int32(0), h.Release())
}
