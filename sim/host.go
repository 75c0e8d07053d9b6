package sim

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/nsfx-go/nsfx/sim/chrono"
	"github.com/nsfx-go/nsfx/sim/component"
	"github.com/nsfx-go/nsfx/sim/event"
	"github.com/nsfx-go/nsfx/sim/random"
	"github.com/nsfx-go/nsfx/sim/simulation"
	"github.com/nsfx-go/nsfx/sim/trace"
	"github.com/nsfx-go/nsfx/sim/traffic"
)

// NewRegistry returns a registry holding every class the host can create.
func NewRegistry() (*component.Registry, error) {
	r := component.NewRegistry()
	if err := simulation.Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Host wires one scenario: a scheduler and simulator created through the
// class registry, the traffic workload, and the trace that records it.
type Host struct {
	scenario *Scenario
	registry *component.Registry

	runner    simulation.Runner
	clock     simulation.Clock
	scheduler simulation.Scheduler
	workload  *traffic.Workload
	trace     *trace.RunTrace
	started   bool
}

// Result is the outcome of Host.Run.
type Result struct {
	Now      chrono.TimePoint
	Finished bool
	Summary  *trace.TraceSummary
	Digest   trace.Digest
}

// NewHost validates sc and builds its components. Close releases them.
func NewHost(sc *Scenario) (h *Host, err error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	h = &Host{scenario: sc}
	defer func() {
		if err != nil {
			h.Close()
			h = nil
		}
	}()

	if h.registry, err = NewRegistry(); err != nil {
		return h, err
	}
	cid, _ := simulation.SchedulerClass(sc.SchedulerName())
	if h.scheduler, err = component.Create[simulation.Scheduler](h.registry, cid, nil); err != nil {
		return h, fmt.Errorf("creating scheduler: %w", err)
	}
	if h.runner, err = component.Create[simulation.Runner](h.registry, simulation.SimulatorClass, nil); err != nil {
		return h, fmt.Errorf("creating simulator: %w", err)
	}
	if h.clock, err = component.Query[simulation.Clock](h.runner); err != nil {
		return h, err
	}
	if err = use[simulation.ClockUser](h.scheduler, func(u simulation.ClockUser) error { return u.UseClock(h.clock) }); err != nil {
		return h, err
	}
	if err = use[simulation.SchedulerUser](h.runner, func(u simulation.SchedulerUser) error { return u.UseScheduler(h.scheduler) }); err != nil {
		return h, err
	}

	rng, err := random.NewPartitionedRNG(random.NewSimulationKey(sc.Seed), sc.Engine)
	if err != nil {
		return h, err
	}
	if h.workload, err = traffic.NewWorkload(sc.Flows, rng); err != nil {
		return h, err
	}
	if err = h.workload.UseClock(h.clock); err != nil {
		return h, err
	}
	if err = h.workload.UseScheduler(h.scheduler); err != nil {
		return h, err
	}

	names := make([]string, h.workload.NumFlows())
	for i := range names {
		names[i] = h.workload.FlowName(i)
	}
	h.trace = trace.NewRunTrace(trace.TraceConfig{Level: trace.TraceLevel(sc.Trace)}, trace.RunInfo{
		Seed:      sc.Seed,
		Scheduler: sc.SchedulerName(),
		Engine:    sc.EngineName(),
		Flows:     names,
	})
	if err = h.connect(); err != nil {
		return h, err
	}
	return h, nil
}

// use queries o for T, calls fn and releases T again.
func use[T component.Object](o component.Object, fn func(T) error) error {
	v, err := component.Query[T](o)
	if err != nil {
		return err
	}
	defer v.Release()
	return fn(v)
}

// recorder converts workload records to trace records.
type recorder struct {
	trace *trace.RunTrace
}

func (r *recorder) onSent(rec traffic.Record) event.Void {
	r.trace.RecordSend(trace.SendRecord{
		Flow:  rec.Flow,
		Seq:   rec.Seq,
		Clock: int64(rec.At),
		Bytes: rec.Bytes,
	})
	return event.Void{}
}

func (r *recorder) onDelivered(rec traffic.Record) event.Void {
	d := trace.DeliveryRecord{
		Flow:   rec.Flow,
		Seq:    rec.Seq,
		SentAt: int64(rec.SentAt),
		Clock:  int64(rec.At),
		Bytes:  rec.Bytes,
		Intact: rec.Err == nil,
	}
	if rec.Err != nil {
		d.Reason = rec.Err.Error()
	}
	r.trace.RecordDelivery(d)
	return event.Void{}
}

func (h *Host) connect() error {
	rec := &recorder{trace: h.trace}
	for _, c := range []struct {
		iid    component.IID
		method func(*recorder, traffic.Record) event.Void
	}{
		{traffic.IIDSentEvent, (*recorder).onSent},
		{traffic.IIDDeliveredEvent, (*recorder).onDelivered},
	} {
		sink, err := event.FromMethod(nil, rec, c.method)
		if err != nil {
			return err
		}
		err = connectTo[traffic.PacketEvent, traffic.Record, event.Void](h.workload, c.iid, sink)
		sink.Release()
		if err != nil {
			return err
		}
	}

	end, err := event.FromAction(nil, func() {
		logrus.Debugf("host: scenario %q drained at %v", h.scenario.Name, h.clock.Now())
	})
	if err != nil {
		return err
	}
	defer end.Release()
	return connectTo[simulation.LifecycleEvent, event.Void, event.Void](h.runner, simulation.IIDEndEvent, end)
}

// connectTo connects sink to the event o exposes under iid.
func connectTo[S event.Source[A, R], A, R any](o component.Object, iid component.IID, sink event.Sink[A, R]) error {
	src, err := component.QueryIID[S](o, iid)
	if err != nil {
		return err
	}
	defer src.Release()
	_, err = src.Connect(sink)
	return err
}

// Run starts the workload on the first call and runs the simulation up to
// the scenario's horizon, or until no event is pending when it has none.
func (h *Host) Run() (*Result, error) {
	if !h.started {
		if err := h.workload.Start(); err != nil {
			return nil, err
		}
		h.started = true
	}
	var err error
	if h.scenario.Until > 0 {
		err = h.runner.RunUntil(chrono.At(h.scenario.Until))
	} else {
		err = h.runner.Run()
	}
	if err != nil {
		return nil, err
	}

	res := &Result{
		Now:      h.clock.Now(),
		Finished: h.scheduler.NumEvents() == 0,
		Summary:  trace.Summarize(h.trace),
	}
	if res.Digest, err = h.trace.Digest(); err != nil {
		return nil, err
	}
	logrus.Infof("host: stopped at %v with %d of %d packets delivered", res.Now, res.Summary.TotalDelivered, res.Summary.TotalSent)
	return res, nil
}

// Trace returns the run trace.
func (h *Host) Trace() *trace.RunTrace { return h.trace }

// Close releases every component of the host. It is safe to call on a
// partially built host.
func (h *Host) Close() {
	if h.workload != nil {
		h.workload.Release()
		h.workload = nil
	}
	if h.clock != nil {
		h.clock.Release()
		h.clock = nil
	}
	if h.scheduler != nil {
		h.scheduler.Release()
		h.scheduler = nil
	}
	if h.runner != nil {
		h.runner.Release()
		h.runner = nil
	}
	if h.registry != nil {
		h.registry.UnregisterAll()
		h.registry = nil
	}
}

// PrintSummary writes a human-readable summary of res.
func PrintSummary(w io.Writer, name string, res *Result) {
	s := res.Summary
	fmt.Fprintln(w, "=== Simulation Summary ===")
	if name != "" {
		fmt.Fprintf(w, "Scenario             : %s\n", name)
	}
	fmt.Fprintf(w, "Stopped at           : %v\n", res.Now)
	fmt.Fprintf(w, "Finished             : %v\n", res.Finished)
	fmt.Fprintf(w, "Packets sent         : %d\n", s.TotalSent)
	fmt.Fprintf(w, "Packets delivered    : %d\n", s.TotalDelivered)
	fmt.Fprintf(w, "Packets corrupted    : %d\n", s.TotalCorrupted)
	fmt.Fprintf(w, "Payload bytes        : %d\n", s.TotalBytes)
	for _, f := range s.Flows {
		fmt.Fprintf(w, "  %-18s : sent=%d delivered=%d bytes=%d mean_delay=%v\n",
			f.Name, f.Sent, f.Delivered, f.Bytes, f.MeanDelay)
	}
	fmt.Fprintf(w, "Digest               : %s\n", res.Digest)
}
