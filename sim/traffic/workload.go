package traffic

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nsfx-go/nsfx/sim/buffer"
	"github.com/nsfx-go/nsfx/sim/chrono"
	"github.com/nsfx-go/nsfx/sim/component"
	"github.com/nsfx-go/nsfx/sim/event"
	"github.com/nsfx-go/nsfx/sim/random"
	"github.com/nsfx-go/nsfx/sim/simulation"
)

// Record describes one packet when it is sent or delivered.
type Record struct {
	Flow   int
	Seq    uint32
	SentAt chrono.TimePoint
	// At is the send time of a sent record and the arrival time of a
	// delivered one.
	At    chrono.TimePoint
	Bytes int
	// Err is set when a delivered packet failed its checks.
	Err error
}

// PacketSink receives records.
type PacketSink = event.Sink[Record, event.Void]

// PacketEvent is the source type of the sent and delivered events.
type PacketEvent = event.Source[Record, event.Void]

// Generator starts a workload.
type Generator interface {
	component.Object
	// Start schedules the first packet of every flow. It can be called
	// once, after the clock and scheduler are set.
	Start() error
	NumFlows() int
}

var (
	IIDPacketSink = component.DefineIID[PacketSink]("edu.uestc.nsfx.traffic.IPacketSink")
	IIDGenerator  = component.DefineIID[Generator]("edu.uestc.nsfx.traffic.IGenerator")

	IIDSentEvent      = component.NewIID("edu.uestc.nsfx.traffic.ISentEvent")
	IIDDeliveredEvent = component.NewIID("edu.uestc.nsfx.traffic.IDeliveredEvent")
)

var errAlreadySet = fmt.Errorf("%w: %w", component.ErrCannotReinitialize, component.ErrIllegalMethodCall)

type packetEvent = event.Event[Record, event.Void]

// Workload sends the packets of a set of flows.
//
// It exposes Generator, simulation.ClockUser and simulation.SchedulerUser,
// and aggregates two PacketEvents: IIDSentEvent fires when a packet
// leaves its source and IIDDeliveredEvent when it has been received and
// checked.
type Workload struct {
	component.Core
	flows     []*flow
	clock     simulation.Clock
	scheduler simulation.Scheduler
	started   bool

	sent      *packetEvent
	delivered *packetEvent
}

var (
	_ Generator                = (*Workload)(nil)
	_ simulation.ClockUser     = (*Workload)(nil)
	_ simulation.SchedulerUser = (*Workload)(nil)
)

// flow is the run-time state of one FlowSpec.
type flow struct {
	w        *Workload
	index    int
	spec     FlowSpec
	arrivals random.Distribution
	payload  random.Distribution
	next     uint32
	send     *event.Adapter[event.Void, event.Void]
}

// NewWorkload creates a workload holding one reference. Flow i draws its
// gaps from rng's SubsystemFlow(SubsystemArrivals, i) stream and its
// payload sizes from SubsystemFlow(SubsystemPayload, i).
func NewWorkload(specs []FlowSpec, rng *random.PartitionedRNG) (*Workload, error) {
	if rng == nil {
		return nil, fmt.Errorf("workload: nil rng: %w", component.ErrInvalidPointer)
	}
	w := &Workload{}
	for i, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("flow %d: %w: %w", i, err, component.ErrInvalidArgument)
		}
		if spec.Name == "" {
			spec.Name = fmt.Sprintf("flow-%d", i)
		}
		arrivals, err := newArrivals(spec.Arrival, rng, random.SubsystemFlow(random.SubsystemArrivals, i))
		if err != nil {
			return nil, fmt.Errorf("flow %d arrivals: %w", i, err)
		}
		payload, err := random.NewDistribution(spec.Payload, rng.Source(random.SubsystemFlow(random.SubsystemPayload, i)))
		if err != nil {
			return nil, fmt.Errorf("flow %d payload: %w", i, err)
		}
		w.flows = append(w.flows, &flow{w: w, index: i, spec: spec, arrivals: arrivals, payload: payload})
	}
	for _, f := range w.flows {
		send, err := event.FromMethod(nil, f, (*flow).onSend)
		if err != nil {
			return nil, err
		}
		f.send = send
	}

	w.sent = event.NewEvent[Record, event.Void](IIDSentEvent, w, 0)
	w.delivered = event.NewEvent[Record, event.Void](IIDDeliveredEvent, w, 0)
	w.InitSolo(w, w.destroy,
		component.Expose[Generator](w),
		component.Expose[simulation.ClockUser](w),
		component.Expose[simulation.SchedulerUser](w),
		component.ExposeAggregated(IIDSentEvent, w.sent.Navigator()),
		component.ExposeAggregated(IIDDeliveredEvent, w.delivered.Navigator()),
	)
	w.AddRef()
	return w, nil
}

// NumFlows implements Generator.
func (w *Workload) NumFlows() int { return len(w.flows) }

// FlowName returns the name of flow i.
func (w *Workload) FlowName(i int) string { return w.flows[i].spec.Name }

// UseClock implements simulation.ClockUser. The workload keeps a
// reference to the clock.
func (w *Workload) UseClock(clock simulation.Clock) error {
	if w.clock != nil {
		return fmt.Errorf("workload: clock already set: %w", errAlreadySet)
	}
	if clock == nil {
		return fmt.Errorf("workload: nil clock: %w", component.ErrInvalidPointer)
	}
	clock.AddRef()
	w.clock = clock
	return nil
}

// UseScheduler implements simulation.SchedulerUser. The workload keeps a
// reference to the scheduler.
func (w *Workload) UseScheduler(scheduler simulation.Scheduler) error {
	if w.scheduler != nil {
		return fmt.Errorf("workload: scheduler already set: %w", errAlreadySet)
	}
	if scheduler == nil {
		return fmt.Errorf("workload: nil scheduler: %w", component.ErrInvalidPointer)
	}
	scheduler.AddRef()
	w.scheduler = scheduler
	return nil
}

// Start implements Generator.
func (w *Workload) Start() error {
	if w.clock == nil || w.scheduler == nil {
		return fmt.Errorf("workload: clock and scheduler must be set: %w", component.ErrUninitialized)
	}
	if w.started {
		return fmt.Errorf("workload: already started: %w", component.ErrIllegalMethodCall)
	}
	w.started = true
	for _, f := range w.flows {
		if _, err := w.scheduler.ScheduleIn(f.spec.Start, f.send); err != nil {
			return fmt.Errorf("flow %s: %w", f.spec.Name, err)
		}
		logrus.Debugf("traffic: flow %s starts at %v with %d packets", f.spec.Name, w.clock.Now().Add(f.spec.Start), f.spec.Count)
	}
	return nil
}

func (f *flow) onSend(event.Void) event.Void {
	w := f.w
	now := w.clock.Now()
	size := samplePayload(f.payload)
	h := Header{Flow: uint32(f.index), Seq: f.next, SentAt: now}
	pkt := NewPacket(h, size)
	f.next++

	w.sent.Fire(Record{Flow: f.index, Seq: h.Seq, SentAt: now, At: now, Bytes: size})

	d := event.FromFunctor[event.Void, event.Void](nil, delivery{flow: f, want: h, pkt: pkt})
	_, err := w.scheduler.ScheduleIn(f.spec.Latency, d)
	d.Release()
	if err != nil {
		panic(fmt.Sprintf("traffic: flow %s: scheduling delivery: %v", f.spec.Name, err))
	}

	if int(f.next) < f.spec.Count {
		if _, err := w.scheduler.ScheduleIn(sampleDuration(f.arrivals), f.send); err != nil {
			panic(fmt.Sprintf("traffic: flow %s: scheduling send: %v", f.spec.Name, err))
		}
	}
	return event.Void{}
}

// delivery receives one packet.
type delivery struct {
	flow *flow
	want Header
	pkt  *buffer.Buffer
}

func (d delivery) Call(event.Void) event.Void {
	w := d.flow.w
	rec := Record{Flow: d.flow.index, Seq: d.want.Seq, SentAt: d.want.SentAt, At: w.clock.Now()}
	got, size, err := ParsePacket(d.pkt)
	rec.Bytes = size
	if err == nil && got != d.want {
		err = fmt.Errorf("header %+v, want %+v: %w", got, d.want, ErrCorruptPacket)
	}
	if err != nil {
		logrus.Warnf("traffic: flow %s packet %d: %v", d.flow.spec.Name, d.want.Seq, err)
		rec.Err = err
	}
	w.delivered.Fire(rec)
	return event.Void{}
}

func (w *Workload) destroy() {
	w.sent.Navigator().Destroy()
	w.delivered.Navigator().Destroy()
	for _, f := range w.flows {
		f.send.Release()
	}
	if w.scheduler != nil {
		w.scheduler.Release()
		w.scheduler = nil
	}
	if w.clock != nil {
		w.clock.Release()
		w.clock = nil
	}
}
