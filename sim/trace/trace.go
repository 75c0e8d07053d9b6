package trace

// TraceLevel controls the verbosity of packet tracing.
type TraceLevel string

const (
	// TraceLevelNone keeps only the per-flow counters.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelPackets keeps every send and delivery record.
	TraceLevelPackets TraceLevel = "packets"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:    true,
	TraceLevelPackets: true,
	"":                true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// RunInfo identifies the run a trace belongs to.
type RunInfo struct {
	Seed      int64    `json:"seed" yaml:"seed"`
	Scheduler string   `json:"scheduler" yaml:"scheduler"`
	Engine    string   `json:"engine" yaml:"engine"`
	Flows     []string `json:"flows" yaml:"flows"`
}

// RunTrace collects packet records during a simulation.
type RunTrace struct {
	Config     TraceConfig
	Info       RunInfo
	Sends      []SendRecord
	Deliveries []DeliveryRecord

	// counters are kept at every level so a summary is always available.
	counters map[int]*flowCounter
	end      int64
}

type flowCounter struct {
	sent, delivered, corrupted int
	bytes                      int64
	delay                      int64
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace(config TraceConfig, info RunInfo) *RunTrace {
	return &RunTrace{
		Config:     config,
		Info:       info,
		Sends:      make([]SendRecord, 0),
		Deliveries: make([]DeliveryRecord, 0),
		counters:   make(map[int]*flowCounter),
	}
}

func (st *RunTrace) counter(flow int) *flowCounter {
	c, ok := st.counters[flow]
	if !ok {
		c = &flowCounter{}
		st.counters[flow] = c
	}
	return c
}

// RecordSend counts a send and appends its record at TraceLevelPackets.
func (st *RunTrace) RecordSend(record SendRecord) {
	st.counter(record.Flow).sent++
	st.advance(record.Clock)
	if st.Config.Level == TraceLevelPackets {
		st.Sends = append(st.Sends, record)
	}
}

// RecordDelivery counts a delivery and appends its record at
// TraceLevelPackets. Only intact packets add to the byte count.
func (st *RunTrace) RecordDelivery(record DeliveryRecord) {
	c := st.counter(record.Flow)
	c.delivered++
	c.delay += record.Delay()
	if record.Intact {
		c.bytes += int64(record.Bytes)
	} else {
		c.corrupted++
	}
	st.advance(record.Clock)
	if st.Config.Level == TraceLevelPackets {
		st.Deliveries = append(st.Deliveries, record)
	}
}

func (st *RunTrace) advance(clock int64) {
	if clock > st.end {
		st.end = clock
	}
}
