// Package traffic generates packet flows on top of the simulation core.
//
// Every packet is a zero-compressed buffer: a header carrying the flow
// index, sequence number and send time, a payload held as the buffer's
// zero region, and a trailer marker. The Workload schedules sends through
// a simulation.Scheduler, delivers each packet after the flow's latency
// and checks it through a read-only iterator on arrival.
package traffic

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/nsfx-go/nsfx/sim/random"
)

// MaxPayload bounds sampled payload sizes.
const MaxPayload = 1 << 20

// ValidArrivalProcesses is the set of recognized arrival processes.
var ValidArrivalProcesses = map[string]bool{
	"constant": true,
	"poisson":  true,
}

// ArrivalSpec describes the gaps between consecutive sends of a flow.
type ArrivalSpec struct {
	// Process is "constant" (every gap is Interval) or "poisson"
	// (exponential gaps with mean Interval).
	Process  string        `yaml:"process"`
	Interval time.Duration `yaml:"interval"`
}

// FlowSpec configures one flow.
type FlowSpec struct {
	Name    string          `yaml:"name,omitempty"`
	Count   int             `yaml:"count"`
	Start   time.Duration   `yaml:"start,omitempty"`
	Arrival ArrivalSpec     `yaml:"arrival"`
	Payload random.DistSpec `yaml:"payload"`
	Latency time.Duration   `yaml:"latency"`
}

// Validate checks the flow parameters.
func (f FlowSpec) Validate() error {
	if f.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", f.Count)
	}
	if f.Start < 0 {
		return fmt.Errorf("start must be non-negative, got %v", f.Start)
	}
	if f.Latency < 0 {
		return fmt.Errorf("latency must be non-negative, got %v", f.Latency)
	}
	if !ValidArrivalProcesses[f.Arrival.Process] {
		return fmt.Errorf("unknown arrival process %q; valid: %v", f.Arrival.Process, validArrivalNames())
	}
	switch {
	case f.Arrival.Interval < 0:
		return fmt.Errorf("arrival interval must be non-negative, got %v", f.Arrival.Interval)
	case f.Arrival.Process == "poisson" && f.Arrival.Interval == 0:
		return fmt.Errorf("poisson arrivals need a positive interval")
	}
	if err := f.Payload.Validate(); err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	return nil
}

func validArrivalNames() []string {
	names := make([]string, 0, len(ValidArrivalProcesses))
	for n := range ValidArrivalProcesses {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// newArrivals builds the gap sampler of spec drawing from rng.
func newArrivals(spec ArrivalSpec, rng *random.PartitionedRNG, subsystem string) (random.Distribution, error) {
	d := random.DistSpec{Type: "constant", Params: map[string]float64{"value": float64(spec.Interval)}}
	if spec.Process == "poisson" {
		d = random.DistSpec{Type: "exponential", Params: map[string]float64{"mean": float64(spec.Interval)}}
	}
	return random.NewDistribution(d, rng.Source(subsystem))
}

// sampleDuration rounds a sample in nanoseconds to a non-negative Duration.
func sampleDuration(d random.Distribution) time.Duration {
	v := math.Round(d.Rand())
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return time.Duration(v)
}

// samplePayload rounds a sample to a payload size in [0, MaxPayload].
func samplePayload(d random.Distribution) int {
	v := math.Round(d.Rand())
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Min(v, MaxPayload))
}
