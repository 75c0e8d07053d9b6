// Package trace records what happened to every packet of a run.
// It stores pure data types and has no dependencies on the simulation
// packages; the host converts workload events into records.
package trace

// SendRecord captures a packet leaving its source.
type SendRecord struct {
	Flow  int    `json:"flow" yaml:"flow"`
	Seq   uint32 `json:"seq" yaml:"seq"`
	Clock int64  `json:"clock" yaml:"clock"` // ns since epoch
	Bytes int    `json:"bytes" yaml:"bytes"`
}

// DeliveryRecord captures a packet arriving at its destination.
type DeliveryRecord struct {
	Flow   int    `json:"flow" yaml:"flow"`
	Seq    uint32 `json:"seq" yaml:"seq"`
	SentAt int64  `json:"sent_at" yaml:"sent_at"`
	Clock  int64  `json:"clock" yaml:"clock"`
	Bytes  int    `json:"bytes" yaml:"bytes"`
	Intact bool   `json:"intact" yaml:"intact"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"` // why the checks failed
}

// Delay is the time the packet spent in flight.
func (r DeliveryRecord) Delay() int64 { return r.Clock - r.SentAt }
