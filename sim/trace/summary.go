package trace

import (
	"sort"
	"time"
)

// FlowSummary aggregates the packets of one flow.
type FlowSummary struct {
	Flow      int           `json:"flow" yaml:"flow"`
	Name      string        `json:"name" yaml:"name"`
	Sent      int           `json:"sent" yaml:"sent"`
	Delivered int           `json:"delivered" yaml:"delivered"`
	Corrupted int           `json:"corrupted" yaml:"corrupted"`
	Bytes     int64         `json:"bytes" yaml:"bytes"`
	MeanDelay time.Duration `json:"mean_delay" yaml:"mean_delay"`
}

// TraceSummary aggregates statistics from a RunTrace.
type TraceSummary struct {
	TotalSent      int           `json:"total_sent" yaml:"total_sent"`
	TotalDelivered int           `json:"total_delivered" yaml:"total_delivered"`
	TotalCorrupted int           `json:"total_corrupted" yaml:"total_corrupted"`
	TotalBytes     int64         `json:"total_bytes" yaml:"total_bytes"`
	InFlight       int           `json:"in_flight" yaml:"in_flight"`
	LastActivity   time.Duration `json:"last_activity" yaml:"last_activity"`
	Flows          []FlowSummary `json:"flows" yaml:"flows"`
}

// Summarize computes aggregate statistics from a RunTrace. Flows are
// ordered by index and include every flow named in the run info, even
// if it never sent.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *RunTrace) *TraceSummary {
	summary := &TraceSummary{Flows: make([]FlowSummary, 0)}
	if st == nil {
		return summary
	}

	indexes := make(map[int]bool, len(st.counters)+len(st.Info.Flows))
	for i := range st.Info.Flows {
		indexes[i] = true
	}
	for i := range st.counters {
		indexes[i] = true
	}
	order := make([]int, 0, len(indexes))
	for i := range indexes {
		order = append(order, i)
	}
	sort.Ints(order)

	for _, i := range order {
		fs := FlowSummary{Flow: i}
		if i >= 0 && i < len(st.Info.Flows) {
			fs.Name = st.Info.Flows[i]
		}
		if c, ok := st.counters[i]; ok {
			fs.Sent = c.sent
			fs.Delivered = c.delivered
			fs.Corrupted = c.corrupted
			fs.Bytes = c.bytes
			if c.delivered > 0 {
				fs.MeanDelay = time.Duration(c.delay / int64(c.delivered))
			}
		}
		summary.TotalSent += fs.Sent
		summary.TotalDelivered += fs.Delivered
		summary.TotalCorrupted += fs.Corrupted
		summary.TotalBytes += fs.Bytes
		summary.Flows = append(summary.Flows, fs)
	}
	summary.InFlight = summary.TotalSent - summary.TotalDelivered
	summary.LastActivity = time.Duration(st.end)

	return summary
}
