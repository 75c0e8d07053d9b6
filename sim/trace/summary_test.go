package trace

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewRunTrace(TraceConfig{Level: TraceLevelPackets}, RunInfo{})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalSent != 0 || summary.TotalDelivered != 0 || summary.TotalCorrupted != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if len(summary.Flows) != 0 {
		t.Error("expected no flows")
	}
	if Summarize(nil).TotalBytes != 0 {
		t.Error("expected zero bytes for nil trace")
	}
}

func TestSummarize_PopulatedTrace_PerFlowCounts(t *testing.T) {
	// GIVEN two named flows, one of which loses a packet to corruption
	st := NewRunTrace(TraceConfig{Level: TraceLevelPackets}, RunInfo{Flows: []string{"a", "b", "idle"}})
	st.RecordSend(SendRecord{Flow: 0, Seq: 0, Clock: 0, Bytes: 100})
	st.RecordSend(SendRecord{Flow: 1, Seq: 0, Clock: 10, Bytes: 40})
	st.RecordSend(SendRecord{Flow: 0, Seq: 1, Clock: 20, Bytes: 100})
	st.RecordDelivery(DeliveryRecord{Flow: 0, Seq: 0, SentAt: 0, Clock: 5, Bytes: 100, Intact: true})
	st.RecordDelivery(DeliveryRecord{Flow: 1, Seq: 0, SentAt: 10, Clock: 40, Bytes: 40, Intact: false, Reason: "corrupt"})
	st.RecordDelivery(DeliveryRecord{Flow: 0, Seq: 1, SentAt: 20, Clock: 35, Bytes: 100, Intact: true})

	// WHEN summarized
	summary := Summarize(st)

	// THEN flows are ordered by index with their own counters
	want := &TraceSummary{
		TotalSent:      3,
		TotalDelivered: 3,
		TotalCorrupted: 1,
		TotalBytes:     200,
		InFlight:       0,
		LastActivity:   40,
		Flows: []FlowSummary{
			{Flow: 0, Name: "a", Sent: 2, Delivered: 2, Bytes: 200, MeanDelay: 10},
			{Flow: 1, Name: "b", Sent: 1, Delivered: 1, Corrupted: 1, MeanDelay: 30},
			{Flow: 2, Name: "idle"},
		},
	}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_InFlight_CountsUndelivered(t *testing.T) {
	// GIVEN sends without deliveries
	st := NewRunTrace(TraceConfig{}, RunInfo{})
	st.RecordSend(SendRecord{Flow: 0, Clock: int64(time.Millisecond)})
	st.RecordSend(SendRecord{Flow: 0, Clock: int64(2 * time.Millisecond)})

	// WHEN summarized
	summary := Summarize(st)

	// THEN both are in flight and the mean delay is zero
	if summary.InFlight != 2 {
		t.Errorf("expected 2 in flight, got %d", summary.InFlight)
	}
	if summary.Flows[0].MeanDelay != 0 {
		t.Errorf("expected zero mean delay, got %v", summary.Flows[0].MeanDelay)
	}
	if summary.LastActivity != 2*time.Millisecond {
		t.Errorf("expected last activity 2ms, got %v", summary.LastActivity)
	}
}
