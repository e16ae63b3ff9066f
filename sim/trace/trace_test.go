package trace

import (
	"testing"
	"time"
)

func TestSimulationTrace_RecordAssignment_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN an assignment record is recorded
	st.RecordAssignment(AssignmentRecord{
		Tick:        3,
		SimTime:     time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		VisitID:     "visit_1",
		Kind:        "Triage",
		ClinicianID: "clin_1",
		Duration:    4,
	})

	// THEN the trace contains one assignment record with correct data
	if len(st.Assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(st.Assignments))
	}
	if st.Assignments[0].VisitID != "visit_1" {
		t.Errorf("expected visit ID visit_1, got %s", st.Assignments[0].VisitID)
	}
	if st.Assignments[0].Duration != 4 {
		t.Errorf("expected duration 4, got %d", st.Assignments[0].Duration)
	}
}

func TestSimulationTrace_RecordCompletionAndStall_AppendsRecords(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a completion and a stall are recorded
	st.RecordCompletion(CompletionRecord{VisitID: "visit_1", Kind: "Triage"})
	st.RecordStall(StallRecord{Tick: 1, Waiting: 7})

	// THEN both slices hold one record
	if len(st.Completions) != 1 || st.Completions[0].Kind != "Triage" {
		t.Errorf("unexpected completions %+v", st.Completions)
	}
	if len(st.Stalls) != 1 || st.Stalls[0].Waiting != 7 {
		t.Errorf("unexpected stalls %+v", st.Stalls)
	}
}

func TestSimulationTrace_Enabled(t *testing.T) {
	tests := []struct {
		name string
		st   *SimulationTrace
		want bool
	}{
		{"nil trace", nil, false},
		{"none", NewSimulationTrace(TraceConfig{Level: TraceLevelNone}), false},
		{"empty level", NewSimulationTrace(TraceConfig{}), false},
		{"decisions", NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.st.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"decisions", true},
		{"", true},
		{"verbose", false},
		{"DECISIONS", false},
	}
	for _, tt := range tests {
		if got := IsValidTraceLevel(tt.level); got != tt.valid {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
		}
	}
}
