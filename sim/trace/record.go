// Package trace provides decision-trace recording for the scheduler's tick passes.
// The package has no dependencies on sim/ and stores plain data types.
package trace

import "time"

// CompletionRecord captures one event closed by the completion pass.
type CompletionRecord struct {
	Tick        int
	SimTime     time.Time
	VisitID     string
	EventID     string
	Kind        string
	ClinicianID string
}

// AssignmentRecord captures one clinician assigned by the assignment pass.
type AssignmentRecord struct {
	Tick        int
	SimTime     time.Time
	VisitID     string
	EventID     string
	Kind        string
	ClinicianID string
	Priority    string // triage priority code, "" before triage
	Duration    int    // minutes
	Rank        int    // position in the priority-ordered waiting list (0-based)
}

// StallRecord captures an assignment pass halted because no clinician was free.
type StallRecord struct {
	Tick    int
	SimTime time.Time
	Waiting int // visits left waiting when the pass stopped
}
