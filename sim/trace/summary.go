package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	Ticks                 int
	TotalCompletions      int
	TotalAssignments      int
	StallCount            int
	MaxWaitingAtStall     int
	MeanDuration          float64        // mean assigned duration in minutes
	AssignmentsByKind     map[string]int // event kind → count
	AssignmentsByPriority map[string]int // priority code ("" = untriaged) → count
	ClinicianDistribution map[string]int // clinician ID → assignments
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		AssignmentsByKind:     make(map[string]int),
		AssignmentsByPriority: make(map[string]int),
		ClinicianDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.Ticks = st.Ticks
	summary.TotalCompletions = len(st.Completions)
	summary.TotalAssignments = len(st.Assignments)

	if len(st.Assignments) > 0 {
		totalDuration := 0
		for _, a := range st.Assignments {
			summary.AssignmentsByKind[a.Kind]++
			summary.AssignmentsByPriority[a.Priority]++
			summary.ClinicianDistribution[a.ClinicianID]++
			totalDuration += a.Duration
		}
		summary.MeanDuration = float64(totalDuration) / float64(len(st.Assignments))
	}

	summary.StallCount = len(st.Stalls)
	for _, s := range st.Stalls {
		if s.Waiting > summary.MaxWaitingAtStall {
			summary.MaxWaitingAtStall = s.Waiting
		}
	}

	return summary
}
