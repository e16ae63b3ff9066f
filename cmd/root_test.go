package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ed-sim/ed-sim/sim/trace"
)

func TestApplyFlags_OnlyChangedFlagsOverride(t *testing.T) {
	// GIVEN a config loaded from elsewhere with non-default values
	cfg := DefaultAppConfig()
	cfg.Simulation.NumberOfClinicians = 3
	cfg.Simulation.SizeOfPopulation = 1000

	// WHEN only --population is passed
	cmd := &cobra.Command{Use: "run", Run: func(*cobra.Command, []string) {}}
	cmd.Flags().IntVar(&clinicians, "clinicians", 10, "")
	cmd.Flags().IntVar(&population, "population", 500_000, "")
	cmd.Flags().DurationVar(&tickInterval, "tick", time.Second, "")
	require.NoError(t, cmd.ParseFlags([]string{"--population", "2000", "--tick", "100ms"}))
	applyFlags(cmd, &cfg)

	// THEN the passed flags win and the rest keep the loaded values
	assert.Equal(t, 2000, cfg.Simulation.SizeOfPopulation)
	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.TickInterval)
	assert.Equal(t, 3, cfg.Simulation.NumberOfClinicians)
}

func TestRunCmd_FlagsRegistered(t *testing.T) {
	for _, name := range []string{
		"config", "env-file", "seed", "log", "multiplier", "clinicians",
		"population", "wrecklessness", "tick", "http-addr", "trace-level",
	} {
		assert.NotNil(t, runCmd.Flags().Lookup(name), "flag --%s", name)
	}
}

func TestRunSimulation_StopsOnCancelAndPrintsTraceSummary(t *testing.T) {
	// GIVEN a fast tick, no network surfaces and decision tracing on
	cfg := DefaultAppConfig()
	cfg.HTTPAddr = ""
	cfg.TraceLevel = string(trace.TraceLevelDecisions)
	cfg.Simulation.TickInterval = 5 * time.Millisecond
	cfg.ShutdownTimeout = time.Second
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	var out bytes.Buffer

	// WHEN the simulation runs until the context ends
	err := runSimulation(ctx, cfg, &out)

	// THEN it stops cleanly and reports the trace
	require.NoError(t, err)
	assert.Contains(t, out.String(), "=== Decision Trace Summary ===")
	assert.Contains(t, out.String(), `"TotalAssignments"`)
}

func TestRunSimulation_NoTraceNoSummary(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.HTTPAddr = ""
	cfg.Simulation.TickInterval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	var out bytes.Buffer

	require.NoError(t, runSimulation(ctx, cfg, &out))
	assert.Empty(t, out.String())
}

func TestPrintTraceSummary(t *testing.T) {
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	st.RecordTick()
	st.RecordAssignment(trace.AssignmentRecord{Kind: "Triage", Priority: "", Duration: 3, ClinicianID: "c1"})

	var out bytes.Buffer
	require.NoError(t, printTraceSummary(&out, trace.Summarize(st)))
	assert.Contains(t, out.String(), `"Ticks": 1`)
	assert.Contains(t, out.String(), `"Triage": 1`)
}
