// Package sim provides the emergency department simulation engine.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - visit.go: Visit lifecycle (waiting → being seen → discharged) and the event workflow
//   - event.go: Event kinds (triage, assessment, treatment, discharge) and their estimators
//   - service.go: The per-tick completion and assignment passes
//   - driver.go: The background loop, arrivals and snapshot requests
//
// # Time
//
// The engine never reads the wall clock directly. All timestamps come from a Clock;
// SimulationClock accelerates wall time by a multiplier and ManualClock is driven by tests.
//
// # Randomness
//
// Every random draw goes through the Randomness interface. PartitionedRNG hands each
// subsystem (allocation, durations, coding, arrivals, people) its own seeded source, so a
// run is reproducible from a single seed given the same clock readings.
//
// # Observers
//
// State changes are reported to a Notifier in the order they occur. Snapshots give
// detached copies of the department for other goroutines. The engine itself is
// single-goroutine: only the Driver's loop touches live entities.
package sim
