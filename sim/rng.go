package sim

import (
	"hash/fnv"
	"math/rand"
)

// Randomness is the single source of random draws used by every business rule in the engine.
// *rand.Rand satisfies it; tests supply scripted sequences.
type Randomness interface {
	// Intn returns a value in [0, n). n is always > 0.
	Intn(n int) int
}

// uniformInt draws from [min, max). The upper bound is exclusive, so the largest possible
// value is max-1. An empty range returns min.
func uniformInt(r Randomness, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.Intn(max-min)
}

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same key, configuration and clock readings draw identical sequences.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemAllocation picks among idle clinicians.
	SubsystemAllocation = "allocation"

	// SubsystemDurations draws event durations.
	SubsystemDurations = "durations"

	// SubsystemCoding draws coded concepts on event completion.
	SubsystemCoding = "coding"

	// SubsystemArrivals draws batch sizes, arrival gaps and returning patients.
	SubsystemArrivals = "arrivals"

	// SubsystemPeople seeds the synthetic identity generator.
	SubsystemPeople = "people"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName)
//
// Thread-safety: NOT thread-safe. Must be called from the engine goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.SeedFor(name)))
	p.subsystems[name] = rng
	return rng
}

// SeedFor returns the derived seed for a subsystem, for libraries that take a seed
// rather than a rand.Source.
func (p *PartitionedRNG) SeedFor(name string) int64 {
	return int64(p.key) ^ fnv1a64(name)
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
