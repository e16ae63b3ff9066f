package sim

import (
	"fmt"
	"time"
)

// arrivalIntervalScale is the empirical arrival constant: a 500,000-person catchment
// produces roughly one arrival every 10 simulated minutes.
const arrivalIntervalScale = 5_000_000

// DefaultTickInterval is the wall-clock period between scheduler ticks.
const DefaultTickInterval = 500 * time.Millisecond

// MaxSpeedMultiplier caps the speed-up factor so the clock's scaled nanosecond remainder
// stays inside the time.Duration range.
const MaxSpeedMultiplier = 1_000_000

// Config groups the simulation parameters fixed at startup.
type Config struct {
	SimulationSpeedMultiplier int           `yaml:"simulation_speed_multiplier" validate:"gte=1,lte=1000000"` // virtual speed-up factor
	NumberOfClinicians        int           `yaml:"number_of_clinicians" validate:"gte=1"`                    // roster size seeded at startup
	SizeOfPopulation          int           `yaml:"size_of_population" validate:"gte=1"`                      // catchment size; drives arrival rate and returns
	PopulationWrecklessness   int           `yaml:"population_wrecklessness" validate:"gte=1"`                // inclusive upper bound on arrivals per batch
	TickInterval              time.Duration `yaml:"tick_interval" validate:"gt=0"`                            // wall-clock period between ticks
	Seed                      int64         `yaml:"seed"`                                                     // master RNG seed
}

// DefaultConfig returns the configuration the simulator ships with.
func DefaultConfig() Config {
	return Config{
		SimulationSpeedMultiplier: 1,
		NumberOfClinicians:        10,
		SizeOfPopulation:          500_000,
		PopulationWrecklessness:   5,
		TickInterval:              DefaultTickInterval,
		Seed:                      42,
	}
}

// Validate checks that every value is in range.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ArrivalInterval returns the mean gap between arrival batches in simulated minutes.
func (c Config) ArrivalInterval() int {
	return arrivalIntervalScale / c.SizeOfPopulation
}

// String renders the configuration for the startup log line.
func (c Config) String() string {
	return fmt.Sprintf("speed multiplier=%d, clinicians=%d, population=%d, wrecklessness=%d, tick=%s, seed=%d",
		c.SimulationSpeedMultiplier, c.NumberOfClinicians, c.SizeOfPopulation,
		c.PopulationWrecklessness, c.TickInterval, c.Seed)
}
