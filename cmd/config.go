package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ed-sim/ed-sim/sim"
	"github.com/ed-sim/ed-sim/sim/trace"
	"github.com/ed-sim/ed-sim/sink/broker"
	"github.com/ed-sim/ed-sim/sink/hl7"
	"github.com/ed-sim/ed-sim/sink/record"
	"github.com/ed-sim/ed-sim/sink/stream"
)

// envPrefix namespaces every environment override.
const envPrefix = "EDSIM_"

// AppConfig is the full runtime configuration.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type AppConfig struct {
	Simulation      sim.Config    `yaml:"simulation"`
	LogLevel        string        `yaml:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
	HTTPAddr        string        `yaml:"http_addr"`
	TraceLevel      string        `yaml:"trace_level"`
	QueueSize       int           `yaml:"queue_size" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`

	HL7   hl7.Config    `yaml:"hl7"`
	AMQP  broker.Config `yaml:"amqp"`
	Redis stream.Config `yaml:"redis"`
	Mongo record.Config `yaml:"mongo"`
}

// DefaultAppConfig returns the settings used when nothing overrides them.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Simulation:      sim.DefaultConfig(),
		LogLevel:        "info",
		HTTPAddr:        ":8080",
		TraceLevel:      string(trace.TraceLevelNone),
		ShutdownTimeout: 10 * time.Second,
		HL7:             hl7.Config{VisitCreatedType: hl7.TypeRegister, RetryCount: 3},
		Redis:           stream.Config{Stream: "edsim:notifications"},
		Mongo:           record.Config{Database: "edsim"},
	}
}

// Validate checks every section.
func (c AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", sim.ErrInvalidConfig, err)
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return fmt.Errorf("%w: unknown trace level %q", sim.ErrInvalidConfig, c.TraceLevel)
	}
	return nil
}

// loadAppConfig layers the defaults, the YAML file at path (if any), the dotenv file at
// envFile (if present) and EDSIM_* variables from lookup, in that order.
func loadAppConfig(path, envFile string, lookup func(string) (string, bool)) (AppConfig, error) {
	cfg := DefaultAppConfig()
	if path != "" {
		if err := decodeConfigFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decodeConfigFile parses YAML with strict field checking: typos must cause errors.
func decodeConfigFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config YAML %s: %w", path, err)
	}
	return nil
}

type envBinding struct {
	name string
	set  func(cfg *AppConfig, v string) error
}

func intVar(dst func(*AppConfig) *int) func(*AppConfig, string) error {
	return func(cfg *AppConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst(cfg) = n
		return nil
	}
}

func stringVar(dst func(*AppConfig) *string) func(*AppConfig, string) error {
	return func(cfg *AppConfig, v string) error {
		*dst(cfg) = v
		return nil
	}
}

var envBindings = []envBinding{
	{"SIMULATION_SPEED_MULTIPLIER", intVar(func(c *AppConfig) *int { return &c.Simulation.SimulationSpeedMultiplier })},
	{"NUMBER_OF_CLINICIANS", intVar(func(c *AppConfig) *int { return &c.Simulation.NumberOfClinicians })},
	{"SIZE_OF_POPULATION", intVar(func(c *AppConfig) *int { return &c.Simulation.SizeOfPopulation })},
	{"POPULATION_WRECKLESSNESS", intVar(func(c *AppConfig) *int { return &c.Simulation.PopulationWrecklessness })},
	{"TICK_INTERVAL", func(c *AppConfig, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Simulation.TickInterval = d
		return nil
	}},
	{"SEED", func(c *AppConfig, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		c.Simulation.Seed = n
		return nil
	}},
	{"LOG_LEVEL", stringVar(func(c *AppConfig) *string { return &c.LogLevel })},
	{"HTTP_ADDR", stringVar(func(c *AppConfig) *string { return &c.HTTPAddr })},
	{"TRACE_LEVEL", stringVar(func(c *AppConfig) *string { return &c.TraceLevel })},
	{"HL7_ENDPOINT", stringVar(func(c *AppConfig) *string { return &c.HL7.Endpoint })},
	{"HL7_SENDING_ORGANISATION", stringVar(func(c *AppConfig) *string { return &c.HL7.SendingOrganisation })},
	{"AMQP_URL", stringVar(func(c *AppConfig) *string { return &c.AMQP.URL })},
	{"AMQP_EXCHANGE", stringVar(func(c *AppConfig) *string { return &c.AMQP.Exchange })},
	{"REDIS_ADDR", stringVar(func(c *AppConfig) *string { return &c.Redis.Addr })},
	{"REDIS_PASSWORD", stringVar(func(c *AppConfig) *string { return &c.Redis.Password })},
	{"MONGO_URI", stringVar(func(c *AppConfig) *string { return &c.Mongo.URI })},
	{"MONGO_DATABASE", stringVar(func(c *AppConfig) *string { return &c.Mongo.Database })},
}

func applyEnv(cfg *AppConfig, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(envPrefix + b.name)
		if !ok || v == "" {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", sim.ErrInvalidConfig, envPrefix, b.name, v, err)
		}
	}
	return nil
}
