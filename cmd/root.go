package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ed-sim/ed-sim/api"
	"github.com/ed-sim/ed-sim/sim"
	"github.com/ed-sim/ed-sim/sim/trace"
	"github.com/ed-sim/ed-sim/sink"
	"github.com/ed-sim/ed-sim/sink/broker"
	"github.com/ed-sim/ed-sim/sink/hl7"
	"github.com/ed-sim/ed-sim/sink/record"
	"github.com/ed-sim/ed-sim/sink/stream"
)

var (
	configPath string // YAML configuration file
	envFile    string // dotenv file loaded before EDSIM_* overrides

	// CLI flags; each overrides the file and environment only when explicitly set
	seed          int64         // Master RNG seed
	logLevel      string        // Log verbosity level
	multiplier    int           // Simulation speed multiplier
	clinicians    int           // Clinicians seeded at startup
	population    int           // Catchment population size
	wrecklessness int           // Upper bound on arrivals per batch
	tickInterval  time.Duration // Wall-clock period between ticks
	httpAddr      string        // Status API listen address, empty to disable
	traceLevel    string        // Decision trace verbosity
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ed-sim",
	Short: "Real-time emergency department simulator",
}

// runCmd runs the simulator until interrupted
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the emergency department simulation",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadAppConfig(configPath, envFile, os.LookupEnv)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		applyFlags(cmd, &cfg)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		// Set up logging
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", cfg.LogLevel)
		}
		logrus.SetLevel(level)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runSimulation(ctx, cfg, os.Stdout); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Info("Simulation stopped.")
	},
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(cmd *cobra.Command, cfg *AppConfig) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if flags.Changed("log") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("multiplier") {
		cfg.Simulation.SimulationSpeedMultiplier = multiplier
	}
	if flags.Changed("clinicians") {
		cfg.Simulation.NumberOfClinicians = clinicians
	}
	if flags.Changed("population") {
		cfg.Simulation.SizeOfPopulation = population
	}
	if flags.Changed("wrecklessness") {
		cfg.Simulation.PopulationWrecklessness = wrecklessness
	}
	if flags.Changed("tick") {
		cfg.Simulation.TickInterval = tickInterval
	}
	if flags.Changed("http-addr") {
		cfg.HTTPAddr = httpAddr
	}
	if flags.Changed("trace-level") {
		cfg.TraceLevel = traceLevel
	}
}

// runSimulation wires the engine, sinks and status API, then blocks until ctx is done.
// The decision trace summary, when enabled, is written to out on the way out.
func runSimulation(ctx context.Context, cfg AppConfig, out io.Writer) error {
	sinks, closers, err := connectSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logrus.Warnf("Closing sink: %v", err)
			}
		}
	}()
	dispatcher := sink.NewDispatcher(cfg.QueueSize, 0, sinks...)

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Simulation.Seed))
	clock := sim.NewSimulationClock(cfg.Simulation.SimulationSpeedMultiplier)
	svc, err := sim.NewService(cfg.Simulation, clock, rng, dispatcher)
	if err != nil {
		return err
	}

	var st *trace.SimulationTrace
	if trace.TraceLevel(cfg.TraceLevel) == trace.TraceLevelDecisions {
		st = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
		svc.SetTrace(st)
	}

	driver := sim.NewDriver(svc, rng)

	var server *http.Server
	if cfg.HTTPAddr != "" {
		server = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.NewRouter(driver, 0),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logrus.Infof("Status API listening on %s.", cfg.HTTPAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("Status API failed: %v", err)
			}
		}()
	}

	runErr := driver.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.Warnf("Status API forced to shutdown: %v", err)
		}
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logrus.Warnf("Undelivered notifications at shutdown: %v", err)
	}
	if n := dispatcher.Dropped(); n > 0 {
		logrus.Warnf("%d notifications were dropped because the queue was full.", n)
	}

	if st != nil {
		if err := printTraceSummary(out, trace.Summarize(st)); err != nil {
			logrus.Errorf("Writing trace summary: %v", err)
		}
	}
	return runErr
}

// connectSinks opens every configured collaborator. The log sink is always present.
func connectSinks(ctx context.Context, cfg AppConfig) ([]sink.Sink, []func() error, error) {
	sinks := []sink.Sink{sink.LogSink{}}
	var closers []func() error
	fail := func(err error) ([]sink.Sink, []func() error, error) {
		for _, c := range closers {
			_ = c()
		}
		return nil, nil, err
	}

	if cfg.HL7.Enabled() {
		sinks = append(sinks, hl7.NewSender(cfg.HL7))
	} else {
		logrus.Info("HL7 client is disabled.")
	}
	if cfg.AMQP.Enabled() {
		p, closeFn, err := broker.Dial(cfg.AMQP)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, p)
		closers = append(closers, closeFn)
	}
	if cfg.Redis.Enabled() {
		a, closeFn, err := stream.Connect(ctx, cfg.Redis)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, a)
		closers = append(closers, closeFn)
	}
	if cfg.Mongo.Enabled() {
		s, disconnect, err := record.Connect(ctx, cfg.Mongo)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, s)
		closers = append(closers, func() error {
			dctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return disconnect(dctx)
		})
	}
	return sinks, closers, nil
}

// printTraceSummary writes the decision trace summary to w.
func printTraceSummary(w io.Writer, s *trace.TraceSummary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "=== Decision Trace Summary ===\n%s\n", data)
	return err
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	defaults := sim.DefaultConfig()

	runCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	runCmd.Flags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before EDSIM_* overrides (ignored when missing)")

	runCmd.Flags().Int64Var(&seed, "seed", defaults.Seed, "Seed for all random draws")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Simulation parameters
	runCmd.Flags().IntVar(&multiplier, "multiplier", defaults.SimulationSpeedMultiplier, "Simulation speed multiplier")
	runCmd.Flags().IntVar(&clinicians, "clinicians", defaults.NumberOfClinicians, "Number of clinicians on the roster")
	runCmd.Flags().IntVar(&population, "population", defaults.SizeOfPopulation, "Size of the catchment population")
	runCmd.Flags().IntVar(&wrecklessness, "wrecklessness", defaults.PopulationWrecklessness, "Maximum patients arriving per batch")
	runCmd.Flags().DurationVar(&tickInterval, "tick", defaults.TickInterval, "Wall-clock time between scheduler ticks")

	// Outer surfaces
	runCmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "Status API listen address (empty disables)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
