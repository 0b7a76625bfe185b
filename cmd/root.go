package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/freight-sim/freight-sim/sim"
	"github.com/freight-sim/freight-sim/sim/policy"
	"github.com/freight-sim/freight-sim/sim/trace"
	"github.com/freight-sim/freight-sim/sim/trade"
)

var (
	// CLI flags for the simulation run
	scenarioPath      string // Path to the scenario YAML
	seed              int64  // Master seed for all random subsystems
	horizon           int64  // Total simulation time (in ticks)
	logLevel          string // Log verbosity level
	faultPolicy       string // Handler fault policy (best-effort, fail-fast)
	loadingDuration   int64  // Ticks a berthed vessel spends loading one cargo
	unloadingDuration int64  // Ticks a berthed vessel spends unloading one cargo
	runs              int    // Number of Monte Carlo replications
	outPath           string // Where to write the run log (JSONL)
	demandPath        string // Replay demand from a JSONL order file instead of generating
	emitDemandPath    string // Where to write the generated orders (JSONL)

	// CLI flags for replay
	replayLogPath string // Run log to replay
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "freight-sim",
	Short: "Discrete-event simulator for maritime freight networks",
}

func buildConfig() sim.Config {
	return sim.Config{
		Horizon:           horizon,
		Seed:              seed,
		FaultPolicy:       sim.FaultPolicy(faultPolicy),
		LoadingDuration:   loadingDuration,
		UnloadingDuration: unloadingDuration,
	}
}

func loadOrders(sc *sim.ScenarioSpec, cfg sim.Config) ([]trade.Order, error) {
	if demandPath != "" {
		gen, err := trade.NewReplayFile(demandPath)
		if err != nil {
			return nil, err
		}
		return gen.Generate(cfg.Horizon)
	}
	return sc.GenerateOrders(cfg)
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the freight simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := buildConfig()
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if runs < 1 {
			logrus.Fatalf("Invalid run count %d", runs)
		}

		sc, err := sim.LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("Unable to load scenario: %v", err)
		}
		if err := sc.Validate(); err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}

		runID := uuid.New().String()
		logrus.Infof("Starting run %s: scenario=%s seed=%d horizon=%d ticks, %d replication(s)",
			runID, scenarioPath, cfg.Seed, cfg.Horizon, runs)
		startTime := time.Now()

		if runs > 1 {
			results, err := sim.RunReplications(sc, cfg, runs, policy.New)
			if err != nil {
				logrus.Fatalf("Replication failed: %v", err)
			}
			batch := make([]trace.Summary, len(results))
			for i, r := range results {
				batch[i] = r.Summary
			}
			fmt.Printf("Run %s: %d replications in %v\n", runID, runs, time.Since(startTime))
			trace.Aggregate(batch).Print()
			return
		}

		orders, err := loadOrders(sc, cfg)
		if err != nil {
			logrus.Fatalf("Unable to build demand: %v", err)
		}
		if emitDemandPath != "" {
			if err := writeOrderFile(emitDemandPath, orders); err != nil {
				logrus.Fatalf("Unable to write demand file: %v", err)
			}
		}

		s, err := sc.BuildSimulator(cfg, policy.New)
		if err != nil {
			logrus.Fatalf("Unable to build simulator: %v", err)
		}
		if err := s.InjectOrders(orders); err != nil {
			logrus.Fatalf("Unable to inject demand: %v", err)
		}
		if err := s.Run(); err != nil {
			logrus.Fatalf("Simulation aborted: %v", err)
		}

		if outPath != "" {
			if err := writeLogFile(outPath, s.Log); err != nil {
				logrus.Fatalf("Unable to write run log: %v", err)
			}
		}

		fmt.Printf("Run %s finished in %v\n", runID, time.Since(startTime))
		trace.Summarize(s.Log, cfg.Horizon, sc.PortInfos()).Print()

		logrus.Info("Simulation complete.")
	},
}

// replayCmd rebuilds final entity state from a recorded run log
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded run log and report the reconstructed state",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := buildConfig()
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		sc, err := sim.LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("Unable to load scenario: %v", err)
		}
		if err := sc.Validate(); err != nil {
			logrus.Fatalf("Invalid scenario: %v", err)
		}
		orders, err := loadOrders(sc, cfg)
		if err != nil {
			logrus.Fatalf("Unable to build demand: %v", err)
		}

		f, err := os.Open(replayLogPath)
		if err != nil {
			logrus.Fatalf("Unable to open run log: %v", err)
		}
		defer f.Close()
		l, err := trace.ReadJSONL(f)
		if err != nil {
			logrus.Fatalf("Unable to read run log: %v", err)
		}

		if _, err := sim.ReplayLog(l, sc, orders); err != nil {
			logrus.Fatalf("Replay failed: %v", err)
		}
		trace.Summarize(l, cfg.Horizon, sc.PortInfos()).Print()
		logrus.Info("Replay complete.")
	},
}

func writeLogFile(path string, l *trace.Log) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return l.WriteJSONL(f)
}

func writeOrderFile(path string, orders []trade.Order) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return trade.WriteOrders(f, orders)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, replayCmd} {
		c.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML (required)")
		c.Flags().Int64Var(&seed, "seed", 42, "Master seed for demand generation and tie-breaking")
		c.Flags().Int64Var(&horizon, "horizon", 100000, "Total simulation horizon (in ticks)")
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().StringVar(&faultPolicy, "fault-policy", string(sim.FaultBestEffort), "Handler fault policy (best-effort, fail-fast)")
		c.Flags().Int64Var(&loadingDuration, "loading-duration", 0, "Ticks spent loading one cargo at a berth")
		c.Flags().Int64Var(&unloadingDuration, "unloading-duration", 0, "Ticks spent unloading one cargo at a berth")
		c.Flags().StringVar(&demandPath, "demand-file", "", "Replay demand from a JSONL order file instead of generating it")
		c.MarkFlagRequired("scenario")
	}

	runCmd.Flags().IntVar(&runs, "runs", 1, "Number of Monte Carlo replications")
	runCmd.Flags().StringVar(&outPath, "out", "", "Write the run log to this file (JSONL)")
	runCmd.Flags().StringVar(&emitDemandPath, "emit-demand", "", "Write the generated orders to this file (JSONL)")

	replayCmd.Flags().StringVar(&replayLogPath, "run-log", "", "Run log to replay (JSONL, required)")
	replayCmd.MarkFlagRequired("run-log")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
}
