package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/nsfx-go/nsfx/sim"
	"github.com/nsfx-go/nsfx/sim/trace"
)

var (
	// CLI flags for the run command
	scenarioPath string        // Path to the scenario YAML file
	seed         int64         // Overrides the scenario seed when set
	until        time.Duration // Overrides the scenario horizon when set
	schedulerArg string        // Overrides the scenario scheduler when set
	logLevel     string        // Log verbosity level
	traceOut     string        // Trace output file ("-" for stdout)
	traceFormat  string        // Trace output format
	traceLevel   string        // Overrides the scenario trace level when set
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "nsfx",
	Short: "Discrete-event network simulation on a component runtime",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd runs a scenario and prints its summary
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := sim.LoadScenario(scenarioPath)
		if err != nil {
			return err
		}
		applyOverrides(cmd, sc)
		if traceOut != "" && !trace.ValidFormats[traceFormat] {
			return fmt.Errorf("unknown trace format %q", traceFormat)
		}

		logrus.Infof("Starting scenario %q with seed=%d, scheduler=%s, flows=%d",
			sc.Name, sc.Seed, sc.SchedulerName(), len(sc.Flows))
		h, err := sim.NewHost(sc)
		if err != nil {
			return err
		}
		defer h.Close()

		res, err := h.Run()
		if err != nil {
			return err
		}
		sim.PrintSummary(cmd.OutOrStdout(), sc.Name, res)

		if traceOut != "" {
			if err := writeTrace(cmd, h.Trace()); err != nil {
				return err
			}
		}
		logrus.Info("Simulation complete.")
		return nil
	},
}

// classesCmd lists the registered component classes
var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List the registered component classes",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := sim.NewRegistry()
		if err != nil {
			return err
		}
		defer r.UnregisterAll()
		for _, cid := range r.Classes() {
			fmt.Fprintln(cmd.OutOrStdout(), cid)
		}
		return nil
	},
}

// applyOverrides copies explicitly set flags into the scenario.
func applyOverrides(cmd *cobra.Command, sc *sim.Scenario) {
	flags := cmd.Flags()
	if flags.Changed("seed") {
		sc.Seed = seed
	}
	if flags.Changed("until") {
		sc.Until = until
	}
	if flags.Changed("scheduler") {
		sc.Scheduler = schedulerArg
	}
	if flags.Changed("trace") {
		sc.Trace = traceLevel
	}
	if traceOut != "" && sc.Trace == "" {
		sc.Trace = string(trace.TraceLevelPackets)
	}
}

func writeTrace(cmd *cobra.Command, st *trace.RunTrace) error {
	if traceOut == "-" {
		return st.Encode(cmd.OutOrStdout(), traceFormat)
	}
	f, err := os.Create(traceOut)
	if err != nil {
		return fmt.Errorf("creating trace file: %w", err)
	}
	if err := st.Encode(f, traceFormat); err != nil {
		f.Close()
		return fmt.Errorf("writing trace: %w", err)
	}
	logrus.Infof("Trace written to %s", traceOut)
	return f.Close()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML file")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Seed for the random streams (overrides the scenario)")
	runCmd.Flags().DurationVar(&until, "until", 0, "Simulation horizon, 0 runs until no event is pending (overrides the scenario)")
	runCmd.Flags().StringVar(&schedulerArg, "scheduler", "", "Event scheduler: list or heap (overrides the scenario)")
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "Write the run trace to this file (- for stdout)")
	runCmd.Flags().StringVar(&traceFormat, "trace-format", trace.FormatJSON, "Trace format: json, yaml or cbor")
	runCmd.Flags().StringVar(&traceLevel, "trace", "", "Trace level: none or packets (overrides the scenario)")
	_ = runCmd.MarkFlagRequired("scenario")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(classesCmd)
}
