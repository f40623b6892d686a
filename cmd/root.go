package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/svtx-eval/clustereval/eval"
	"github.com/svtx-eval/clustereval/eval/event"
	"github.com/svtx-eval/clustereval/eval/promstats"
	"github.com/svtx-eval/clustereval/eval/report"
	"github.com/svtx-eval/clustereval/eval/trace"
)

var (
	eventsPath  string  // YAML event file
	configPath  string  // Optional YAML evaluator config
	logLevel    string  // Log verbosity level
	strict      bool    // Panic on missing stores or nil arguments
	verbosity   int     // Teardown error report verbosity
	noCache     bool    // Disable per-event memoization
	zWindow     float64 // Half-width of the truth-hit → cluster z window
	traceLevel  string  // Decision trace level
	checkWindow bool    // Count matches lost to the z window
	showMetrics bool    // Dump Prometheus metrics after the report
	outputPath  string  // Report destination (stdout when empty)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "clustereval",
	Short: "Truth matching for reconstructed tracker clusters",
}

// runCmd evaluates every event of an event file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Match clusters to truth for every event and print a report",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if eventsPath == "" {
			logrus.Fatalf("Event file not provided. Use --events.")
		}
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		events, err := event.LoadFile(eventsPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Evaluating %d events from %s (strict=%v, cache=%v, z_window=%g)",
			len(events), eventsPath, cfg.Strict, cfg.CacheEnabled, cfg.ZWindow)

		out := io.Writer(os.Stdout)
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				logrus.Fatalf("unable to create output file: %v", err)
			}
			defer func() { _ = f.Close() }()
			out = f
		}

		reg := prometheus.NewRegistry()
		mt := trace.NewMatchTrace(trace.TraceLevel(cfg.Trace))
		r, stats, err := evaluate(events, cfg, reg, mt, checkWindow)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := r.Write(out); err != nil {
			logrus.Fatalf("%v", err)
		}
		if mt != nil {
			printTraceSummary(out, trace.Summarize(mt))
		}
		if showMetrics {
			if err := dumpMetrics(out, reg); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		logrus.Debugf("cache hit ratio %.3f", stats.CacheHitRatio())
		logrus.Info("Evaluation complete.")
	},
}

// resolveConfig layers explicitly set flags over the config file (or defaults).
func resolveConfig(cmd *cobra.Command) (eval.Config, error) {
	cfg := eval.DefaultConfig()
	if configPath != "" {
		loaded, err := eval.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("verbosity") {
		cfg.Verbosity = verbosity
	}
	if flags.Changed("no-cache") {
		cfg.CacheEnabled = !noCache
	}
	if flags.Changed("z-window") {
		cfg.ZWindow = zWindow
	}
	if flags.Changed("trace") {
		cfg.Trace = traceLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid evaluator config: %w", err)
	}
	return cfg, nil
}

// evaluate runs one ClusterEval across events, moving it from event to event
// with NextEvent, and returns the aggregated report.
func evaluate(events []*event.Event, cfg eval.Config, reg prometheus.Registerer, mt *trace.MatchTrace, checkWindow bool) (*report.Report, *promstats.Stats, error) {
	stats := promstats.New(reg)
	acc := report.NewAccumulator(checkWindow)

	var first eval.EventSource
	if len(events) > 0 {
		first = events[0]
	}
	ce := eval.NewClusterEval(first, event.NewHitEval(first), cfg,
		eval.WithMetrics(stats), eval.WithTrace(mt))
	defer ce.Close()

	for i, ev := range events {
		if i > 0 {
			ce.NextEvent(ev)
		}
		if err := acc.Observe(ce, ev); err != nil {
			return nil, stats, err
		}
		logrus.Debugf("event %d: %d clusters, %d cached results", ev.ID, ev.Clusters.Len(), ce.CacheEntries())
	}
	return acc.Finish(ce.Errors(), stats.CacheHitRatio()), stats, nil
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	_, _ = fmt.Fprintln(w, "=== Match Trace ===")
	_, _ = fmt.Fprintf(w, "Best-cluster decisions : %d\n", s.BestClusterDecisions)
	_, _ = fmt.Fprintf(w, "Unmatched truth hits   : %d\n", s.UnmatchedTruthHits)
	_, _ = fmt.Fprintf(w, "Ambiguous truth hits   : %d\n", s.AmbiguousTruthHits)
	_, _ = fmt.Fprintf(w, "Max-particle decisions : %d\n", s.MaxParticleDecisions)
	_, _ = fmt.Fprintf(w, "Merged clusters        : %d\n", s.MergedClusters)
	if s.MergedClusters > 0 {
		_, _ = fmt.Fprintf(w, "Particle margin        : mean %.4f, min %.4f\n", s.MeanParticleMargin, s.MinParticleMargin)
	}
}

func dumpMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	_, _ = fmt.Fprintln(w, "=== Metrics ===")
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&eventsPath, "events", "", "YAML event file")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML evaluator config (flags override it)")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Write the report to this file instead of stdout")

	runCmd.Flags().BoolVar(&strict, "strict", false, "Abort on missing event stores or nil arguments")
	runCmd.Flags().IntVar(&verbosity, "verbosity", 1, "0 silences the teardown error report, 2 always prints it")
	runCmd.Flags().BoolVar(&noCache, "no-cache", false, "Recompute every query instead of memoizing per event")
	runCmd.Flags().Float64Var(&zWindow, "z-window", eval.DefaultZWindow, "Half-width of the z window for truth hit → cluster matching")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().BoolVar(&checkWindow, "check-window", false, "Count truth-hit matches lost to the z window")
	runCmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print Prometheus metrics after the report")

	rootCmd.AddCommand(runCmd)
}
