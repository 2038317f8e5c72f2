// Command reactor-bench measures reactor graph throughput for a few
// canonical topologies: a cascade of chained computeds, a fan-out of
// effects over one value, and a diamond converging on a single join.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reactor-go/reactor/pkg/reactor"
)

type profile struct {
	Name    string
	Nodes   int
	Updates int
}

var profiles = map[string]profile{
	"fast": {
		Name:    "fast",
		Nodes:   10,
		Updates: 1_000,
	},
	"standard": {
		Name:    "standard",
		Nodes:   100,
		Updates: 10_000,
	},
	"stress": {
		Name:    "stress",
		Nodes:   1_000,
		Updates: 100_000,
	},
}

type benchConfig struct {
	Profile    string
	Nodes      int
	Updates    int
	Batch      bool
	JSONOutput bool
}

type benchResult struct {
	Scenario    string        `json:"scenario"`
	Profile     string        `json:"profile"`
	Nodes       int           `json:"nodes"`
	Updates     int           `json:"updates"`
	Elapsed     time.Duration `json:"elapsed_ns"`
	Flushes     uint64        `json:"flushes"`
	Runs        uint64        `json:"runs"`
	UpdatesPerS float64       `json:"updates_per_second"`
	RunsPerS    float64       `json:"runs_per_second"`
}

// countingSink tallies engine activity without retaining anything.
type countingSink struct {
	flushes uint64
	runs    uint64
}

func (c *countingSink) FlushStarted()                               {}
func (c *countingSink) FlushFinished(reactor.FlushStats)            { c.flushes++ }
func (c *countingSink) ComputationRan(reactor.RunStats)             { c.runs++ }
func (c *countingSink) DependenciesReconciled(reactor.TrackerStats) {}
func (c *countingSink) DisposalFailed(string, any)                  {}

func main() {
	cfg := benchConfig{}

	rootCmd := &cobra.Command{
		Use:   "reactor-bench",
		Short: "Benchmark reactor graph topologies",
		Long: `reactor-bench drives synthetic reactive graphs and reports
throughput: updates applied per second and computation runs per second.

Scenarios:

  cascade  chain of computeds, each derived from the previous
  fanout   many effects tracking a single value
  diamond  one source fanning out and converging on a join`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			p, ok := profiles[cfg.Profile]
			if !ok {
				return fmt.Errorf("unknown profile %q (want fast, standard or stress)", cfg.Profile)
			}
			if cfg.Nodes == 0 {
				cfg.Nodes = p.Nodes
			}
			if cfg.Updates == 0 {
				cfg.Updates = p.Updates
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Profile, "profile", "standard", "benchmark profile: fast, standard, stress")
	flags.IntVar(&cfg.Nodes, "nodes", 0, "override node count")
	flags.IntVar(&cfg.Updates, "updates", 0, "override update count")
	flags.BoolVar(&cfg.Batch, "batch", false, "apply updates inside ExecuteBatch")
	flags.BoolVar(&cfg.JSONOutput, "json", false, "emit results as JSON")

	rootCmd.AddCommand(
		scenarioCmd("cascade", "Chain of computeds, each derived from the previous", &cfg, runCascade),
		scenarioCmd("fanout", "Many effects tracking a single value", &cfg, runFanout),
		scenarioCmd("diamond", "One source fanning out and converging on a join", &cfg, runDiamond),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func scenarioCmd(name, short string, cfg *benchConfig, run func(*benchConfig, *countingSink) int) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(*cobra.Command, []string) error {
			sink := &countingSink{}
			start := time.Now()
			updates := run(cfg, sink)
			elapsed := time.Since(start)

			return report(benchResult{
				Scenario:    name,
				Profile:     cfg.Profile,
				Nodes:       cfg.Nodes,
				Updates:     updates,
				Elapsed:     elapsed,
				Flushes:     sink.flushes,
				Runs:        sink.runs,
				UpdatesPerS: float64(updates) / elapsed.Seconds(),
				RunsPerS:    float64(sink.runs) / elapsed.Seconds(),
			}, cfg.JSONOutput)
		},
	}
}

// runCascade builds head -> computed[0] -> ... -> computed[n-1] and drives
// the head.
func runCascade(cfg *benchConfig, sink *countingSink) int {
	s := reactor.NewScheduler(reactor.WithSink(sink))
	head := reactor.NewValue(s, 0)

	prev := reactor.Readable[int](head)
	for n := 0; n < cfg.Nodes; n++ {
		src := prev
		prev = reactor.NewComputed(s, fmt.Sprintf("stage-%d", n), func(b *reactor.Builder) int {
			return reactor.Track(b, src) + 1
		})
	}

	applyUpdates(s, cfg, func(i int) { head.Set(i + 1) })
	return cfg.Updates
}

// runFanout subscribes cfg.Nodes effects to one value.
func runFanout(cfg *benchConfig, sink *countingSink) int {
	s := reactor.NewScheduler(reactor.WithSink(sink))
	source := reactor.NewValue(s, 0)

	for n := 0; n < cfg.Nodes; n++ {
		reactor.NewEffect(s, fmt.Sprintf("leaf-%d", n), func(b *reactor.Builder) {
			_ = reactor.Track(b, source)
		})
	}

	applyUpdates(s, cfg, func(i int) { source.Set(i + 1) })
	return cfg.Updates
}

// runDiamond derives cfg.Nodes computeds from one source and joins them in
// a single effect.
func runDiamond(cfg *benchConfig, sink *countingSink) int {
	s := reactor.NewScheduler(reactor.WithSink(sink))
	source := reactor.NewValue(s, 0)

	arms := make([]*reactor.Computed[int], cfg.Nodes)
	for n := 0; n < cfg.Nodes; n++ {
		weight := n + 1
		arms[n] = reactor.NewComputed(s, fmt.Sprintf("arm-%d", n), func(b *reactor.Builder) int {
			return reactor.Track(b, source) * weight
		})
	}

	reactor.NewEffect(s, "join", func(b *reactor.Builder) {
		total := 0
		for _, arm := range arms {
			total += reactor.Track(b, arm)
		}
		_ = total
	})

	applyUpdates(s, cfg, func(i int) { source.Set(i + 1) })
	return cfg.Updates
}

func applyUpdates(s *reactor.Scheduler, cfg *benchConfig, update func(int)) {
	if cfg.Batch {
		s.ExecuteBatch(func() {
			for i := 0; i < cfg.Updates; i++ {
				update(i)
			}
		})
		return
	}
	for i := 0; i < cfg.Updates; i++ {
		update(i)
	}
}

func report(r benchResult, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(r)
	}

	fmt.Printf("scenario:  %s (%s profile)\n", r.Scenario, r.Profile)
	fmt.Printf("graph:     %d nodes\n", r.Nodes)
	fmt.Printf("updates:   %d in %s\n", r.Updates, r.Elapsed.Round(time.Microsecond))
	fmt.Printf("flushes:   %d\n", r.Flushes)
	fmt.Printf("runs:      %d\n", r.Runs)
	fmt.Printf("rate:      %.0f updates/s, %.0f runs/s\n", r.UpdatesPerS, r.RunsPerS)
	return nil
}
