// Package main runs scripted simulation scenarios without a window and
// prints what happened.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Garsondee/realmforge/internal/logging"
	"github.com/Garsondee/realmforge/internal/observability"
	"github.com/Garsondee/realmforge/internal/sim"
)

var (
	runs         int
	ticks        int
	scenarioFlag string
	traceFlag    bool
	metricsFlag  bool
	summaryFlag  bool
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "headless-report",
	Short: "Run scripted scenarios headless and report the outcome",
	Long: `headless-report drives the simulation through scripted scenarios
(economy, tower, production) for a fixed number of ticks and prints ledger
deltas, event counts and the collected metrics.`,
	RunE: runReport,
}

func init() {
	rootCmd.Flags().IntVar(&runs, "runs", 1, "runs per scenario")
	rootCmd.Flags().IntVar(&ticks, "ticks", 3600, "ticks per run")
	rootCmd.Flags().StringVar(&scenarioFlag, "scenario", "all", "scenario name or \"all\" ("+strings.Join(scenarioNames(), ", ")+")")
	rootCmd.Flags().BoolVar(&traceFlag, "trace", false, "export one span per run to stdout")
	rootCmd.Flags().BoolVar(&metricsFlag, "metrics", true, "print the Prometheus registry after all runs")
	rootCmd.Flags().BoolVar(&summaryFlag, "summary", false, "print the world summary after each run")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// scenario sets up a TestSim and issues its opening commands.
type scenario struct {
	name  string
	build func(opts ...sim.SimOption) *sim.TestSim
	start func(ts *sim.TestSim)
}

var scenarios = []scenario{
	{name: "economy", build: buildEconomy, start: startEconomy},
	{name: "tower", build: buildTower, start: startTower},
	{name: "production", build: buildProduction, start: startProduction},
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		names = append(names, s.name)
	}
	return names
}

// selectScenarios resolves the --scenario flag.
func selectScenarios(name string) ([]scenario, error) {
	if name == "" || name == "all" {
		return scenarios, nil
	}
	for _, s := range scenarios {
		if s.name == name {
			return []scenario{s}, nil
		}
	}
	return nil, fmt.Errorf("unsupported scenario %q (supported: all, %s)", name, strings.Join(scenarioNames(), ", "))
}

func buildEconomy(opts ...sim.SimOption) *sim.TestSim {
	return sim.NewTestSim(append([]sim.SimOption{
		sim.WithBuilding("tc", sim.TownCenter, sim.LocalPlayer, 200, 200),
		sim.WithResource("wood", sim.Wood, 420, 200, 0),
		sim.WithResource("gold", sim.Gold, 200, 420, 0),
		sim.WithUnit("v1", sim.Villager, sim.LocalPlayer, 300, 260),
		sim.WithUnit("v2", sim.Villager, sim.LocalPlayer, 320, 280),
		sim.WithUnit("v3", sim.Villager, sim.LocalPlayer, 280, 300),
	}, opts...)...)
}

func startEconomy(ts *sim.TestSim) {
	w := ts.World
	w.IssueMoveOrEngage([]sim.EntityID{ts.ID("v1"), ts.ID("v2")}, 420, 200)
	w.IssueMoveOrEngage([]sim.EntityID{ts.ID("v3")}, 200, 420)
}

func buildTower(opts ...sim.SimOption) *sim.TestSim {
	return sim.NewTestSim(append([]sim.SimOption{
		sim.WithBuilding("tower", sim.Tower, 2, 560, 300),
		sim.WithUnit("s1", sim.Swordsman, sim.LocalPlayer, 200, 260),
		sim.WithUnit("s2", sim.Swordsman, sim.LocalPlayer, 200, 300),
		sim.WithUnit("s3", sim.Swordsman, sim.LocalPlayer, 200, 340),
		sim.WithUnit("a1", sim.Archer, sim.LocalPlayer, 160, 300),
	}, opts...)...)
}

func startTower(ts *sim.TestSim) {
	ids := []sim.EntityID{ts.ID("s1"), ts.ID("s2"), ts.ID("s3"), ts.ID("a1")}
	ts.World.IssueMoveOrEngage(ids, 560, 300)
}

func buildProduction(opts ...sim.SimOption) *sim.TestSim {
	return sim.NewTestSim(append([]sim.SimOption{
		sim.WithBuilding("tc", sim.TownCenter, sim.LocalPlayer, 200, 200),
		sim.WithBuilding("barracks", sim.Barracks, sim.LocalPlayer, 400, 200),
		sim.WithBuilding("house", sim.House, sim.LocalPlayer, 200, 400),
	}, opts...)...)
}

func startProduction(ts *sim.TestSim) {
	w := ts.World
	tc, barracks := ts.ID("tc"), ts.ID("barracks")
	_ = w.SetRallyPoint(barracks, 500, 400)
	for i := 0; i < 3; i++ {
		_ = w.TrainUnit(tc, sim.Villager)
	}
	for _, k := range []sim.UnitKind{sim.Swordsman, sim.Archer, sim.Knight, sim.Swordsman} {
		_ = w.TrainUnit(barracks, k)
	}
	// The producer check refuses this one.
	_ = w.TrainUnit(tc, sim.Knight)
}

type runStats struct {
	scenario string
	runID    string
	ticks    int
	elapsed  time.Duration

	ledgerStart sim.Resources
	ledgerEnd   sim.Resources
	popEnd      sim.Population

	localUnits   int
	hostileUnits int
	buildings    int

	deposits int
	trained  int
	hits     int
	kills    int
	rejected int
	noPath   int

	summary string
}

func (rs runStats) ledgerDelta() sim.Resources {
	return rs.ledgerEnd.Minus(rs.ledgerStart)
}

// runScenario plays one run of sc inside a span and collects its stats.
func runScenario(ctx context.Context, sc scenario, ticks int, log logging.Logger, metrics *observability.SimCollector) runStats {
	runID := uuid.NewString()
	ctx, span := observability.Tracer().Start(ctx, "scenario."+sc.name,
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("ticks", ticks),
		))
	defer span.End()

	ts := sc.build(sim.WithWorldOptions(
		sim.WithSessionID(runID),
		sim.WithLogger(log),
		sim.WithMetrics(metrics),
	))
	rs := runStats{
		scenario:    sc.name,
		runID:       runID,
		ticks:       ticks,
		ledgerStart: ts.World.Resources(),
	}

	began := time.Now()
	sc.start(ts)
	ts.RunTicks(ticks)
	rs.elapsed = time.Since(began)

	w := ts.World
	rs.ledgerEnd = w.Resources()
	rs.popEnd = w.Population()
	for _, u := range w.Units() {
		if u.Owner == sim.LocalPlayer {
			rs.localUnits++
		} else {
			rs.hostileUnits++
		}
	}
	rs.buildings = len(w.Buildings())

	sl := ts.SimLog
	rs.deposits = sl.CountCategory(sim.CatEconomy, "deposit")
	rs.trained = sl.CountCategory(sim.CatProduction, "trained")
	rs.hits = sl.CountCategory(sim.CatCombat, "hit")
	rs.kills = sl.CountCategory(sim.CatCombat, "killed")
	rs.rejected = sl.CountCategory(sim.CatCommand, "rejected")
	rs.noPath = sl.CountCategory(sim.CatMove, "no_path")
	rs.summary = sl.Summary(w)

	span.SetAttributes(
		attribute.Int("deposits", rs.deposits),
		attribute.Int("trained", rs.trained),
		attribute.Int("kills", rs.kills),
		attribute.Int("rejected", rs.rejected),
	)
	if rs.noPath > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d path requests failed", rs.noPath))
	}
	log.Info(ctx, "scenario finished",
		logging.String("scenario", sc.name),
		logging.String("run_id", runID),
		logging.Int("ticks", ticks))
	return rs
}

func printRun(out io.Writer, rs runStats, withSummary bool) {
	fmt.Fprintf(out, "--- %s run %s ---\n", rs.scenario, rs.runID)
	fmt.Fprintf(out, "ticks=%d sim_seconds=%.1f wall=%s\n", rs.ticks, float64(rs.ticks)/60, rs.elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "ledger_delta: %s\n", formatDelta(rs.ledgerDelta()))
	fmt.Fprintf(out, "population: %d/%d units: local=%d hostile=%d buildings=%d\n",
		rs.popEnd.Current, rs.popEnd.Max, rs.localUnits, rs.hostileUnits, rs.buildings)
	fmt.Fprintf(out, "events: deposits=%d trained=%d hits=%d kills=%d rejected=%d no_path=%d\n",
		rs.deposits, rs.trained, rs.hits, rs.kills, rs.rejected, rs.noPath)
	if withSummary {
		fmt.Fprint(out, rs.summary)
	}
	fmt.Fprintln(out)
}

// formatDelta prints signed non-zero changes, e.g. "wood=+40 gold=-100".
func formatDelta(d sim.Resources) string {
	var parts []string
	for _, k := range sim.ResourceKinds {
		if n := d.Get(k); n != 0 {
			parts = append(parts, fmt.Sprintf("%s=%+d", strings.ToLower(k.String()), n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

func printAggregate(out io.Writer, all []runStats) {
	type agg struct {
		runs     int
		deposits int
		trained  int
		kills    int
		delta    sim.Resources
	}
	byScenario := map[string]*agg{}
	for _, rs := range all {
		a, ok := byScenario[rs.scenario]
		if !ok {
			a = &agg{}
			byScenario[rs.scenario] = a
		}
		a.runs++
		a.deposits += rs.deposits
		a.trained += rs.trained
		a.kills += rs.kills
		a.delta = a.delta.Plus(rs.ledgerDelta())
	}
	names := make([]string, 0, len(byScenario))
	for n := range byScenario {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "=== Aggregate ===")
	for _, n := range names {
		a := byScenario[n]
		fmt.Fprintf(out, "  %-12s runs=%d avg_deposits=%.1f avg_trained=%.1f avg_kills=%.1f total_delta=%s\n",
			n, a.runs, avg(a.deposits, a.runs), avg(a.trained, a.runs), avg(a.kills, a.runs), formatDelta(a.delta))
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// printMetrics writes the registry in the Prometheus text format.
func printMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	fmt.Fprintln(out, "=== Metrics ===")
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	if runs <= 0 {
		return fmt.Errorf("--runs must be > 0")
	}
	if ticks <= 0 {
		return fmt.Errorf("--ticks must be > 0")
	}
	selected, err := selectScenarios(scenarioFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	log := logging.New(logging.Config{Level: logLevel, Output: cmd.ErrOrStderr()})

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled: traceFlag,
		Output:  cmd.ErrOrStderr(),
	}, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Warn(ctx, "tracer shutdown failed", logging.Err(err))
		}
	}()

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewSimCollector(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	fmt.Fprintf(out, "=== Headless Report ===\n")
	fmt.Fprintf(out, "scenario=%s runs=%d ticks=%d\n\n", scenarioFlag, runs, ticks)

	all := make([]runStats, 0, runs*len(selected))
	for _, sc := range selected {
		for i := 0; i < runs; i++ {
			rs := runScenario(ctx, sc, ticks, log, metrics)
			all = append(all, rs)
			printRun(out, rs, summaryFlag)
		}
	}
	printAggregate(out, all)

	if metricsFlag {
		fmt.Fprintln(out)
		return printMetrics(out, metrics.Gatherer())
	}
	return nil
}
