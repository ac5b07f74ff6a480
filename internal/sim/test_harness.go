package sim

import (
	"fmt"
	"math"
)

// TestSim is a headless harness around a World used by tests and the
// headless report. Entities are registered under names so scenarios can
// refer to them.
type TestSim struct {
	World  *World
	Rules  *Rules
	SimLog *SimLog
	Tick   int
	Dt     float64

	cols, rows int
	faction    FactionID
	ledger     *Resources
	popBase    *int
	worldOpts  []Option
	named      map[string]EntityID
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra    simOptionKind = iota // rules, map size, ledger, verbose; applied first
	simOptBuilding                      // buildings and walls; applied once the world exists
	simOptEntity                        // units and resource nodes; applied after buildings
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithRules replaces the default rules.
func WithRules(r *Rules) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Rules = r
	}}
}

// WithMapSize sets the grid dimensions in cells.
func WithMapSize(cols, rows int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cols = cols
		ts.rows = rows
	}}
}

// WithFaction sets the local player's faction.
func WithFaction(f FactionID) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.faction = f
	}}
}

// WithLedger sets the starting resources.
func WithLedger(r Resources) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.ledger = &r
	}}
}

// WithPopulation sets the population cap granted without buildings.
func WithPopulation(base int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.popBase = &base
	}}
}

// WithVerbose enables per-tick movement entries in the SimLog.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.SimLog = NewSimLog(v)
	}}
}

// WithWorldOptions passes extra options such as a logger or metrics
// collector to NewWorld.
func WithWorldOptions(opts ...Option) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.worldOpts = append(ts.worldOpts, opts...)
	}}
}

// WithBuilding places a building free of charge.
func WithBuilding(name string, kind BuildingKind, owner PlayerID, x, y float64) SimOption {
	return SimOption{simOptBuilding, func(ts *TestSim) {
		b, err := ts.World.AddBuilding(kind, owner, V(x, y))
		ts.register(name, b, err)
	}}
}

// WithWall places a wall segment free of charge.
func WithWall(name string, owner PlayerID, x0, y0, x1, y1 float64) SimOption {
	return SimOption{simOptBuilding, func(ts *TestSim) {
		b, err := ts.World.AddWall(owner, V(x0, y0), V(x1, y1))
		ts.register(name, b, err)
	}}
}

// WithUnit spawns a unit.
func WithUnit(name string, kind UnitKind, owner PlayerID, x, y float64) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		u, err := ts.World.SpawnUnit(kind, owner, V(x, y))
		ts.register(name, u, err)
	}}
}

// WithResource places a resource node. amount <= 0 uses the rules default.
func WithResource(name string, kind ResourceKind, x, y float64, amount int) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		n, err := ts.World.AddResourceNode(kind, V(x, y), amount)
		ts.register(name, n, err)
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (rules, map size, ledger, verbose)
//  2. World
//  3. Buildings
//  4. Units and resource nodes
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		Rules:  DefaultRules(),
		SimLog: NewSimLog(false),
		named:  make(map[string]EntityID),
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	if ts.cols > 0 && ts.rows > 0 {
		ts.Rules = ts.Rules.WithWorldSize(ts.cols, ts.rows)
	}
	ts.Dt = ts.Rules.Tick.Step()

	wopts := []Option{WithSimLog(ts.SimLog), WithSessionID("test")}
	if ts.faction != "" {
		wopts = append(wopts, WithPlayerFaction(LocalPlayer, ts.faction))
	}
	if ts.ledger != nil {
		wopts = append(wopts, WithStartingResources(*ts.ledger))
	}
	if ts.popBase != nil {
		wopts = append(wopts, WithPopulationBase(*ts.popBase))
	}
	ts.World = NewWorld(ts.Rules, append(wopts, ts.worldOpts...)...)

	for _, pass := range []simOptionKind{simOptBuilding, simOptEntity} {
		for _, o := range opts {
			if o.kind == pass {
				o.fn(ts)
			}
		}
	}
	return ts
}

func (ts *TestSim) register(name string, e Entity, err error) {
	if err != nil {
		panic(fmt.Sprintf("test sim: %s: %v", name, err))
	}
	if name != "" {
		ts.named[name] = e.Core().ID
	}
}

// ID returns the ID registered under name, or 0.
func (ts *TestSim) ID(name string) EntityID { return ts.named[name] }

// Unit resolves a named unit; nil once it has been removed.
func (ts *TestSim) Unit(name string) *Unit {
	u, _ := ts.World.Unit(ts.named[name])
	return u
}

// Building resolves a named building; nil once it has been removed.
func (ts *TestSim) Building(name string) *Building {
	b, _ := ts.World.Building(ts.named[name])
	return b
}

// Node resolves a named resource node; nil once it has been removed.
func (ts *TestSim) Node(name string) *ResourceNode {
	n, _ := ts.World.ResourceNode(ts.named[name])
	return n
}

// RunTicks advances the simulation n fixed steps.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.Tick++
		ts.World.Tick(ts.Dt)
	}
}

// RunSeconds advances by the number of steps covering s seconds.
func (ts *TestSim) RunSeconds(s float64) {
	ts.RunTicks(int(math.Ceil(s/ts.Dt - 1e-9)))
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.Tick++
		ts.World.Tick(ts.Dt)
		if predicate(ts) {
			return ts.Tick
		}
	}
	return -1
}
