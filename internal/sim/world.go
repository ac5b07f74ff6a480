package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Garsondee/realmforge/internal/logging"
	"github.com/Garsondee/realmforge/internal/observability"
)

// World owns every entity, the local player's ledgers and the selection.
// It is advanced by Tick and mutated by the command methods; it is not
// safe for concurrent use.
type World struct {
	rules     *Rules
	arena     *Arena
	resources Resources
	pop       Population
	selection []EntityID
	factions  map[PlayerID]FactionID

	grid      *NavGrid
	gridDirty bool
	tick      int
	sessionID string

	ctx     context.Context
	log     logging.Logger
	metrics *observability.SimCollector
	simLog  *SimLog
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l logging.Logger) Option {
	return func(w *World) { w.log = l }
}

// WithMetrics attaches a Prometheus collector.
func WithMetrics(c *observability.SimCollector) Option {
	return func(w *World) { w.metrics = c }
}

// WithSimLog records world events into sl.
func WithSimLog(sl *SimLog) Option {
	return func(w *World) { w.simLog = sl }
}

// WithPlayerFaction assigns a faction to a player. Unit stats for that player
// include the faction's bonuses.
func WithPlayerFaction(p PlayerID, f FactionID) Option {
	return func(w *World) { w.factions[p] = f }
}

// WithSessionID overrides the generated session identifier.
func WithSessionID(id string) Option {
	return func(w *World) { w.sessionID = id }
}

// WithStartingResources replaces the starting ledger from the rules.
func WithStartingResources(r Resources) Option {
	return func(w *World) { w.resources = r }
}

// WithPopulationBase replaces the population cap granted without buildings.
func WithPopulationBase(n int) Option {
	return func(w *World) { w.pop.Max = n }
}

// NewWorld creates an empty world. A nil rules pointer uses DefaultRules.
func NewWorld(rules *Rules, opts ...Option) *World {
	if rules == nil {
		rules = DefaultRules()
	}
	w := &World{
		rules:     rules,
		arena:     NewArena(),
		resources: rules.Economy.Starting,
		pop:       Population{Max: rules.Economy.PopulationBase},
		factions:  make(map[PlayerID]FactionID),
		sessionID: uuid.NewString(),
		ctx:       context.Background(),
		log:       logging.Noop(),
	}
	for _, o := range opts {
		o(w)
	}
	w.log = w.log.With(logging.String("session", w.sessionID))
	w.rebuildGrid()
	return w
}

func (w *World) Rules() *Rules          { return w.rules }
func (w *World) SessionID() string      { return w.sessionID }
func (w *World) TickCount() int         { return w.tick }
func (w *World) SimLog() *SimLog        { return w.simLog }
func (w *World) Resources() Resources   { return w.resources }
func (w *World) Population() Population { return w.pop }

// Grid returns the obstacle grid for the current building set.
func (w *World) Grid() *NavGrid { return w.navGrid() }

// Faction returns the faction assigned to p, or "" when none is.
func (w *World) Faction(p PlayerID) FactionID { return w.factions[p] }

// Tick advances the world by dt seconds: rebuild the obstacle grid,
// update every entity that existed when the tick began in insertion
// order, then sweep depleted and dead entities.
func (w *World) Tick(dt float64) {
	start := time.Now()
	w.tick++
	w.rebuildGrid()

	w.arena.Each(func(e Entity) {
		b := e.Core()
		if !b.Alive() {
			w.remove(e, "destroyed")
			return
		}
		if b.HitFlash > 0 {
			b.HitFlash = math.Max(0, b.HitFlash-dt)
		}
		switch v := e.(type) {
		case *Unit:
			w.updateUnit(v, dt)
		case *Building:
			w.updateBuilding(v, dt)
		case *Projectile:
			w.updateProjectile(v, dt)
		case *ResourceNode:
		}
	})

	w.sweep()
	w.arena.Compact()
	w.metrics.SetLiveEntities(w.arena.Len())
	w.metrics.ObserveTick(time.Since(start))
}

func (w *World) sweep() {
	w.arena.Each(func(e Entity) {
		if n, ok := e.(*ResourceNode); ok {
			if n.Amount <= 0 {
				w.remove(e, "depleted")
			}
			return
		}
		if !e.Core().Alive() {
			w.remove(e, "destroyed")
		}
	})
}

// remove takes e out of the world and releases whatever it held in the
// ledgers and the selection.
func (w *World) remove(e Entity, reason string) {
	b := e.Core()
	if !w.arena.Remove(b.ID) {
		return
	}
	w.deselect(b.ID)
	b.Selected = false

	switch v := e.(type) {
	case *Unit:
		if v.Owner == LocalPlayer {
			w.pop.Current = max(0, w.pop.Current-1)
		}
		w.log.Info(w.ctx, "unit removed",
			logging.String("unit", Label(v)),
			logging.String("kind", string(v.UnitKind)),
			logging.String("reason", reason))
	case *Building:
		w.gridDirty = true
		if v.Owner == LocalPlayer {
			rule, _ := w.rules.Building(v.BuildingKind)
			w.pop.Max = max(0, w.pop.Max-rule.Population)
			w.pop.Current = max(0, w.pop.Current-len(v.Queue))
		}
		w.log.Info(w.ctx, "building removed",
			logging.String("building", Label(v)),
			logging.String("kind", string(v.BuildingKind)),
			logging.String("reason", reason))
	}
	if e.Kind() != KindProjectile {
		w.event(e, CatState, "removed", reason, 0)
	}
}

func (w *World) rebuildGrid() {
	var buildings []*Building
	w.arena.Each(func(e Entity) {
		if b, ok := e.(*Building); ok {
			buildings = append(buildings, b)
		}
	})
	wr := w.rules.World
	w.grid = BuildNavGrid(wr.Cols, wr.Rows, wr.CellSize, buildings)
	w.gridDirty = false
}

func (w *World) navGrid() *NavGrid {
	if w.gridDirty || w.grid == nil {
		w.rebuildGrid()
	}
	return w.grid
}

// findPath runs the pathfinder against the current grid and records its
// cost.
func (w *World) findPath(from, to Vec2) []Vec2 {
	start := time.Now()
	path := FindPath(from, to, w.navGrid())
	w.metrics.ObservePath(time.Since(start), len(path) > 0)
	return path
}

// FindEntity resolves an ID to a live entity.
func (w *World) FindEntity(id EntityID) (Entity, bool) {
	return w.arena.Get(id)
}

// liveEntity resolves an ID to an entity that still has health.
func (w *World) liveEntity(id EntityID) (Entity, bool) {
	e, ok := w.arena.Get(id)
	if !ok || !e.Core().Alive() {
		return nil, false
	}
	return e, true
}

func (w *World) Unit(id EntityID) (*Unit, bool) {
	e, ok := w.arena.Get(id)
	if !ok {
		return nil, false
	}
	u, ok := e.(*Unit)
	return u, ok
}

func (w *World) Building(id EntityID) (*Building, bool) {
	e, ok := w.arena.Get(id)
	if !ok {
		return nil, false
	}
	b, ok := e.(*Building)
	return b, ok
}

func (w *World) ResourceNode(id EntityID) (*ResourceNode, bool) {
	e, ok := w.arena.Get(id)
	if !ok {
		return nil, false
	}
	n, ok := e.(*ResourceNode)
	return n, ok
}

// Entities returns every live entity in insertion order. The slice is
// fresh; the entities are shared and must be treated as read-only.
func (w *World) Entities() []Entity {
	out := make([]Entity, 0, w.arena.Len())
	w.arena.Each(func(e Entity) { out = append(out, e) })
	return out
}

// Units returns every live unit in insertion order.
func (w *World) Units() []*Unit {
	var out []*Unit
	w.arena.Each(func(e Entity) {
		if u, ok := e.(*Unit); ok {
			out = append(out, u)
		}
	})
	return out
}

// Buildings returns every live building in insertion order.
func (w *World) Buildings() []*Building {
	var out []*Building
	w.arena.Each(func(e Entity) {
		if b, ok := e.(*Building); ok {
			out = append(out, b)
		}
	})
	return out
}

// NearestDeposit returns the closest living deposit building of owner,
// or nil. The first one found wins ties.
func (w *World) NearestDeposit(pos Vec2, owner PlayerID) *Building {
	var best *Building
	bestD := math.Inf(1)
	w.arena.Each(func(e Entity) {
		b, ok := e.(*Building)
		if !ok || !b.Alive() || b.Owner != owner {
			return
		}
		if rule, _ := w.rules.Building(b.BuildingKind); !rule.Deposit {
			return
		}
		if d := pos.DistSq(b.Pos); d < bestD {
			best, bestD = b, d
		}
	})
	return best
}

// SpawnUnit places a unit of kind at pos without charging its cost. Local
// units count toward population.
func (w *World) SpawnUnit(kind UnitKind, owner PlayerID, pos Vec2) (*Unit, error) {
	u, err := w.newUnit(kind, owner, pos)
	if err != nil {
		return nil, err
	}
	w.arena.Insert(u)
	if owner == LocalPlayer {
		w.pop.Current++
	}
	w.logSpawn(u)
	return u, nil
}

func (w *World) newUnit(kind UnitKind, owner PlayerID, pos Vec2) (*Unit, error) {
	stats, ok := w.rules.UnitStats(kind, w.factions[owner])
	if !ok {
		return nil, errUnknownUnit(kind)
	}
	return &Unit{
		Base: Base{
			Owner:     owner,
			Pos:       pos,
			Size:      stats.Size,
			Health:    stats.MaxHealth,
			MaxHealth: stats.MaxHealth,
		},
		UnitKind: kind,
		Stats:    stats,
	}, nil
}

func (w *World) logSpawn(u *Unit) {
	w.log.Info(w.ctx, "unit spawned",
		logging.String("unit", Label(u)),
		logging.String("kind", string(u.UnitKind)),
		logging.Int("owner", int(u.Owner)))
	w.event(u, CatProduction, "spawned", fmt.Sprintf("%s at (%.0f,%.0f)", u.UnitKind, u.Pos.X, u.Pos.Y), 0)
}

// AddBuilding places a building without charging its cost. Local
// buildings raise the population cap by their bonus.
func (w *World) AddBuilding(kind BuildingKind, owner PlayerID, pos Vec2) (*Building, error) {
	rule, ok := w.rules.Building(kind)
	if !ok {
		return nil, errUnknownBuilding(kind)
	}
	if rule.IsWall() {
		half := Vec2{rule.SegmentLength / 2, 0}
		return w.AddWall(owner, pos.Sub(half), pos.Add(half))
	}
	return w.insertBuilding(kind, rule, owner, pos), nil
}

// AddWall places a wall segment between two points without charging its
// cost. Segments shorter than one wall length are extended to it.
func (w *World) AddWall(owner PlayerID, from, to Vec2) (*Building, error) {
	kind, rule, ok := w.wallRule()
	if !ok {
		return nil, errUnknownBuilding("wall")
	}
	b := w.insertBuilding(kind, rule, owner, from.Add(to).Scale(0.5))
	b.Length = math.Max(from.Dist(to), rule.SegmentLength)
	if from.Dist(to) > 1e-9 {
		d := to.Sub(from)
		b.Angle = math.Atan2(d.Y, d.X)
	}
	return b, nil
}

func (w *World) wallRule() (BuildingKind, BuildingRule, bool) {
	if rule, ok := w.rules.Building(Wall); ok && rule.IsWall() {
		return Wall, rule, true
	}
	for _, k := range w.rules.BuildingKinds() {
		if rule := w.rules.Buildings[k]; rule.IsWall() {
			return k, rule, true
		}
	}
	return "", BuildingRule{}, false
}

func (w *World) insertBuilding(kind BuildingKind, rule BuildingRule, owner PlayerID, pos Vec2) *Building {
	b := &Building{
		Base: Base{
			Owner:     owner,
			Pos:       pos,
			Size:      rule.Size,
			Health:    rule.MaxHealth,
			MaxHealth: rule.MaxHealth,
		},
		BuildingKind: kind,
	}
	w.arena.Insert(b)
	w.gridDirty = true
	if owner == LocalPlayer {
		w.pop.Max += rule.Population
	}
	w.log.Info(w.ctx, "building placed",
		logging.String("building", Label(b)),
		logging.String("kind", string(kind)),
		logging.Int("owner", int(owner)))
	w.event(b, CatProduction, "building_placed", string(kind), 0)
	return b
}

// AddResourceNode places a node. A non-positive amount uses the rules
// default for the kind.
func (w *World) AddResourceNode(kind ResourceKind, pos Vec2, amount int) (*ResourceNode, error) {
	rule, ok := w.rules.Resource(kind)
	if !ok {
		return nil, errUnknownResource(kind)
	}
	if amount <= 0 {
		amount = rule.Amount
	}
	n := &ResourceNode{
		Base: Base{
			Owner:     Neutral,
			Pos:       pos,
			Size:      rule.Size,
			Health:    1,
			MaxHealth: 1,
		},
		Resource: kind,
		Amount:   amount,
	}
	w.arena.Insert(n)
	return n, nil
}

func (w *World) event(e Entity, category, key, value string, num float64) {
	if w.simLog == nil {
		return
	}
	owner := Neutral
	if e != nil {
		owner = e.Core().Owner
	}
	w.simLog.Add(w.tick, Label(e), owner, category, key, value, num)
}
