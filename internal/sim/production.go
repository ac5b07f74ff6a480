package sim

import (
	"fmt"
	"math"
)

// QueueStatus describes a building's training queue.
type QueueStatus struct {
	Building  EntityID
	Items     []UnitKind
	Remaining float64 // seconds until the head item completes
	Progress  float64 // fraction of the head item done, 0..1
}

func (w *World) updateBuilding(b *Building, dt float64) {
	rule, ok := w.rules.Building(b.BuildingKind)
	if !ok {
		return
	}
	if rule.Attack > 0 {
		w.updateTower(b, rule, dt)
	}
	w.updateProduction(b, dt)
}

// updateProduction advances the head of the queue. Cost and population
// were reserved when the order was accepted, so a completed unit always
// spawns.
func (w *World) updateProduction(b *Building, dt float64) {
	if len(b.Queue) == 0 {
		return
	}
	head := b.Queue[0]
	rule, ok := w.rules.Unit(head)
	if !ok {
		b.Queue = b.Queue[1:]
		b.ProductionTimer = 0
		return
	}
	b.ProductionTimer += dt
	if b.ProductionTimer < rule.TrainTime {
		return
	}
	b.ProductionTimer = 0
	b.Queue = b.Queue[1:]

	u, err := w.newUnit(head, b.Owner, w.spawnPoint(b, rule.Size))
	if err != nil {
		return
	}
	w.arena.Insert(u)
	w.metrics.IncTrained()
	w.logSpawn(u)
	w.event(b, CatProduction, "trained", fmt.Sprintf("%s → %s", head, Label(u)), 0)
	if b.HasRally {
		w.orderMove(u, b.Rally)
	}
}

// spawnPoint places a new unit just outside the south-east corner of the
// building, clamped to the world.
func (w *World) spawnPoint(b *Building, unitSize float64) Vec2 {
	off := b.Size/2 + unitSize/2 + w.rules.Movement.SpawnMargin
	p := b.Pos.Add(Vec2{off, off})
	half := unitSize / 2
	wr := w.rules.World
	return Vec2{
		X: math.Min(math.Max(p.X, half), wr.Width()-half),
		Y: math.Min(math.Max(p.Y, half), wr.Height()-half),
	}
}

// QueueStatus reports the training queue of a building.
func (w *World) QueueStatus(id EntityID) (QueueStatus, error) {
	b, ok := w.Building(id)
	if !ok {
		return QueueStatus{}, errBuildingNotFound(id)
	}
	st := QueueStatus{Building: id, Items: append([]UnitKind(nil), b.Queue...)}
	if len(b.Queue) > 0 {
		if rule, ok := w.rules.Unit(b.Queue[0]); ok {
			st.Remaining = math.Max(0, rule.TrainTime-b.ProductionTimer)
			st.Progress = math.Min(1, b.ProductionTimer/rule.TrainTime)
		}
	}
	return st, nil
}
