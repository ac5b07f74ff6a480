package sim

import (
	"fmt"
	"math"

	simerrors "github.com/Garsondee/realmforge/internal/errors"
	"github.com/Garsondee/realmforge/internal/logging"
)

// Command names used in logs and metrics.
const (
	cmdMoveOrEngage   = "move_or_engage"
	cmdPlaceBuilding  = "place_building"
	cmdPlaceWall      = "place_wall"
	cmdTrainUnit      = "train_unit"
	cmdCancelTraining = "cancel_training"
	cmdSetRally       = "set_rally"
)

// IssueMoveOrEngage orders the local units among ids toward (x, y). A
// resource node under the point is gathered, any other entity there is
// attacked, and empty ground is a plain move. It returns how many units
// received the order.
func (w *World) IssueMoveOrEngage(ids []EntityID, x, y float64) int {
	p := V(x, y)
	target := w.EntityAt(p)
	ordered := 0
	for _, id := range ids {
		u, ok := w.Unit(id)
		if !ok || !u.Alive() || u.Owner != LocalPlayer {
			continue
		}
		switch t := target.(type) {
		case nil:
			w.orderMove(u, p)
		case *ResourceNode:
			w.orderGather(u, t)
		default:
			w.orderAttack(u, t)
		}
		ordered++
	}
	verb := "move"
	switch target.(type) {
	case nil:
	case *ResourceNode:
		verb = "gather"
	default:
		verb = "attack"
	}
	w.event(nil, CatCommand, cmdMoveOrEngage, fmt.Sprintf("%s (%.0f,%.0f) units=%d", verb, x, y, ordered), float64(ordered))
	return ordered
}

// PlaceBuilding charges the cost of kind and places it centred on (x, y).
// Walls placed this way are a single horizontal segment.
func (w *World) PlaceBuilding(kind BuildingKind, x, y float64) (EntityID, error) {
	rule, ok := w.rules.Building(kind)
	if !ok {
		return 0, w.reject(cmdPlaceBuilding, errUnknownBuilding(kind))
	}
	if rule.IsWall() {
		half := rule.SegmentLength / 2
		return w.PlaceWall(x-half, y, x+half, y)
	}
	pos := V(x, y)
	if !w.rules.World.Bounds().Contains(pos) {
		return 0, w.reject(cmdPlaceBuilding, errOutsideWorld(pos))
	}
	if err := w.charge(rule.Cost); err != nil {
		return 0, w.reject(cmdPlaceBuilding, err.WithMeta("kind", string(kind)))
	}
	b := w.insertBuilding(kind, rule, LocalPlayer, pos)
	w.event(b, CatCommand, cmdPlaceBuilding, fmt.Sprintf("%s cost %s", kind, rule.Cost), 0)
	return b.ID, nil
}

// PlaceWall charges for and places one wall segment from (x0, y0) to
// (x1, y1). The cost is the per-segment cost times the number of
// segment lengths needed to span the drag, at least one.
func (w *World) PlaceWall(x0, y0, x1, y1 float64) (EntityID, error) {
	kind, rule, ok := w.wallRule()
	if !ok {
		return 0, w.reject(cmdPlaceWall, errUnknownBuilding(Wall))
	}
	from, to := V(x0, y0), V(x1, y1)
	bounds := w.rules.World.Bounds()
	if !bounds.Contains(from) {
		return 0, w.reject(cmdPlaceWall, errOutsideWorld(from))
	}
	if !bounds.Contains(to) {
		return 0, w.reject(cmdPlaceWall, errOutsideWorld(to))
	}
	segments := WallSegments(from.Dist(to), rule.SegmentLength)
	cost := rule.Cost.Times(segments)
	if err := w.charge(cost); err != nil {
		return 0, w.reject(cmdPlaceWall, err.WithMeta("segments", segments))
	}
	b, err := w.AddWall(LocalPlayer, from, to)
	if err != nil {
		w.resources = w.resources.Plus(cost)
		return 0, err
	}
	w.event(b, CatCommand, cmdPlaceWall, fmt.Sprintf("%s segments=%d cost %s", kind, segments, cost), float64(segments))
	return b.ID, nil
}

// WallSegments is the number of segment lengths needed to cover length.
func WallSegments(length, segment float64) int {
	if segment <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(length/segment-1e-9)))
}

// TrainUnit queues a unit at a producing building. Cost and one
// population slot are taken immediately.
func (w *World) TrainUnit(id EntityID, kind UnitKind) error {
	b, err := w.ownBuilding(id)
	if err != nil {
		return w.reject(cmdTrainUnit, err)
	}
	urule, ok := w.rules.Unit(kind)
	if !ok {
		return w.reject(cmdTrainUnit, errUnknownUnit(kind))
	}
	brule, _ := w.rules.Building(b.BuildingKind)
	if !brule.CanTrain(kind) {
		return w.reject(cmdTrainUnit, simerrors.FailedPreconditionf("%s cannot train %s", b.BuildingKind, kind).
			WithMeta("building", id.String()))
	}
	if w.pop.Headroom() <= 0 {
		return w.reject(cmdTrainUnit, simerrors.ResourceExhaustedf("population cap reached (%d/%d)", w.pop.Current, w.pop.Max).
			WithMeta("population", w.pop.Current).
			WithMeta("population_max", w.pop.Max))
	}
	if err := w.charge(urule.Cost); err != nil {
		return w.reject(cmdTrainUnit, err.WithMeta("kind", string(kind)))
	}
	w.pop.Current++
	b.Queue = append(b.Queue, kind)
	w.event(b, CatCommand, cmdTrainUnit, fmt.Sprintf("%s queued=%d", kind, len(b.Queue)), float64(len(b.Queue)))
	return nil
}

// CancelTraining removes the queue entry at index and refunds its cost
// and population slot in full. Cancelling the head restarts the timer
// for the next entry.
func (w *World) CancelTraining(id EntityID, index int) error {
	b, err := w.ownBuilding(id)
	if err != nil {
		return w.reject(cmdCancelTraining, err)
	}
	if index < 0 || index >= len(b.Queue) {
		return w.reject(cmdCancelTraining, simerrors.OutOfRangef("queue index %d out of range (len %d)", index, len(b.Queue)))
	}
	kind := b.Queue[index]
	b.Queue = append(b.Queue[:index:index], b.Queue[index+1:]...)
	if index == 0 {
		b.ProductionTimer = 0
	}
	if rule, ok := w.rules.Unit(kind); ok {
		w.resources = w.resources.Plus(rule.Cost)
	}
	w.pop.Current = max(0, w.pop.Current-1)
	w.event(b, CatCommand, cmdCancelTraining, fmt.Sprintf("%s at %d", kind, index), float64(index))
	return nil
}

// SetRallyPoint makes units trained at the building walk to (x, y).
func (w *World) SetRallyPoint(id EntityID, x, y float64) error {
	b, err := w.ownBuilding(id)
	if err != nil {
		return w.reject(cmdSetRally, err)
	}
	if rule, _ := w.rules.Building(b.BuildingKind); len(rule.Trains) == 0 {
		return w.reject(cmdSetRally, simerrors.FailedPreconditionf("%s does not train units", b.BuildingKind))
	}
	p := V(x, y)
	if !w.rules.World.Bounds().Contains(p) {
		return w.reject(cmdSetRally, errOutsideWorld(p))
	}
	b.Rally = p
	b.HasRally = true
	w.event(b, CatCommand, cmdSetRally, fmt.Sprintf("(%.0f,%.0f)", x, y), 0)
	return nil
}

// ownBuilding resolves a living building of the local player.
func (w *World) ownBuilding(id EntityID) (*Building, *simerrors.Error) {
	b, ok := w.Building(id)
	if !ok || !b.Alive() {
		return nil, errBuildingNotFound(id)
	}
	if b.Owner != LocalPlayer {
		return nil, simerrors.FailedPreconditionf("building %s is not owned by the local player", id)
	}
	return b, nil
}

// charge deducts cost from the ledger when every resource covers it and
// leaves the ledger untouched otherwise.
func (w *World) charge(cost Resources) *simerrors.Error {
	if !w.resources.Covers(cost) {
		return simerrors.ResourceExhaustedf("cannot afford %s", cost).
			WithMeta("missing", w.resources.Shortfall(cost).String())
	}
	w.resources = w.resources.Minus(cost)
	return nil
}

// reject logs and counts a refused command and returns its error.
func (w *World) reject(command string, err *simerrors.Error) error {
	w.log.Debug(w.ctx, "command rejected",
		logging.String("command", command),
		logging.String("code", err.Code.String()),
		logging.Err(err))
	w.metrics.IncRejected(command, err.Code.String())
	w.event(nil, CatCommand, "rejected", fmt.Sprintf("%s: %s", command, err.Message), 0)
	return err
}

func errBuildingNotFound(id EntityID) *simerrors.Error {
	return simerrors.NotFoundf("building %s not found", id).WithMeta("id", id.String())
}

func errUnknownUnit(kind UnitKind) *simerrors.Error {
	return simerrors.InvalidArgumentf("unknown unit kind %q", kind)
}

func errUnknownBuilding(kind BuildingKind) *simerrors.Error {
	return simerrors.InvalidArgumentf("unknown building kind %q", kind)
}

func errUnknownResource(kind ResourceKind) *simerrors.Error {
	return simerrors.InvalidArgumentf("unknown resource kind %s", kind)
}

func errOutsideWorld(p Vec2) *simerrors.Error {
	return simerrors.FailedPreconditionf("(%.0f,%.0f) is outside the world", p.X, p.Y)
}
