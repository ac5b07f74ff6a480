package sim

import "fmt"

// updateUnit runs one tick of the behaviour state machine.
func (w *World) updateUnit(u *Unit, dt float64) {
	if u.AttackTimer > 0 {
		u.AttackTimer -= dt
	}
	if u.State == StateAttacking {
		w.updateAttack(u, dt)
		return
	}
	if len(u.Path) > 0 || u.HasPoint {
		w.moveUnit(u, dt)
	}
	switch u.State {
	case StateGathering:
		w.updateGather(u, dt)
	case StateReturning:
		w.updateReturn(u)
	}
}

func (w *World) setState(u *Unit, s UnitState) {
	if u.State == s {
		return
	}
	w.event(u, CatState, "transition", fmt.Sprintf("%s → %s", u.State, s), 0)
	u.State = s
}

// idle clears every order field together so no stale target survives.
func (w *World) idle(u *Unit) {
	u.Path = nil
	u.HasPoint = false
	u.Target = 0
	w.setState(u, StateIdle)
}

// route replaces the unit's path with a fresh one to dest. When the unit
// already stands in the destination cell it walks straight to dest. It
// reports false when no path exists.
func (w *World) route(u *Unit, dest Vec2) bool {
	u.Path = nil
	u.HasPoint = false
	raw := w.findPath(u.Pos, dest)
	if len(raw) == 0 {
		w.event(u, CatMove, "no_path", fmt.Sprintf("(%.0f,%.0f)", dest.X, dest.Y), 0)
		return false
	}
	u.Path = PruneStart(raw, u.Pos, w.rules.World.CellSize)
	if len(u.Path) == 0 {
		u.TargetPoint = dest
		u.HasPoint = true
	}
	return true
}

// orderMove sends the unit to dest with no interaction target.
func (w *World) orderMove(u *Unit, dest Vec2) {
	u.Target = 0
	u.GatherTimer = 0
	if !w.route(u, dest) {
		w.idle(u)
		return
	}
	w.setState(u, StateMoving)
}

// orderGather sends a gatherer to node. Units that cannot carry anything
// just walk there.
func (w *World) orderGather(u *Unit, node *ResourceNode) {
	if u.Capacity() <= 0 {
		w.orderMove(u, node.Pos)
		return
	}
	u.Target = node.ID
	u.LastNode = node.ID
	u.GatherTimer = 0
	if !w.route(u, node.Pos) {
		w.idle(u)
		return
	}
	w.setState(u, StateMoving)
}

// orderAttack engages target. The path computed here is followed until it
// runs out; after that the unit chases in a straight line.
func (w *World) orderAttack(u *Unit, target Entity) {
	if target.Core().ID == u.ID {
		w.orderMove(u, target.Core().Pos)
		return
	}
	u.Target = target.Core().ID
	u.GatherTimer = 0
	if !w.route(u, target.Core().Pos) {
		w.idle(u)
		return
	}
	u.HasPoint = false
	w.setState(u, StateAttacking)
}

// moveUnit advances along the waypoint queue, or toward the target point
// when the queue is empty.
func (w *World) moveUnit(u *Unit, dt float64) {
	dest := u.TargetPoint
	if len(u.Path) > 0 {
		dest = u.Path[0]
	}
	if u.Pos.Dist(dest) <= w.rules.Movement.ArrivalThreshold {
		u.Pos = dest
		if len(u.Path) > 0 {
			u.Path = u.Path[1:]
		}
		if len(u.Path) == 0 {
			u.HasPoint = false
			w.arrive(u)
		}
		return
	}
	u.Pos, _ = u.Pos.MoveToward(dest, u.Stats.Speed*dt)
	w.simLog.AddVerbose(w.tick, Label(u), u.Owner, CatMove, "position",
		fmt.Sprintf("(%.1f,%.1f)", u.Pos.X, u.Pos.Y), 0)
}

// arrive handles the end of a route. Returning units are left alone; they
// deal with the deposit building themselves.
func (w *World) arrive(u *Unit) {
	if u.State != StateMoving {
		return
	}
	if node, ok := w.ResourceNode(u.Target); ok && node.Amount > 0 {
		u.GatherTimer = 0
		w.setState(u, StateGathering)
		return
	}
	w.idle(u)
}

func (w *World) updateGather(u *Unit, dt float64) {
	node, ok := w.ResourceNode(u.Target)
	if !ok || node.Amount <= 0 {
		w.event(u, CatEconomy, "target_lost", "node gone or depleted", 0)
		w.idle(u)
		return
	}
	u.GatherTimer += dt
	if u.GatherTimer < w.rules.Gathering.Interval {
		return
	}
	u.GatherTimer = 0

	// A load of another kind is dropped when switching nodes.
	if u.CarriedKind != node.Resource {
		u.Carried = 0
		u.CarriedKind = node.Resource
	}
	if u.Carried < u.Capacity() {
		got := node.Harvest(min(w.rules.Gathering.Amount, u.Capacity()-u.Carried))
		u.Carried += got
		u.LastNode = node.ID
		w.event(u, CatEconomy, "harvest", fmt.Sprintf("%s %d/%d", node.Resource, u.Carried, u.Capacity()), float64(got))
	}
	if u.Carried >= u.Capacity() {
		w.startReturn(u)
	}
}

func (w *World) startReturn(u *Unit) {
	u.Target = 0
	u.Path = nil
	u.HasPoint = false
	depot := w.NearestDeposit(u.Pos, u.Owner)
	if depot == nil {
		w.event(u, CatEconomy, "no_deposit", "", 0)
		w.idle(u)
		return
	}
	u.Target = depot.ID
	w.setState(u, StateReturning)
	w.approachDeposit(u, depot)
}

// approachDeposit heads for the closest point of the depot's footprint:
// directly when already next to it, otherwise along a path.
func (w *World) approachDeposit(u *Unit, depot *Building) {
	goal := depot.Footprint().ClosestPoint(u.Pos)
	if u.Pos.Dist(goal) <= w.rules.World.CellSize {
		u.Path = nil
		u.TargetPoint = goal
		u.HasPoint = true
		return
	}
	if !w.route(u, goal) {
		w.idle(u)
	}
}

func (w *World) updateReturn(u *Unit) {
	depot, ok := w.Building(u.Target)
	if !ok || !depot.Alive() {
		depot = w.NearestDeposit(u.Pos, u.Owner)
		if depot == nil {
			w.event(u, CatEconomy, "no_deposit", "", 0)
			w.idle(u)
			return
		}
		u.Target = depot.ID
		u.Path = nil
		u.HasPoint = false
	}
	if u.Bounds().Expand(w.rules.Movement.DepositBuffer).Overlaps(depot.Footprint()) {
		w.deposit(u)
		return
	}
	if len(u.Path) == 0 && !u.HasPoint {
		w.approachDeposit(u, depot)
	}
}

// deposit credits the carried load and sends the unit back to its last
// node while it still has something left.
func (w *World) deposit(u *Unit) {
	if u.Carried > 0 && u.CarriedKind != ResourceNone {
		if u.Owner == LocalPlayer {
			w.resources = w.resources.Add(u.CarriedKind, u.Carried)
		}
		w.metrics.AddDeposited(u.CarriedKind.String(), u.Carried)
		w.event(u, CatEconomy, "deposit", fmt.Sprintf("%d %s", u.Carried, u.CarriedKind), float64(u.Carried))
	}
	u.Carried = 0
	u.CarriedKind = ResourceNone

	if node, ok := w.ResourceNode(u.LastNode); ok && node.Amount > 0 {
		w.orderGather(u, node)
		return
	}
	u.LastNode = 0
	w.idle(u)
}

func (w *World) updateAttack(u *Unit, dt float64) {
	target, ok := w.liveEntity(u.Target)
	if !ok || target.Core().ID == u.ID {
		w.event(u, CatCombat, "target_lost", u.Target.String(), 0)
		w.idle(u)
		return
	}
	tb := target.Core()
	reach := u.Stats.Range + u.Size/2 + tb.Size/2
	if separation(u.Pos, target) <= reach {
		u.Path = nil
		u.HasPoint = false
		if u.AttackTimer <= 0 {
			w.strike(&u.Base, u.Stats.Attack, u.Stats.Range, target)
			u.AttackTimer = u.Stats.AttackCooldown
		}
		return
	}

	step := u.Stats.Speed * dt
	if len(u.Path) > 0 {
		if u.Pos.Dist(u.Path[0]) <= w.rules.Movement.ArrivalThreshold {
			u.Pos = u.Path[0]
			u.Path = u.Path[1:]
			return
		}
		u.Pos, _ = u.Pos.MoveToward(u.Path[0], step)
		return
	}
	u.Pos, _ = u.Pos.MoveToward(tb.Pos, step)
}

// separation is the distance from p to the entity's centre, or to the
// centre line of a wall.
func separation(p Vec2, e Entity) float64 {
	if b, ok := e.(*Building); ok && b.IsWall() {
		a, c := b.Endpoints()
		return distToSegment(p, a, c)
	}
	return p.Dist(e.Core().Pos)
}
