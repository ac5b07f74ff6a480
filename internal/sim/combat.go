package sim

import (
	"fmt"
	"math"
)

// strike resolves one attack from attacker against target: melee damage
// lands at once, longer reaches launch a projectile.
func (w *World) strike(attacker *Base, attack, reach float64, target Entity) {
	if reach > w.rules.Combat.MeleeMaxRange {
		w.spawnProjectile(attacker, attack, target)
		return
	}
	w.applyDamage(target, attack, attacker.ID)
}

// applyDamage subtracts max(1, damage-armor) from the target's health and
// returns the amount dealt.
func (w *World) applyDamage(target Entity, damage float64, source EntityID) float64 {
	dealt := math.Max(1, damage-w.armorOf(target))
	b := target.Core()
	b.Health -= dealt
	b.HitFlash = w.rules.Combat.HitFlash
	w.event(target, CatCombat, "hit", fmt.Sprintf("%.0f from %s", dealt, source), dealt)
	if !b.Alive() {
		w.event(target, CatCombat, "killed", source.String(), 0)
	}
	return dealt
}

func (w *World) armorOf(e Entity) float64 {
	switch v := e.(type) {
	case *Unit:
		return v.Stats.Armor
	case *Building:
		rule, _ := w.rules.Building(v.BuildingKind)
		return rule.Armor
	}
	return 0
}

func (w *World) spawnProjectile(attacker *Base, damage float64, target Entity) *Projectile {
	p := &Projectile{
		Base: Base{
			Owner:     attacker.Owner,
			Pos:       attacker.Pos,
			Size:      w.rules.Combat.ProjectileSize,
			Health:    1,
			MaxHealth: 1,
		},
		Target: target.Core().ID,
		Source: attacker.ID,
		Damage: damage,
	}
	w.arena.Insert(p)
	w.event(p, CatCombat, "projectile_fired", fmt.Sprintf("%s → %s", attacker.ID, p.Target), damage)
	return p
}

// updateProjectile homes on the target's current position. It never
// misses; a vanished target discards the projectile.
func (w *World) updateProjectile(p *Projectile, dt float64) {
	target, ok := w.liveEntity(p.Target)
	if !ok {
		w.remove(p, "target_lost")
		return
	}
	tp := target.Core().Pos
	if p.Pos.Dist(tp) <= w.rules.Combat.ProjectileHitRadius {
		w.applyDamage(target, p.Damage, p.Source)
		w.metrics.IncImpacts()
		w.remove(p, "impact")
		return
	}
	p.Pos, _ = p.Pos.MoveToward(tp, w.rules.Combat.ProjectileSpeed*dt)
}

// updateTower fires at the nearest hostile unit in range whenever the
// cooldown has elapsed. The timer starts at zero so a fresh tower shoots
// on its first tick with a target.
func (w *World) updateTower(b *Building, rule BuildingRule, dt float64) {
	if b.AttackTimer > 0 {
		b.AttackTimer -= dt
	}
	if b.AttackTimer > 0 {
		return
	}
	target := w.nearestHostileUnit(b, rule.Range)
	if target == nil {
		return
	}
	w.strike(&b.Base, rule.Attack, rule.Range, target)
	b.AttackTimer = rule.AttackCooldown
}

func (w *World) nearestHostileUnit(b *Building, reach float64) *Unit {
	var best *Unit
	bestD := math.Inf(1)
	w.arena.Each(func(e Entity) {
		u, ok := e.(*Unit)
		if !ok || !u.Alive() || !Hostile(b.Owner, u.Owner) {
			return
		}
		d := b.Pos.Dist(u.Pos)
		if d > reach+b.Size/2+u.Size/2 {
			return
		}
		if d < bestD {
			best, bestD = u, d
		}
	})
	return best
}
