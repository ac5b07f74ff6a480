package sim

import (
	"fmt"
	"math"
)

// EntityID identifies an entity for its whole lifetime. The low 32 bits
// are the arena slot, the high 32 bits the slot generation, so an ID
// held after its entity is removed never resolves to a newer occupant.
// The zero ID refers to nothing.
type EntityID uint64

func makeID(slot, gen uint32) EntityID { return EntityID(uint64(gen)<<32 | uint64(slot)) }

func (id EntityID) slot() uint32 { return uint32(id) }
func (id EntityID) gen() uint32  { return uint32(id >> 32) }

func (id EntityID) String() string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("%d.%d", id.slot(), id.gen())
}

// PlayerID owns entities. Neutral owns resource nodes, LocalPlayer is the
// player whose ledger the World keeps; any other ID is hostile to both.
type PlayerID int

const (
	Neutral     PlayerID = 0
	LocalPlayer PlayerID = 1
)

// Hostile reports whether entities of owners a and b fight each other.
func Hostile(a, b PlayerID) bool { return a != b && a != Neutral && b != Neutral }

// Kind discriminates the entity variants.
type Kind uint8

const (
	KindUnit Kind = iota + 1
	KindBuilding
	KindResource
	KindProjectile
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindBuilding:
		return "building"
	case KindResource:
		return "resource"
	case KindProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// Entity is implemented by *Unit, *Building, *ResourceNode and *Projectile.
type Entity interface {
	Kind() Kind
	Core() *Base
}

// Base holds the fields every entity shares. Pos is the centre of a
// square footprint of side Size.
type Base struct {
	ID        EntityID
	Owner     PlayerID
	Pos       Vec2
	Size      float64
	Health    float64
	MaxHealth float64
	HitFlash  float64
	Selected  bool
}

func (b *Base) Core() *Base { return b }

// Alive reports whether the entity still has health.
func (b *Base) Alive() bool { return b.Health > 0 }

// Bounds is the axis-aligned footprint.
func (b *Base) Bounds() Rect { return RectAround(b.Pos, b.Size) }

// UnitState is the behaviour state of a Unit.
type UnitState uint8

const (
	StateIdle UnitState = iota
	StateMoving
	StateGathering
	StateReturning
	StateAttacking
)

func (s UnitState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMoving:
		return "moving"
	case StateGathering:
		return "gathering"
	case StateReturning:
		return "returning"
	case StateAttacking:
		return "attacking"
	default:
		return "unknown"
	}
}

// Unit is a mobile entity driven by the behaviour state machine.
type Unit struct {
	Base
	UnitKind UnitKind
	Stats    UnitStats
	State    UnitState

	Path        []Vec2
	Target      EntityID
	TargetPoint Vec2
	HasPoint    bool

	Carried     int
	CarriedKind ResourceKind
	GatherTimer float64
	AttackTimer float64
	LastNode    EntityID
}

func (*Unit) Kind() Kind { return KindUnit }

// Capacity is the most the unit can carry; zero for non-gatherers.
func (u *Unit) Capacity() int { return u.Stats.CarryCapacity }

// Building is a static entity. Walls are buildings with a segment
// geometry; their Size is the wall thickness.
type Building struct {
	Base
	BuildingKind BuildingKind

	Queue           []UnitKind
	ProductionTimer float64
	Rally           Vec2
	HasRally        bool

	AttackTimer float64

	Angle  float64
	Length float64
}

func (*Building) Kind() Kind { return KindBuilding }

// IsWall reports whether the building is a segment.
func (b *Building) IsWall() bool { return b.Length > 0 }

// Endpoints returns the two ends of a wall segment.
func (b *Building) Endpoints() (Vec2, Vec2) {
	d := Vec2{math.Cos(b.Angle), math.Sin(b.Angle)}.Scale(b.Length / 2)
	return b.Pos.Sub(d), b.Pos.Add(d)
}

// Footprint is the axis-aligned box a building occupies. For walls it
// encloses the whole segment.
func (b *Building) Footprint() Rect {
	if !b.IsWall() {
		return b.Bounds()
	}
	a, c := b.Endpoints()
	return RectFromCorners(a, c).Expand(b.Size / 2)
}

// ResourceNode is a harvestable deposit. Its amount only decreases.
type ResourceNode struct {
	Base
	Resource ResourceKind
	Amount   int
}

func (*ResourceNode) Kind() Kind { return KindResource }

// Harvest removes up to n from the node and returns what was taken.
func (r *ResourceNode) Harvest(n int) int {
	if n > r.Amount {
		n = r.Amount
	}
	if n < 0 {
		n = 0
	}
	r.Amount -= n
	return n
}

// Projectile flies toward its target and applies Damage on impact.
type Projectile struct {
	Base
	Target EntityID
	Source EntityID
	Damage float64
}

func (*Projectile) Kind() Kind { return KindProjectile }

// Label is a short printable handle such as "U4" used in logs.
func Label(e Entity) string {
	if e == nil {
		return "--"
	}
	prefix := "?"
	switch e.Kind() {
	case KindUnit:
		prefix = "U"
	case KindBuilding:
		prefix = "B"
	case KindResource:
		prefix = "R"
	case KindProjectile:
		prefix = "P"
	}
	return fmt.Sprintf("%s%d", prefix, e.Core().ID.slot())
}
