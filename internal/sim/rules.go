package sim

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	simerrors "github.com/Garsondee/realmforge/internal/errors"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// UnitKind keys the unit tables, e.g. "Villager".
type UnitKind string

// BuildingKind keys the building tables, e.g. "TownCenter".
type BuildingKind string

// FactionID keys the faction table, e.g. "western".
type FactionID string

// UnitClass groups unit kinds for faction bonuses.
type UnitClass string

const (
	ClassVillager UnitClass = "villager"
	ClassInfantry UnitClass = "infantry"
	ClassRanged   UnitClass = "ranged"
	ClassCavalry  UnitClass = "cavalry"
)

const (
	Villager    UnitKind = "Villager"
	Swordsman   UnitKind = "Swordsman"
	Archer      UnitKind = "Archer"
	Knight      UnitKind = "Knight"
	Lancer      UnitKind = "Lancer"
	HorseArcher UnitKind = "HorseArcher"
	Marauder    UnitKind = "Marauder"
	Huscarl     UnitKind = "Huscarl"
	Axethrower  UnitKind = "Axethrower"
	Berserker   UnitKind = "Berserker"
)

const (
	TownCenter BuildingKind = "TownCenter"
	House      BuildingKind = "House"
	Barracks   BuildingKind = "Barracks"
	Farm       BuildingKind = "Farm"
	Tower      BuildingKind = "Tower"
	Wall       BuildingKind = "Wall"
)

const (
	FactionWestern  FactionID = "western"
	FactionSteppe   FactionID = "steppe"
	FactionNorthern FactionID = "northern"
)

// Rules holds every tunable table of the simulation. A Rules value is
// read-only once loaded and may be shared between worlds.
type Rules struct {
	World     WorldRules                    `yaml:"world"`
	Tick      TickRules                     `yaml:"tick"`
	Economy   EconomyRules                  `yaml:"economy"`
	Movement  MovementRules                 `yaml:"movement"`
	Gathering GatheringRules                `yaml:"gathering"`
	Combat    CombatRules                   `yaml:"combat"`
	Selection SelectionRules                `yaml:"selection"`
	Units     map[UnitKind]UnitRule         `yaml:"units"`
	Buildings map[BuildingKind]BuildingRule `yaml:"buildings"`
	Resources map[string]ResourceRule       `yaml:"resources"`
	Factions  map[FactionID]FactionRule     `yaml:"factions"`
}

type WorldRules struct {
	Cols     int     `yaml:"cols"`
	Rows     int     `yaml:"rows"`
	CellSize float64 `yaml:"cell_size"`
}

// Width is the world extent along X in world units.
func (w WorldRules) Width() float64 { return float64(w.Cols) * w.CellSize }

// Height is the world extent along Y in world units.
func (w WorldRules) Height() float64 { return float64(w.Rows) * w.CellSize }

// Bounds is the playable area.
func (w WorldRules) Bounds() Rect { return Rect{Max: Vec2{w.Width(), w.Height()}} }

type TickRules struct {
	Rate     float64 `yaml:"rate"`
	MaxFrame float64 `yaml:"max_frame"`
}

// Step is the fixed simulation step in seconds.
func (t TickRules) Step() float64 { return 1 / t.Rate }

type EconomyRules struct {
	Starting       Resources `yaml:"starting"`
	PopulationBase int       `yaml:"population_base"`
}

type MovementRules struct {
	ArrivalThreshold float64 `yaml:"arrival_threshold"`
	DepositBuffer    float64 `yaml:"deposit_buffer"`
	SpawnMargin      float64 `yaml:"spawn_margin"`
}

type GatheringRules struct {
	Interval float64 `yaml:"interval"`
	Amount   int     `yaml:"amount"`
}

type CombatRules struct {
	MeleeMaxRange       float64 `yaml:"melee_max_range"`
	ProjectileSpeed     float64 `yaml:"projectile_speed"`
	ProjectileHitRadius float64 `yaml:"projectile_hit_radius"`
	ProjectileSize      float64 `yaml:"projectile_size"`
	HitFlash            float64 `yaml:"hit_flash"`
}

type SelectionRules struct {
	HitScale float64 `yaml:"hit_scale"`
}

// UnitRule is one row of the unit table.
type UnitRule struct {
	Class          UnitClass `yaml:"class"`
	Size           float64   `yaml:"size"`
	MaxHealth      float64   `yaml:"max_health"`
	Speed          float64   `yaml:"speed"`
	Attack         float64   `yaml:"attack"`
	Range          float64   `yaml:"range"`
	Armor          float64   `yaml:"armor"`
	AttackCooldown float64   `yaml:"attack_cooldown"`
	CarryCapacity  int       `yaml:"carry_capacity"`
	TrainTime      float64   `yaml:"train_time"`
	Cost           Resources `yaml:"cost"`
}

// UnitStats are the per-unit combat and movement numbers after faction
// bonuses have been applied.
type UnitStats struct {
	Class          UnitClass
	Size           float64
	MaxHealth      float64
	Speed          float64
	Attack         float64
	Range          float64
	Armor          float64
	AttackCooldown float64
	CarryCapacity  int
}

// BuildingRule is one row of the building table.
type BuildingRule struct {
	Size           float64    `yaml:"size"`
	MaxHealth      float64    `yaml:"max_health"`
	Armor          float64    `yaml:"armor"`
	Cost           Resources  `yaml:"cost"`
	Deposit        bool       `yaml:"deposit"`
	Population     int        `yaml:"population"`
	Trains         []UnitKind `yaml:"trains"`
	Attack         float64    `yaml:"attack"`
	Range          float64    `yaml:"range"`
	AttackCooldown float64    `yaml:"attack_cooldown"`
	SegmentLength  float64    `yaml:"segment_length"`
}

// CanTrain reports whether the building produces units of kind k.
func (b BuildingRule) CanTrain(k UnitKind) bool {
	for _, t := range b.Trains {
		if t == k {
			return true
		}
	}
	return false
}

// IsWall reports whether the kind is placed as a dragged segment.
func (b BuildingRule) IsWall() bool { return b.SegmentLength > 0 }

// ResourceRule describes a resource node kind.
type ResourceRule struct {
	Size   float64 `yaml:"size"`
	Amount int     `yaml:"amount"`
}

// FactionRule holds a faction's per-class stat modifiers.
type FactionRule struct {
	Name            string                `yaml:"name"`
	ArmorBonus      map[UnitClass]float64 `yaml:"armor_bonus"`
	AttackBonus     map[UnitClass]float64 `yaml:"attack_bonus"`
	SpeedMultiplier map[UnitClass]float64 `yaml:"speed_multiplier"`
}

var (
	defaultRulesOnce sync.Once
	defaultRules     *Rules
	defaultRulesErr  error
)

// DefaultRules returns the rules compiled into the binary. The result is
// shared; callers must not modify it.
func DefaultRules() *Rules {
	defaultRulesOnce.Do(func() {
		defaultRules, defaultRulesErr = ParseRules(defaultRulesYAML)
	})
	if defaultRulesErr != nil {
		panic(fmt.Sprintf("sim: embedded rules are invalid: %v", defaultRulesErr))
	}
	return defaultRules
}

// LoadRules reads and validates a rules file from disk.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, simerrors.Wrapf(err, "read rules %s", path)
	}
	r, err := ParseRules(data)
	if err != nil {
		return nil, simerrors.Wrapf(err, "load rules %s", path)
	}
	return r, nil
}

// ParseRules decodes and validates a YAML rules document.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, simerrors.WrapWithCode(err, simerrors.CodeInvalidArgument, "decode rules")
	}
	if r.Selection.HitScale == 0 {
		r.Selection.HitScale = 1
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate rejects tables the simulation cannot run with.
func (r *Rules) Validate() error {
	switch {
	case r.World.Cols <= 0 || r.World.Rows <= 0 || r.World.CellSize <= 0:
		return simerrors.InvalidArgumentf("world dimensions must be positive (cols=%d rows=%d cell=%g)",
			r.World.Cols, r.World.Rows, r.World.CellSize)
	case r.Tick.Rate <= 0 || r.Tick.MaxFrame <= 0:
		return simerrors.InvalidArgument("tick rate and max_frame must be positive")
	case r.Gathering.Interval <= 0 || r.Gathering.Amount <= 0:
		return simerrors.InvalidArgument("gathering interval and amount must be positive")
	case r.Combat.ProjectileSpeed <= 0:
		return simerrors.InvalidArgument("projectile speed must be positive")
	case len(r.Units) == 0:
		return simerrors.InvalidArgument("no unit kinds defined")
	}
	for _, k := range sortedKeys(r.Units) {
		u := r.Units[k]
		if u.Speed <= 0 || u.MaxHealth <= 0 || u.Size <= 0 {
			return simerrors.InvalidArgumentf("unit %s: speed, max_health and size must be positive", k)
		}
		if u.AttackCooldown <= 0 || u.TrainTime <= 0 {
			return simerrors.InvalidArgumentf("unit %s: attack_cooldown and train_time must be positive", k)
		}
	}
	deposit := false
	for _, k := range sortedKeys(r.Buildings) {
		b := r.Buildings[k]
		if b.Size <= 0 || b.MaxHealth <= 0 {
			return simerrors.InvalidArgumentf("building %s: size and max_health must be positive", k)
		}
		for _, t := range b.Trains {
			if _, ok := r.Units[t]; !ok {
				return simerrors.InvalidArgumentf("building %s trains unknown unit %s", k, t)
			}
		}
		if b.Attack > 0 && (b.Range <= 0 || b.AttackCooldown <= 0) {
			return simerrors.InvalidArgumentf("building %s: attacking buildings need range and attack_cooldown", k)
		}
		deposit = deposit || b.Deposit
	}
	if !deposit {
		return simerrors.InvalidArgument("no deposit building defined")
	}
	for name, res := range r.Resources {
		if _, ok := ParseResourceKind(name); !ok {
			return simerrors.InvalidArgumentf("unknown resource kind %q", name)
		}
		if res.Size <= 0 || res.Amount <= 0 {
			return simerrors.InvalidArgumentf("resource %s: size and amount must be positive", name)
		}
	}
	for id, f := range r.Factions {
		for class, m := range f.SpeedMultiplier {
			if m <= 0 {
				return simerrors.InvalidArgumentf("faction %s: speed multiplier for %s must be positive", id, class)
			}
		}
	}
	return nil
}

// Unit returns the table row for kind k.
func (r *Rules) Unit(k UnitKind) (UnitRule, bool) {
	u, ok := r.Units[k]
	return u, ok
}

// Building returns the table row for kind k.
func (r *Rules) Building(k BuildingKind) (BuildingRule, bool) {
	b, ok := r.Buildings[k]
	return b, ok
}

// Resource returns the node description for kind k.
func (r *Rules) Resource(k ResourceKind) (ResourceRule, bool) {
	res, ok := r.Resources[k.String()]
	return res, ok
}

// UnitStats resolves the stats of kind k for a unit of the given faction.
// An unknown or empty faction applies no bonus.
func (r *Rules) UnitStats(k UnitKind, faction FactionID) (UnitStats, bool) {
	u, ok := r.Units[k]
	if !ok {
		return UnitStats{}, false
	}
	s := UnitStats{
		Class:          u.Class,
		Size:           u.Size,
		MaxHealth:      u.MaxHealth,
		Speed:          u.Speed,
		Attack:         u.Attack,
		Range:          u.Range,
		Armor:          u.Armor,
		AttackCooldown: u.AttackCooldown,
		CarryCapacity:  u.CarryCapacity,
	}
	if f, ok := r.Factions[faction]; ok {
		s.Armor += f.ArmorBonus[u.Class]
		s.Attack += f.AttackBonus[u.Class]
		if m, ok := f.SpeedMultiplier[u.Class]; ok {
			s.Speed *= m
		}
	}
	return s, true
}

// UnitKinds lists the unit table keys in sorted order.
func (r *Rules) UnitKinds() []UnitKind { return sortedKeys(r.Units) }

// BuildingKinds lists the building table keys in sorted order.
func (r *Rules) BuildingKinds() []BuildingKind { return sortedKeys(r.Buildings) }

// FactionIDs lists the faction table keys in sorted order.
func (r *Rules) FactionIDs() []FactionID { return sortedKeys(r.Factions) }

// WithWorldSize returns a copy of r with a different grid size.
func (r *Rules) WithWorldSize(cols, rows int) *Rules {
	c := *r
	c.World.Cols = cols
	c.World.Rows = rows
	return &c
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
