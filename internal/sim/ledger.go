package sim

import (
	"fmt"
	"strings"
)

// ResourceKind identifies one of the five economy resources.
type ResourceKind uint8

const (
	ResourceNone ResourceKind = iota
	Gold
	Wood
	Food
	Iron
	Stone
)

// ResourceKinds lists every real resource in ledger order.
var ResourceKinds = [...]ResourceKind{Gold, Wood, Food, Iron, Stone}

func (k ResourceKind) String() string {
	switch k {
	case Gold:
		return "Gold"
	case Wood:
		return "Wood"
	case Food:
		return "Food"
	case Iron:
		return "Iron"
	case Stone:
		return "Stone"
	default:
		return "None"
	}
}

// ParseResourceKind maps a case-insensitive name to its kind.
func ParseResourceKind(s string) (ResourceKind, bool) {
	for _, k := range ResourceKinds {
		if strings.EqualFold(k.String(), s) {
			return k, true
		}
	}
	return ResourceNone, false
}

// Resources is an amount of each resource. It is used both for the
// player's ledger and for costs.
type Resources struct {
	Gold  int `yaml:"gold"`
	Wood  int `yaml:"wood"`
	Food  int `yaml:"food"`
	Iron  int `yaml:"iron"`
	Stone int `yaml:"stone"`
}

// Get returns the amount held of kind k.
func (r Resources) Get(k ResourceKind) int {
	switch k {
	case Gold:
		return r.Gold
	case Wood:
		return r.Wood
	case Food:
		return r.Food
	case Iron:
		return r.Iron
	case Stone:
		return r.Stone
	}
	return 0
}

// Add returns r with n added to kind k.
func (r Resources) Add(k ResourceKind, n int) Resources {
	switch k {
	case Gold:
		r.Gold += n
	case Wood:
		r.Wood += n
	case Food:
		r.Food += n
	case Iron:
		r.Iron += n
	case Stone:
		r.Stone += n
	}
	return r
}

// Plus returns the element-wise sum.
func (r Resources) Plus(o Resources) Resources {
	return Resources{r.Gold + o.Gold, r.Wood + o.Wood, r.Food + o.Food, r.Iron + o.Iron, r.Stone + o.Stone}
}

// Minus returns the element-wise difference. Callers check Covers first.
func (r Resources) Minus(o Resources) Resources {
	return Resources{r.Gold - o.Gold, r.Wood - o.Wood, r.Food - o.Food, r.Iron - o.Iron, r.Stone - o.Stone}
}

// Times scales every component by n.
func (r Resources) Times(n int) Resources {
	return Resources{r.Gold * n, r.Wood * n, r.Food * n, r.Iron * n, r.Stone * n}
}

// Covers reports whether r holds at least cost in every resource.
func (r Resources) Covers(cost Resources) bool {
	for _, k := range ResourceKinds {
		if r.Get(k) < cost.Get(k) {
			return false
		}
	}
	return true
}

// Shortfall returns how much of each resource is missing to pay cost.
func (r Resources) Shortfall(cost Resources) Resources {
	var out Resources
	for _, k := range ResourceKinds {
		if d := cost.Get(k) - r.Get(k); d > 0 {
			out = out.Add(k, d)
		}
	}
	return out
}

// IsZero reports whether every component is zero.
func (r Resources) IsZero() bool { return r == Resources{} }

// String prints only the non-zero components, e.g. "gold=300 wood=200".
func (r Resources) String() string {
	var parts []string
	for _, k := range ResourceKinds {
		if v := r.Get(k); v != 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", strings.ToLower(k.String()), v))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// Population is the local player's population ledger.
type Population struct {
	Current int
	Max     int
}

// Headroom is the number of further units that may be reserved.
func (p Population) Headroom() int { return p.Max - p.Current }
