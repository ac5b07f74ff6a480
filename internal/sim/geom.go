package sim

import "math"

// Vec2 is a point or direction in continuous world space.
type Vec2 struct {
	X, Y float64
}

// V is shorthand for Vec2{x, y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2       { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2       { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2  { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Len() float64          { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64   { return v.Sub(o).Len() }
func (v Vec2) DistSq(o Vec2) float64 { d := v.Sub(o); return d.X*d.X + d.Y*d.Y }

// MoveToward returns v advanced by at most step along the line to target.
// The second result reports whether target was reached.
func (v Vec2) MoveToward(target Vec2, step float64) (Vec2, bool) {
	d := target.Sub(v)
	dist := d.Len()
	if dist <= step || dist < 1e-9 {
		return target, true
	}
	return v.Add(d.Scale(step / dist)), false
}

// Rect is an axis-aligned box given by its min and max corners.
type Rect struct {
	Min, Max Vec2
}

// RectAround returns the square of side size centred on c.
func RectAround(c Vec2, size float64) Rect {
	h := size / 2
	return Rect{Min: Vec2{c.X - h, c.Y - h}, Max: Vec2{c.X + h, c.Y + h}}
}

// RectFromCorners normalises two arbitrary corners into a Rect.
func RectFromCorners(a, b Vec2) Rect {
	return Rect{
		Min: Vec2{math.Min(a.X, b.X), math.Min(a.Y, b.Y)},
		Max: Vec2{math.Max(a.X, b.X), math.Max(a.Y, b.Y)},
	}
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.Min.X >= r.Min.X && o.Max.X <= r.Max.X && o.Min.Y >= r.Min.Y && o.Max.Y <= r.Max.Y
}

// Overlaps is inclusive: boxes sharing an edge overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Min.X <= o.Max.X && r.Max.X >= o.Min.X && r.Min.Y <= o.Max.Y && r.Max.Y >= o.Min.Y
}

// Expand grows the box by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{Min: Vec2{r.Min.X - pad, r.Min.Y - pad}, Max: Vec2{r.Max.X + pad, r.Max.Y + pad}}
}

// ClosestPoint clamps p onto the box.
func (r Rect) ClosestPoint(p Vec2) Vec2 {
	return Vec2{clamp(p.X, r.Min.X, r.Max.X), clamp(p.Y, r.Min.Y, r.Max.Y)}
}

func (r Rect) Center() Vec2 {
	return Vec2{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}

// distToSegment returns the distance from p to the segment ab.
func distToSegment(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 < 1e-12 {
		return p.Dist(a)
	}
	t := clamp(((p.X-a.X)*ab.X+(p.Y-a.Y)*ab.Y)/l2, 0, 1)
	return p.Dist(a.Add(ab.Scale(t)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
