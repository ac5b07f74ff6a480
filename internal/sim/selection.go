package sim

// EntityAt returns the first entity in insertion order whose hit box
// contains p, or nil. Projectiles cannot be picked.
func (w *World) EntityAt(p Vec2) Entity {
	var hit Entity
	w.arena.Each(func(e Entity) {
		if hit != nil || e.Kind() == KindProjectile || !e.Core().Alive() {
			return
		}
		if w.hits(e, p) {
			hit = e
		}
	})
	return hit
}

// hits tests p against the entity's hit box, scaled by the selection
// rules. Walls are hit within half their thickness of the segment.
func (w *World) hits(e Entity, p Vec2) bool {
	scale := w.rules.Selection.HitScale
	b := e.Core()
	if bl, ok := e.(*Building); ok && bl.IsWall() {
		a, c := bl.Endpoints()
		return distToSegment(p, a, c) <= b.Size/2*scale
	}
	return RectAround(b.Pos, b.Size*scale).Contains(p)
}

// SelectAt selects whatever lies under (x, y). Without additive the
// previous selection is replaced; with it the hit entity's membership is
// toggled. It reports whether an entity was hit.
func (w *World) SelectAt(x, y float64, additive bool) bool {
	hit := w.EntityAt(V(x, y))
	if !additive {
		w.ClearSelection()
	}
	if hit == nil {
		return false
	}
	b := hit.Core()
	if additive && b.Selected {
		w.deselect(b.ID)
		b.Selected = false
		return true
	}
	w.selectEntity(hit)
	return true
}

// SelectInRect selects the local units lying entirely inside the box
// spanned by the two corners and returns how many were added.
func (w *World) SelectInRect(x0, y0, x1, y1 float64, additive bool) int {
	if !additive {
		w.ClearSelection()
	}
	box := RectFromCorners(V(x0, y0), V(x1, y1))
	n := 0
	w.arena.Each(func(e Entity) {
		u, ok := e.(*Unit)
		if !ok || !u.Alive() || u.Owner != LocalPlayer || u.Selected {
			return
		}
		if box.ContainsRect(u.Bounds()) {
			w.selectEntity(u)
			n++
		}
	})
	return n
}

// ClearSelection empties the selection. Calling it again is a no-op.
func (w *World) ClearSelection() {
	for _, id := range w.selection {
		if e, ok := w.arena.Get(id); ok {
			e.Core().Selected = false
		}
	}
	w.selection = w.selection[:0]
}

// Selection returns a copy of the selected IDs in selection order.
func (w *World) Selection() []EntityID {
	return append([]EntityID(nil), w.selection...)
}

// SelectedUnits returns the selected units.
func (w *World) SelectedUnits() []*Unit {
	var out []*Unit
	for _, id := range w.selection {
		if u, ok := w.Unit(id); ok {
			out = append(out, u)
		}
	}
	return out
}

func (w *World) selectEntity(e Entity) {
	b := e.Core()
	if b.Selected {
		return
	}
	b.Selected = true
	w.selection = append(w.selection, b.ID)
}

func (w *World) deselect(id EntityID) {
	for i, s := range w.selection {
		if s == id {
			w.selection = append(w.selection[:i], w.selection[i+1:]...)
			return
		}
	}
}
