package sim

// Arena stores entities in generation-tagged slots and remembers insertion
// order. Removal makes an ID unresolvable at once, but the slot is only
// recycled by Compact so IDs captured during a tick stay distinct.
type Arena struct {
	slots   []arenaSlot
	free    []uint32
	pending []uint32
	order   []EntityID
	live    int
}

type arenaSlot struct {
	gen    uint32
	entity Entity
}

func NewArena() *Arena {
	return &Arena{}
}

// Insert stores e, assigns its ID and returns it.
func (a *Arena) Insert(e Entity) EntityID {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, arenaSlot{})
		idx = uint32(len(a.slots) - 1)
	}
	s := &a.slots[idx]
	s.gen++
	s.entity = e
	id := makeID(idx, s.gen)
	e.Core().ID = id
	a.order = append(a.order, id)
	a.live++
	return id
}

// Get resolves an ID. Removed or recycled IDs report false.
func (a *Arena) Get(id EntityID) (Entity, bool) {
	idx := id.slot()
	if id == 0 || int(idx) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[idx]
	if s.entity == nil || s.gen != id.gen() {
		return nil, false
	}
	return s.entity, true
}

// Remove drops the entity with the given ID. It reports whether anything
// was removed.
func (a *Arena) Remove(id EntityID) bool {
	if _, ok := a.Get(id); !ok {
		return false
	}
	idx := id.slot()
	a.slots[idx].entity = nil
	a.pending = append(a.pending, idx)
	a.live--
	return true
}

// Len is the number of live entities.
func (a *Arena) Len() int { return a.live }

// Each calls fn for every live entity in insertion order. fn may insert
// or remove entities; entities inserted during the walk are not visited.
func (a *Arena) Each(fn func(Entity)) {
	n := len(a.order)
	for i := 0; i < n; i++ {
		if e, ok := a.Get(a.order[i]); ok {
			fn(e)
		}
	}
}

// Compact forgets removed IDs and makes their slots reusable.
func (a *Arena) Compact() {
	if len(a.pending) == 0 {
		return
	}
	kept := a.order[:0]
	for _, id := range a.order {
		if _, ok := a.Get(id); ok {
			kept = append(kept, id)
		}
	}
	for i := len(kept); i < len(a.order); i++ {
		a.order[i] = 0
	}
	a.order = kept
	a.free = append(a.free, a.pending...)
	a.pending = a.pending[:0]
}
