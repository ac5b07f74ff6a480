package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSelectionSim() *TestSim {
	return NewTestSim(
		WithBuilding("tc", TownCenter, LocalPlayer, 500, 500),
		WithWall("wall", LocalPlayer, 100, 400, 300, 400),
		WithUnit("a", Villager, LocalPlayer, 100, 100),
		WithUnit("b", Swordsman, LocalPlayer, 160, 100),
		WithUnit("enemy", Swordsman, PlayerID(2), 220, 100),
	)
}

func assertFlagsMatch(t *testing.T, w *World) {
	t.Helper()
	selected := map[EntityID]bool{}
	for _, id := range w.Selection() {
		selected[id] = true
	}
	for _, e := range w.Entities() {
		assert.Equal(t, selected[e.Core().ID], e.Core().Selected, "entity %s", Label(e))
	}
}

func TestSelectAt_ReplacesSelection(t *testing.T) {
	ts := newSelectionSim()
	w := ts.World

	require.True(t, w.SelectAt(100, 100, false))
	assert.Equal(t, []EntityID{ts.ID("a")}, w.Selection())

	require.True(t, w.SelectAt(160, 100, false))
	assert.Equal(t, []EntityID{ts.ID("b")}, w.Selection())
	assertFlagsMatch(t, w)

	assert.False(t, w.SelectAt(1000, 1000, false), "empty ground clears the selection")
	assert.Empty(t, w.Selection())
	assertFlagsMatch(t, w)
}

func TestSelectAt_AdditiveToggles(t *testing.T) {
	ts := newSelectionSim()
	w := ts.World

	w.SelectAt(100, 100, false)
	w.SelectAt(160, 100, true)
	assert.Equal(t, []EntityID{ts.ID("a"), ts.ID("b")}, w.Selection())

	w.SelectAt(100, 100, true)
	assert.Equal(t, []EntityID{ts.ID("b")}, w.Selection())
	assertFlagsMatch(t, w)

	assert.False(t, w.SelectAt(1000, 1000, true))
	assert.Equal(t, []EntityID{ts.ID("b")}, w.Selection(), "additive miss keeps the selection")
}

func TestSelectAt_BuildingsAndWalls(t *testing.T) {
	ts := newSelectionSim()
	w := ts.World

	require.True(t, w.SelectAt(520, 480, false))
	assert.Equal(t, []EntityID{ts.ID("tc")}, w.Selection())

	require.True(t, w.SelectAt(250, 405, false))
	assert.Equal(t, []EntityID{ts.ID("wall")}, w.Selection())

	assert.False(t, w.SelectAt(250, 420, false), "beyond half the wall thickness")
}

func TestSelectInRect_LocalUnitsOnly(t *testing.T) {
	ts := newSelectionSim()
	w := ts.World

	n := w.SelectInRect(250, 150, 50, 50, false)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []EntityID{ts.ID("a"), ts.ID("b")}, w.Selection())
	assertFlagsMatch(t, w)

	n = w.SelectInRect(95, 95, 105, 105, false)
	assert.Zero(t, n, "units must lie entirely inside the box")
	assert.Empty(t, w.Selection())
}

func TestSelectInRect_Additive(t *testing.T) {
	ts := newSelectionSim()
	w := ts.World
	w.SelectAt(500, 500, false)
	w.SelectInRect(80, 80, 120, 120, true)
	assert.Equal(t, []EntityID{ts.ID("tc"), ts.ID("a")}, w.Selection())
	assert.Len(t, w.SelectedUnits(), 1)
}

func TestClearSelection_Idempotent(t *testing.T) {
	ts := newSelectionSim()
	w := ts.World
	w.SelectInRect(0, 0, 300, 300, false)
	require.NotEmpty(t, w.Selection())

	w.ClearSelection()
	first := w.Selection()
	w.ClearSelection()
	assert.Equal(t, first, w.Selection())
	assert.Empty(t, w.Selection())
	assertFlagsMatch(t, w)
}

func TestSelection_ReturnsCopy(t *testing.T) {
	ts := newSelectionSim()
	w := ts.World
	w.SelectAt(100, 100, false)
	sel := w.Selection()
	sel[0] = 0
	assert.Equal(t, ts.ID("a"), w.Selection()[0])
}

func TestEntityAt_IgnoresProjectiles(t *testing.T) {
	ts := NewTestSim(
		WithBuilding("tower", Tower, LocalPlayer, 500, 500),
		WithUnit("raider", Villager, PlayerID(2), 650, 500),
	)
	ts.RunTicks(1)
	var proj *Projectile
	for _, e := range ts.World.Entities() {
		if p, ok := e.(*Projectile); ok {
			proj = p
		}
	}
	require.NotNil(t, proj)
	hit := ts.World.EntityAt(proj.Pos)
	if hit != nil {
		assert.NotEqual(t, KindProjectile, hit.Kind())
	}
}
