package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	simerrors "github.com/Garsondee/realmforge/internal/errors"
)

func TestPlaceBuilding_DeductsAndRaisesPopulation(t *testing.T) {
	ts := NewTestSim()
	w := ts.World
	before := w.Resources()
	pop := w.Population()

	id, err := w.PlaceBuilding(House, 300, 300)
	require.NoError(t, err)
	b, ok := w.Building(id)
	require.True(t, ok)
	assert.Equal(t, House, b.BuildingKind)
	assert.Equal(t, LocalPlayer, b.Owner)
	assert.Equal(t, V(300, 300), b.Pos)
	assert.Equal(t, before.Wood-30, w.Resources().Wood)
	assert.Equal(t, pop.Max+5, w.Population().Max)

	cx, cy := w.Grid().WorldToCell(b.Pos)
	assert.True(t, w.Grid().IsBlocked(cx, cy), "grid reflects the new building before the next tick")
}

func TestPlaceBuilding_Rejections(t *testing.T) {
	ts := NewTestSim()
	w := ts.World
	before := w.Resources()

	_, err := w.PlaceBuilding("Castle", 100, 100)
	assert.True(t, simerrors.IsInvalidArgument(err))

	_, err = w.PlaceBuilding(House, -5, 100)
	assert.True(t, simerrors.IsFailedPrecondition(err))
	_, err = w.PlaceBuilding(House, 100, w.Rules().World.Height()+1)
	assert.True(t, simerrors.IsFailedPrecondition(err))

	assert.Equal(t, before, w.Resources())
	assert.Empty(t, w.Entities())
}

func TestPlaceBuilding_MissingResourceReported(t *testing.T) {
	ts := NewTestSim(WithLedger(Resources{Gold: 300, Wood: 200, Stone: 99}))
	_, err := ts.World.PlaceBuilding(TownCenter, 500, 500)
	require.Error(t, err)
	assert.Equal(t, "stone=1", simerrors.GetMeta(err)["missing"])
	assert.Equal(t, Resources{Gold: 300, Wood: 200, Stone: 99}, ts.World.Resources())
}

func TestPlaceWall_CostScalesWithLength(t *testing.T) {
	ts := NewTestSim()
	w := ts.World
	before := w.Resources()

	id, err := w.PlaceWall(100, 100, 228, 100)
	require.NoError(t, err)
	assert.Equal(t, before.Stone-4*5, w.Resources().Stone)

	b, _ := w.Building(id)
	require.True(t, b.IsWall())
	assert.Equal(t, V(164, 100), b.Pos)
	assert.InDelta(t, 128.0, b.Length, 1e-9)
	assert.Zero(t, b.Angle)

	ts.RunTicks(1)
	for cx := 3; cx <= 7; cx++ {
		assert.True(t, w.Grid().IsBlocked(cx, 3), "cell (%d,3)", cx)
	}
}

func TestPlaceWall_ClickPlacesOneSegment(t *testing.T) {
	ts := NewTestSim()
	w := ts.World
	before := w.Resources()

	id, err := w.PlaceBuilding(Wall, 200, 200)
	require.NoError(t, err)
	b, _ := w.Building(id)
	assert.InDelta(t, 32.0, b.Length, 1e-9)
	assert.Equal(t, before.Stone-5, w.Resources().Stone)
}

func TestPlaceWall_Rejections(t *testing.T) {
	ts := NewTestSim(WithLedger(Resources{Stone: 10}))
	w := ts.World

	_, err := w.PlaceWall(100, 100, 5000, 100)
	assert.True(t, simerrors.IsFailedPrecondition(err))

	_, err = w.PlaceWall(100, 100, 228, 100)
	assert.True(t, simerrors.IsResourceExhausted(err), "four segments cost 20 stone")
	assert.Equal(t, 4, simerrors.GetMeta(err)["segments"])
	assert.Equal(t, Resources{Stone: 10}, w.Resources())
}

// The ledger never goes negative under any sequence of commands.
func TestCommands_LedgerNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7)) // #nosec G404 -- deterministic command stream
	ts := NewTestSim(
		WithLedger(Resources{Gold: 400, Wood: 300, Food: 300, Iron: 50, Stone: 150}),
		WithBuilding("tc", TownCenter, LocalPlayer, 300, 300),
		WithBuilding("barracks", Barracks, LocalPlayer, 600, 300),
	)
	w := ts.World
	buildings := w.Rules().BuildingKinds()
	units := w.Rules().UnitKinds()
	producers := []EntityID{ts.ID("tc"), ts.ID("barracks")}

	for i := 0; i < 400; i++ {
		switch rng.Intn(4) {
		case 0:
			_, _ = w.PlaceBuilding(buildings[rng.Intn(len(buildings))], rng.Float64()*1920, rng.Float64()*1920)
		case 1:
			_, _ = w.PlaceWall(rng.Float64()*1920, rng.Float64()*1920, rng.Float64()*1920, rng.Float64()*1920)
		case 2:
			_ = w.TrainUnit(producers[rng.Intn(2)], units[rng.Intn(len(units))])
		case 3:
			_ = w.CancelTraining(producers[rng.Intn(2)], rng.Intn(3))
		}
		ts.RunTicks(rng.Intn(5))

		r := w.Resources()
		for _, k := range ResourceKinds {
			require.GreaterOrEqual(t, r.Get(k), 0, "step %d: %s went negative", i, k)
		}
		p := w.Population()
		require.GreaterOrEqual(t, p.Current, 0)
	}
}

func TestIssueMoveOrEngage_SkipsDeadAndUnknown(t *testing.T) {
	ts := NewTestSim(
		WithUnit("a", Villager, LocalPlayer, 100, 100),
		WithUnit("b", Villager, LocalPlayer, 150, 100),
	)
	ts.Unit("b").Health = 0
	n := ts.World.IssueMoveOrEngage([]EntityID{ts.ID("a"), ts.ID("b"), EntityID(4242)}, 400, 400)
	assert.Equal(t, 1, n)
	assert.True(t, ts.SimLog.HasEntry(CatCommand, cmdMoveOrEngage, "move"))
}

func TestIssueMoveOrEngage_NewOrderReplacesOld(t *testing.T) {
	ts := NewTestSim(
		WithUnit("v", Villager, LocalPlayer, 100, 100),
		WithUnit("e", Villager, PlayerID(2), 400, 100),
	)
	v := ts.Unit("v")
	ts.World.IssueMoveOrEngage([]EntityID{v.ID}, 400, 100)
	require.Equal(t, StateAttacking, v.State)

	ts.World.IssueMoveOrEngage([]EntityID{v.ID}, 100, 400)
	assert.Equal(t, StateMoving, v.State)
	assert.Zero(t, v.Target)
	assert.NotEmpty(t, v.Path)
	assert.False(t, v.HasPoint)
}
