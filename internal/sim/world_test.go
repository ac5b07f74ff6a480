package sim

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	simerrors "github.com/Garsondee/realmforge/internal/errors"
	"github.com/Garsondee/realmforge/internal/observability"
)

func TestNewWorld_Defaults(t *testing.T) {
	w := NewWorld(nil)
	rules := DefaultRules()

	_, err := uuid.Parse(w.SessionID())
	assert.NoError(t, err, "session IDs are UUIDs")
	assert.Equal(t, rules.Economy.Starting, w.Resources())
	assert.Equal(t, Population{Max: rules.Economy.PopulationBase}, w.Population())
	assert.Empty(t, w.Entities())
	assert.Zero(t, w.Grid().BlockedCount())

	w2 := NewWorld(rules, WithSessionID("fixed"), WithPopulationBase(2))
	assert.Equal(t, "fixed", w2.SessionID())
	assert.Equal(t, 2, w2.Population().Max)
}

func TestWorld_BuildingsBlockGridUntilRemoved(t *testing.T) {
	ts := NewTestSim(WithBuilding("house", House, LocalPlayer, 208, 208))
	w := ts.World
	require.Positive(t, w.Grid().BlockedCount())

	ts.Building("house").Health = 0
	ts.RunTicks(1)
	assert.Nil(t, ts.Building("house"))
	assert.Zero(t, w.Grid().BlockedCount())
	assert.Equal(t, DefaultRules().Economy.PopulationBase, w.Population().Max, "house bonus is withdrawn")
}

func TestWorld_ReturningUnitRetargetsWhenDepotDies(t *testing.T) {
	ts := NewTestSim(
		WithBuilding("near", TownCenter, LocalPlayer, 200, 200),
		WithBuilding("far", TownCenter, LocalPlayer, 900, 200),
		WithResource("wood", Wood, 500, 200, 100),
		WithUnit("v", Villager, LocalPlayer, 460, 200),
	)
	w := ts.World
	w.IssueMoveOrEngage([]EntityID{ts.ID("v")}, 500, 200)

	tick := ts.RunUntil(func(ts *TestSim) bool {
		return ts.Unit("v").State == StateReturning
	}, 60*30)
	require.NotEqual(t, -1, tick, "villager never filled up")
	require.Equal(t, ts.ID("near"), ts.Unit("v").Target)

	before := w.Resources().Wood
	ts.Building("near").Health = 0
	ts.RunTicks(1)
	require.Nil(t, ts.Building("near"))

	tick = ts.RunUntil(func(ts *TestSim) bool {
		return ts.SimLog.CountCategory(CatEconomy, "deposit") > 0
	}, 60*30)
	require.NotEqual(t, -1, tick, "load was never deposited")
	assert.Equal(t, before+10, w.Resources().Wood)
	assert.Equal(t, 2*DefaultRules().Economy.PopulationBase, w.Population().Max, "only the far town center's bonus remains")
}

func TestWorld_MetricsWiring(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewSimCollector(reg)
	require.NoError(t, err)

	ts := NewTestSim(
		WithWorldOptions(WithMetrics(metrics)),
		WithBuilding("tc", TownCenter, LocalPlayer, 200, 200),
		WithUnit("v", Villager, LocalPlayer, 300, 300),
	)
	w := ts.World
	ts.RunTicks(1)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.LiveEntities))

	err = w.TrainUnit(ts.ID("tc"), Knight)
	require.True(t, simerrors.IsFailedPrecondition(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CommandsRejected.WithLabelValues(cmdTrainUnit, string(simerrors.CodeFailedPrecondition))))

	require.NoError(t, w.TrainUnit(ts.ID("tc"), Villager))
	ts.RunSeconds(3)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UnitsTrained))
}
