package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/realmforge/internal/sim"
)

func TestEventFeed_KeepsNewestEntries(t *testing.T) {
	f := NewEventFeed()
	for i := 0; i < feedMaxEntries+10; i++ {
		f.Add(i, "U1", sim.LocalPlayer, "tick")
	}
	recent := f.Recent()
	require.Len(t, recent, feedMaxEntries)
	assert.Equal(t, 10, recent[0].Tick, "oldest entries are overwritten")
	assert.Equal(t, feedMaxEntries+9, recent[len(recent)-1].Tick)
}

func TestEventFeed_SyncSkipsMovementAndResumes(t *testing.T) {
	sl := sim.NewSimLog(true)
	sl.Add(1, "U1", sim.LocalPlayer, sim.CatMove, "waypoint", "(10,10)", 0)
	sl.Add(2, "U1", sim.LocalPlayer, sim.CatEconomy, "deposit", "10 Wood", 10)

	f := NewEventFeed()
	assert.Equal(t, 1, f.Sync(sl))
	assert.Zero(t, f.Sync(sl), "already consumed entries are not repeated")

	sl.Add(3, "B1", sim.LocalPlayer, sim.CatProduction, "trained", "", 0)
	assert.Equal(t, 1, f.Sync(sl))

	recent := f.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "deposit 10 Wood", recent[0].Message)
	assert.Equal(t, "trained", recent[1].Message)
}

func TestCamera_RoundTrip(t *testing.T) {
	c := camera{X: 100, Y: 50, Zoom: 2}
	p := c.ScreenToWorld(40, 60)
	assert.InDelta(t, 120, p.X, 1e-9)
	assert.InDelta(t, 80, p.Y, 1e-9)

	sx, sy := c.WorldToScreen(p)
	assert.InDelta(t, 40, sx, 1e-9)
	assert.InDelta(t, 60, sy, 1e-9)
}

func TestCamera_ClampKeepsViewInsideWorld(t *testing.T) {
	c := camera{X: -50, Y: 5000, Zoom: 1}.Clamp(800, 600, 1920, 1920)
	assert.Equal(t, 0.0, c.X)
	assert.Equal(t, 1320.0, c.Y)

	// A view wider than the world centres it.
	c = camera{X: 300, Y: 0, Zoom: 0.25}.Clamp(800, 600, 1920, 1920)
	assert.InDelta(t, (1920-3200)/2.0, c.X, 1e-9)

	c = camera{Zoom: 10}.Clamp(800, 600, 1920, 1920)
	assert.Equal(t, 3.0, c.Zoom)
}

func TestIsDrag(t *testing.T) {
	assert.False(t, isDrag(10, 10, 12, 13))
	assert.True(t, isDrag(10, 10, 10, 10+dragThreshold))
	assert.True(t, isDrag(100, 100, 20, 40))
}

func TestStatusLine(t *testing.T) {
	line := statusLine(42, sim.Resources{Gold: 5, Wood: 10}, sim.Population{Current: 3, Max: 15}, sim.FactionSteppe)
	assert.Equal(t, "T=42  gold 5  wood 10  food 0  iron 0  stone 0  pop 3/15  steppe", line)
}

func TestModeLine(t *testing.T) {
	assert.Empty(t, modeLine(placement{}))
	assert.Equal(t, "placing: House", modeLine(placement{kind: sim.House}))
	assert.Equal(t, "placing: wall (drag)", modeLine(placement{wall: true}))
}

func TestNew_PopulatesStartingMap(t *testing.T) {
	g, err := New(Config{Faction: sim.FactionNorthern})
	require.NoError(t, err)

	w := g.World()
	local := 0
	for _, u := range w.Units() {
		if u.Owner == sim.LocalPlayer {
			local++
		}
	}
	assert.Equal(t, 4, local)
	assert.Equal(t, 4, w.Population().Current)
	assert.Equal(t, sim.FactionNorthern, w.Faction(sim.LocalPlayer))
	assert.Equal(t, defaultWidth-feedPanelWidth, g.viewW)
}

func TestSelectedProducerAndInspector(t *testing.T) {
	ts := sim.NewTestSim(
		sim.WithBuilding("tc", sim.TownCenter, sim.LocalPlayer, 200, 200),
		sim.WithBuilding("house", sim.House, sim.LocalPlayer, 400, 200),
		sim.WithUnit("v", sim.Villager, sim.LocalPlayer, 300, 300),
	)
	w := ts.World

	_, ok := selectedProducer(w)
	assert.False(t, ok)

	require.True(t, w.SelectAt(400, 200, false))
	_, ok = selectedProducer(w)
	assert.False(t, ok, "a house trains nothing")

	require.True(t, w.SelectAt(200, 200, true))
	b, ok := selectedProducer(w)
	require.True(t, ok)
	assert.Equal(t, ts.ID("tc"), b.ID)

	require.NoError(t, w.TrainUnit(b.ID, sim.Villager))
	lines := inspectorLines(w, b, false)
	assert.True(t, strings.HasPrefix(lines[0], sim.Label(b)+" TownCenter"))
	assert.Contains(t, strings.Join(lines, "\n"), "training Villager")

	u := ts.Unit("v")
	lines = inspectorLines(w, u, true)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "state idle")
	assert.Contains(t, joined, "path 0 waypoints")
}
