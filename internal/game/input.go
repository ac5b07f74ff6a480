package game

import (
	"math"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/realmforge/internal/logging"
	"github.com/Garsondee/realmforge/internal/sim"
)

// dragThreshold is the screen distance, in pixels, a left press must
// travel before it becomes a box selection.
const dragThreshold = 6

// camera maps between screen pixels of the playfield and world units.
// X and Y are the world coordinates of the playfield's top-left corner.
type camera struct {
	X, Y float64
	Zoom float64
}

// ScreenToWorld converts playfield pixel coordinates to world space.
func (c camera) ScreenToWorld(sx, sy float64) sim.Vec2 {
	return sim.V(sx/c.Zoom+c.X, sy/c.Zoom+c.Y)
}

// WorldToScreen converts a world point to playfield pixel coordinates.
func (c camera) WorldToScreen(p sim.Vec2) (float64, float64) {
	return (p.X - c.X) * c.Zoom, (p.Y - c.Y) * c.Zoom
}

// Clamp keeps the view inside the world where it fits, and centres the
// world on an axis where the view is larger.
func (c camera) Clamp(viewW, viewH, worldW, worldH float64) camera {
	const zoomMin, zoomMax = 0.25, 3.0
	c.Zoom = math.Min(math.Max(c.Zoom, zoomMin), zoomMax)
	clampAxis := func(pos, view, world float64) float64 {
		span := view / c.Zoom
		if span >= world {
			return (world - span) / 2
		}
		return math.Min(math.Max(pos, 0), world-span)
	}
	c.X = clampAxis(c.X, viewW, worldW)
	c.Y = clampAxis(c.Y, viewH, worldH)
	return c
}

// placement is the building the next left click will place.
type placement struct {
	kind sim.BuildingKind
	wall bool
}

func (p placement) active() bool { return p.wall || p.kind != "" }

// placementKeys maps the number row to placeable buildings.
var placementKeys = []struct {
	key  ebiten.Key
	kind sim.BuildingKind
}{
	{ebiten.Key1, sim.TownCenter},
	{ebiten.Key2, sim.House},
	{ebiten.Key3, sim.Barracks},
	{ebiten.Key4, sim.Farm},
	{ebiten.Key5, sim.Tower},
}

// trainKeys maps hotkeys to the unit they queue at the selected producer.
var trainKeys = []struct {
	key  ebiten.Key
	kind sim.UnitKind
}{
	{ebiten.KeyV, sim.Villager},
	{ebiten.KeyS, sim.Swordsman},
	{ebiten.KeyA, sim.Archer},
	{ebiten.KeyK, sim.Knight},
}

// isDrag reports whether a press at (x0, y0) released at (x1, y1) is a
// drag rather than a click.
func isDrag(x0, y0, x1, y1 int) bool {
	dx := float64(x1 - x0)
	dy := float64(y1 - y0)
	return math.Hypot(dx, dy) >= dragThreshold
}

// selectedProducer returns the first selected local building that can
// train something.
func selectedProducer(w *sim.World) (*sim.Building, bool) {
	for _, id := range w.Selection() {
		b, ok := w.Building(id)
		if !ok || b.Owner != sim.LocalPlayer {
			continue
		}
		if rule, ok := w.Rules().Building(b.BuildingKind); ok && len(rule.Trains) > 0 {
			return b, true
		}
	}
	return nil, false
}

// justPressed records k in cur and reports a rising edge.
func (g *Game) justPressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

// handleInput turns keyboard and mouse state into commands.
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	w := g.world

	for _, pk := range placementKeys {
		if g.justPressed(currentKeys, pk.key) {
			g.mode = placement{kind: pk.kind}
		}
	}
	if g.justPressed(currentKeys, ebiten.KeyW) {
		g.mode = placement{wall: !g.mode.wall}
	}
	if g.justPressed(currentKeys, ebiten.KeyEscape) {
		g.mode = placement{}
		g.dragging = false
	}

	for _, tk := range trainKeys {
		if g.justPressed(currentKeys, tk.key) {
			g.trainAtSelection(tk.kind)
		}
	}
	if g.justPressed(currentKeys, ebiten.KeyX) {
		g.cancelLastQueued()
	}

	mx, my := ebiten.CursorPosition()
	cursor := g.cam.ScreenToWorld(float64(mx), float64(my))
	inView := mx >= 0 && mx < g.viewW && my >= hudBarHeight && my < g.height

	if g.justPressed(currentKeys, ebiten.KeyR) && inView {
		g.setRally(cursor)
	}
	if g.justPressed(currentKeys, ebiten.KeyC) {
		g.copyStatus()
	}
	if g.justPressed(currentKeys, ebiten.KeyP) {
		g.paused = !g.paused
	}
	if g.justPressed(currentKeys, ebiten.KeyI) {
		g.inspector.rawView = !g.inspector.rawView
	}

	// Camera pan with the arrow keys, zoom with the wheel.
	pan := 8.0 / g.cam.Zoom
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Y -= pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Y += pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.X -= pan
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.X += pan
	}
	if _, wy := ebiten.Wheel(); wy != 0 && inView {
		// Zoom about the cursor.
		g.cam.Zoom *= math.Pow(1.12, wy)
		g.cam.Zoom = math.Min(math.Max(g.cam.Zoom, 0.25), 3.0)
		g.cam.X = cursor.X - float64(mx)/g.cam.Zoom
		g.cam.Y = cursor.Y - float64(my)/g.cam.Zoom
	}
	wr := w.Rules().World
	g.cam = g.cam.Clamp(float64(g.viewW), float64(g.height), wr.Width(), wr.Height())

	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)

	if left && !g.prevLeft && inView {
		g.leftPressed(mx, my, cursor, shift)
	}
	if !left && g.prevLeft && g.dragging {
		g.leftReleased(mx, my, shift)
	}
	if right && !g.prevRight && inView {
		if g.mode.active() {
			g.mode = placement{}
		} else {
			w.IssueMoveOrEngage(w.Selection(), cursor.X, cursor.Y)
		}
	}

	g.prevLeft = left
	g.prevRight = right
	g.prevKeys = currentKeys
}

func (g *Game) leftPressed(mx, my int, cursor sim.Vec2, shift bool) {
	if g.mode.kind != "" {
		if _, err := g.world.PlaceBuilding(g.mode.kind, cursor.X, cursor.Y); err != nil {
			g.commandFailed("place "+string(g.mode.kind), err)
		} else if !shift {
			g.mode = placement{}
		}
		return
	}
	g.dragging = true
	g.dragStartX, g.dragStartY = mx, my
}

func (g *Game) leftReleased(mx, my int, shift bool) {
	g.dragging = false
	w := g.world
	start := g.cam.ScreenToWorld(float64(g.dragStartX), float64(g.dragStartY))
	end := g.cam.ScreenToWorld(float64(mx), float64(my))

	if g.mode.wall {
		if !isDrag(g.dragStartX, g.dragStartY, mx, my) {
			return
		}
		if _, err := w.PlaceWall(start.X, start.Y, end.X, end.Y); err != nil {
			g.commandFailed("place wall", err)
		}
		return
	}
	if isDrag(g.dragStartX, g.dragStartY, mx, my) {
		w.SelectInRect(start.X, start.Y, end.X, end.Y, shift)
		return
	}
	w.SelectAt(end.X, end.Y, shift)
}

func (g *Game) trainAtSelection(kind sim.UnitKind) {
	b, ok := selectedProducer(g.world)
	if !ok {
		g.notify("select a town center or barracks to train")
		return
	}
	if err := g.world.TrainUnit(b.ID, kind); err != nil {
		g.commandFailed("train "+string(kind), err)
		return
	}
	g.notify("queued " + string(kind))
}

func (g *Game) cancelLastQueued() {
	b, ok := selectedProducer(g.world)
	if !ok || len(b.Queue) == 0 {
		return
	}
	if err := g.world.CancelTraining(b.ID, len(b.Queue)-1); err != nil {
		g.commandFailed("cancel", err)
	}
}

func (g *Game) setRally(p sim.Vec2) {
	b, ok := selectedProducer(g.world)
	if !ok {
		return
	}
	if err := g.world.SetRallyPoint(b.ID, p.X, p.Y); err != nil {
		g.commandFailed("rally", err)
	}
}

func (g *Game) copyStatus() {
	w := g.world
	line := statusLine(w.TickCount(), w.Resources(), w.Population(), w.Faction(sim.LocalPlayer))
	if err := clipboard.WriteAll(line); err != nil {
		g.log.Warn(g.ctx, "clipboard unavailable", logging.Err(err))
		g.notify("clipboard unavailable")
		return
	}
	g.notify("status copied")
}
