package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/realmforge/internal/sim"
)

var (
	groundColor    = color.RGBA{R: 58, G: 82, B: 48, A: 255}
	gridColor      = color.RGBA{R: 70, G: 96, B: 60, A: 90}
	selectionColor = color.RGBA{R: 250, G: 230, B: 80, A: 255}
	flashColor     = color.RGBA{R: 255, G: 255, B: 255, A: 170}
)

// ownerColor is the team tint of an owner.
func ownerColor(p sim.PlayerID) color.RGBA {
	switch p {
	case sim.Neutral:
		return color.RGBA{R: 160, G: 160, B: 150, A: 255}
	case sim.LocalPlayer:
		return color.RGBA{R: 70, G: 110, B: 210, A: 255}
	default:
		return color.RGBA{R: 210, G: 70, B: 70, A: 255}
	}
}

// resourceColor tints resource nodes by what they yield.
func resourceColor(k sim.ResourceKind) color.RGBA {
	switch k {
	case sim.Gold:
		return color.RGBA{R: 230, G: 190, B: 40, A: 255}
	case sim.Wood:
		return color.RGBA{R: 40, G: 110, B: 40, A: 255}
	case sim.Food:
		return color.RGBA{R: 200, G: 90, B: 120, A: 255}
	case sim.Iron:
		return color.RGBA{R: 120, G: 130, B: 150, A: 255}
	case sim.Stone:
		return color.RGBA{R: 150, G: 150, B: 140, A: 255}
	default:
		return color.RGBA{R: 90, G: 90, B: 90, A: 255}
	}
}

func shade(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{
		R: uint8(math.Min(255, float64(c.R)*f)),
		G: uint8(math.Min(255, float64(c.G)*f)),
		B: uint8(math.Min(255, float64(c.B)*f)),
		A: c.A,
	}
}

func (g *Game) drawWorld(screen *ebiten.Image) {
	w := g.world
	wr := w.Rules().World

	x0, y0 := g.cam.WorldToScreen(sim.V(0, 0))
	x1, y1 := g.cam.WorldToScreen(sim.V(wr.Width(), wr.Height()))
	vector.FillRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), groundColor, false)
	if g.cam.Zoom >= 0.75 {
		g.drawGrid(screen, wr)
	}

	for _, e := range w.Entities() {
		switch v := e.(type) {
		case *sim.ResourceNode:
			g.drawBox(screen, &v.Base, resourceColor(v.Resource))
		case *sim.Building:
			g.drawBuilding(screen, v)
		case *sim.Unit:
			g.drawUnit(screen, v)
		case *sim.Projectile:
			sx, sy := g.cam.WorldToScreen(v.Pos)
			vector.FillCircle(screen, float32(sx), float32(sy), float32(math.Max(2, v.Size/2*g.cam.Zoom)), color.RGBA{R: 240, G: 230, B: 200, A: 255}, true)
		}
	}

	g.drawPlacementPreview(screen)
}

func (g *Game) drawGrid(screen *ebiten.Image, wr sim.WorldRules) {
	for c := 0; c <= wr.Cols; c++ {
		x := float64(c) * wr.CellSize
		ax, ay := g.cam.WorldToScreen(sim.V(x, 0))
		bx, by := g.cam.WorldToScreen(sim.V(x, wr.Height()))
		vector.StrokeLine(screen, float32(ax), float32(ay), float32(bx), float32(by), 1, gridColor, false)
	}
	for r := 0; r <= wr.Rows; r++ {
		y := float64(r) * wr.CellSize
		ax, ay := g.cam.WorldToScreen(sim.V(0, y))
		bx, by := g.cam.WorldToScreen(sim.V(wr.Width(), y))
		vector.StrokeLine(screen, float32(ax), float32(ay), float32(bx), float32(by), 1, gridColor, false)
	}
}

// drawBox fills the square footprint of b and adds the shared overlays.
func (g *Game) drawBox(screen *ebiten.Image, b *sim.Base, fill color.RGBA) {
	r := b.Bounds()
	sx, sy := g.cam.WorldToScreen(r.Min)
	size := float32(b.Size * g.cam.Zoom)
	vector.FillRect(screen, float32(sx), float32(sy), size, size, fill, false)
	if b.HitFlash > 0 {
		vector.FillRect(screen, float32(sx), float32(sy), size, size, flashColor, false)
	}
	if b.Selected {
		vector.StrokeRect(screen, float32(sx)-2, float32(sy)-2, size+4, size+4, 2, selectionColor, false)
	}
	if b.Owner != sim.Neutral && b.Health < b.MaxHealth {
		drawHealthBar(screen, float32(sx), float32(sy)-5, size, b.Health/b.MaxHealth)
	}
}

func drawHealthBar(screen *ebiten.Image, x, y, w float32, frac float64) {
	frac = math.Min(math.Max(frac, 0), 1)
	vector.FillRect(screen, x, y, w, 3, color.RGBA{R: 40, G: 10, B: 10, A: 220}, false)
	vector.FillRect(screen, x, y, w*float32(frac), 3, color.RGBA{R: 90, G: 220, B: 90, A: 255}, false)
}

func (g *Game) drawBuilding(screen *ebiten.Image, b *sim.Building) {
	if !b.IsWall() {
		g.drawBox(screen, &b.Base, shade(ownerColor(b.Owner), 0.7))
		g.drawQueueBar(screen, b)
		if b.HasRally && b.Selected {
			bx, by := g.cam.WorldToScreen(b.Pos)
			rx, ry := g.cam.WorldToScreen(b.Rally)
			vector.StrokeLine(screen, float32(bx), float32(by), float32(rx), float32(ry), 1, selectionColor, false)
			vector.StrokeCircle(screen, float32(rx), float32(ry), 4, 1, selectionColor, true)
		}
		return
	}
	a, c := b.Endpoints()
	ax, ay := g.cam.WorldToScreen(a)
	cx, cy := g.cam.WorldToScreen(c)
	thick := float32(b.Size * g.cam.Zoom)
	col := shade(ownerColor(b.Owner), 0.6)
	if b.HitFlash > 0 {
		col = shade(col, 1.8)
	}
	vector.StrokeLine(screen, float32(ax), float32(ay), float32(cx), float32(cy), thick, col, false)
	if b.Selected {
		vector.StrokeLine(screen, float32(ax), float32(ay), float32(cx), float32(cy), 2, selectionColor, false)
	}
}

// drawQueueBar shows training progress under a producing building.
func (g *Game) drawQueueBar(screen *ebiten.Image, b *sim.Building) {
	if len(b.Queue) == 0 {
		return
	}
	st, err := g.world.QueueStatus(b.ID)
	if err != nil {
		return
	}
	r := b.Bounds()
	sx, sy := g.cam.WorldToScreen(sim.V(r.Min.X, r.Max.Y))
	w := float32(b.Size * g.cam.Zoom)
	vector.FillRect(screen, float32(sx), float32(sy)+2, w, 3, color.RGBA{R: 20, G: 20, B: 40, A: 220}, false)
	vector.FillRect(screen, float32(sx), float32(sy)+2, w*float32(st.Progress), 3, color.RGBA{R: 120, G: 170, B: 255, A: 255}, false)
}

func (g *Game) drawUnit(screen *ebiten.Image, u *sim.Unit) {
	g.drawBox(screen, &u.Base, ownerColor(u.Owner))
	if u.Carried > 0 {
		sx, sy := g.cam.WorldToScreen(u.Pos)
		vector.FillCircle(screen, float32(sx), float32(sy), float32(3*g.cam.Zoom), resourceColor(u.CarriedKind), false)
	}
}

// drawPlacementPreview shows the pending building under the cursor or
// the wall being dragged.
func (g *Game) drawPlacementPreview(screen *ebiten.Image) {
	mx, my := ebiten.CursorPosition()
	ghost := color.RGBA{R: 240, G: 240, B: 240, A: 90}

	if g.dragging {
		x0, y0 := float32(g.dragStartX), float32(g.dragStartY)
		x1, y1 := float32(mx), float32(my)
		if g.mode.wall {
			vector.StrokeLine(screen, x0, y0, x1, y1, 4, ghost, false)
			return
		}
		vector.StrokeRect(screen, min(x0, x1), min(y0, y1), abs32(x1-x0), abs32(y1-y0), 1, selectionColor, false)
		return
	}
	if g.mode.kind == "" {
		return
	}
	rule, ok := g.world.Rules().Building(g.mode.kind)
	if !ok {
		return
	}
	size := float32(rule.Size * g.cam.Zoom)
	vector.FillRect(screen, float32(mx)-size/2, float32(my)-size/2, size, size, ghost, false)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
