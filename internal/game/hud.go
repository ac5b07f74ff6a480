package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/realmforge/internal/sim"
)

const hudBarHeight = 56

// hudText draws single-line strings in the fixed 7x13 face.
type hudText struct {
	face text.Face
}

func newHUDText() *hudText {
	return &hudText{face: text.NewGoXFace(basicfont.Face7x13)}
}

// Draw renders s with its top-left corner at (x, y).
func (h *hudText) Draw(dst *ebiten.Image, s string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst, s, h.face, op)
}

// statusLine summarises the local player's economy on one line.
func statusLine(tick int, res sim.Resources, pop sim.Population, faction sim.FactionID) string {
	parts := make([]string, 0, len(sim.ResourceKinds)+3)
	parts = append(parts, fmt.Sprintf("T=%d", tick))
	for _, k := range sim.ResourceKinds {
		parts = append(parts, fmt.Sprintf("%s %d", strings.ToLower(k.String()), res.Get(k)))
	}
	parts = append(parts, fmt.Sprintf("pop %d/%d", pop.Current, pop.Max))
	if faction != "" {
		parts = append(parts, string(faction))
	}
	return strings.Join(parts, "  ")
}

// modeLine describes the pending placement, if any.
func modeLine(m placement) string {
	switch {
	case m.wall:
		return "placing: wall (drag)"
	case m.kind != "":
		return "placing: " + string(m.kind)
	default:
		return ""
	}
}

const helpLine = "LMB select/drag  RMB move/gather/attack  1-5 build  W wall  V/S/A/K train  X cancel  R rally  C copy  P pause"

func (g *Game) drawHUD(screen *ebiten.Image) {
	vector.FillRect(screen, 0, 0, float32(g.viewW), hudBarHeight, color.RGBA{R: 10, G: 12, B: 10, A: 220}, false)
	vector.StrokeLine(screen, 0, hudBarHeight, float32(g.viewW), hudBarHeight, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	w := g.world
	status := statusLine(w.TickCount(), w.Resources(), w.Population(), w.Faction(sim.LocalPlayer))
	if g.paused {
		status += "  [PAUSED]"
	}
	g.hud.Draw(screen, status, 8, 4, color.White)

	second := modeLine(g.mode)
	if g.notice != "" {
		if second != "" {
			second += "  |  "
		}
		second += g.notice
	}
	g.hud.Draw(screen, second, 8, 21, color.RGBA{R: 240, G: 200, B: 90, A: 255})
	g.hud.Draw(screen, helpLine, 8, 38, color.RGBA{R: 130, G: 150, B: 130, A: 255})
}
